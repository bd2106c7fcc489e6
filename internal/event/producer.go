package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/domain"
	pkgkafka "github.com/ThanishaDewangan/Mini-User-Management-System/pkg/kafka"
	"github.com/ThanishaDewangan/Mini-User-Management-System/pkg/logger"
)

// Event types, also used as the action part of the topic name.
const (
	TypeUserRegistered      = "user.registered"
	TypeUserUpdated         = "user.updated"
	TypeUserStatusChanged   = "user.status_changed"
	TypeUserPasswordChanged = "user.password_changed"
)

// Topics for user domain events.
var (
	TopicUserRegistered      = pkgkafka.Topic("user", "registered")
	TopicUserUpdated         = pkgkafka.Topic("user", "updated")
	TopicUserStatusChanged   = pkgkafka.Topic("user", "status_changed")
	TopicUserPasswordChanged = pkgkafka.Topic("user", "password_changed")
)

const (
	SubjectTypeUser = "user"
	Source          = "account-service"
)

// UserData is the payload of registered and updated events.
type UserData struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

// StatusChangedData is the payload of a user.status_changed event.
type StatusChangedData struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	ActorID string `json:"actorId"`
}

// PasswordChangedData is the payload of a user.password_changed event.
type PasswordChangedData struct {
	ID string `json:"id"`
}

// Publisher emits user domain events. Services treat publish failures as
// non-fatal.
type Publisher interface {
	UserRegistered(ctx context.Context, u *domain.User) error
	UserUpdated(ctx context.Context, u *domain.User) error
	UserStatusChanged(ctx context.Context, u *domain.User, actorID string) error
	PasswordChanged(ctx context.Context, userID string) error
}

// eventWriter is satisfied by *pkgkafka.Producer.
type eventWriter interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes user events to Kafka.
type Producer struct {
	writer eventWriter
	logger *slog.Logger
}

var _ Publisher = (*Producer)(nil)

// NewProducer creates a Kafka-backed Publisher.
func NewProducer(writer eventWriter, logger *slog.Logger) *Producer {
	return &Producer{writer: writer, logger: logger}
}

// UserRegistered publishes user.registered.
func (p *Producer) UserRegistered(ctx context.Context, u *domain.User) error {
	return p.publish(ctx, TopicUserRegistered, TypeUserRegistered, u.ID, "", userData(u))
}

// UserUpdated publishes user.updated.
func (p *Producer) UserUpdated(ctx context.Context, u *domain.User) error {
	return p.publish(ctx, TopicUserUpdated, TypeUserUpdated, u.ID, u.ID, userData(u))
}

// UserStatusChanged publishes user.status_changed.
func (p *Producer) UserStatusChanged(ctx context.Context, u *domain.User, actorID string) error {
	data := StatusChangedData{ID: u.ID, Status: string(u.Status), ActorID: actorID}
	return p.publish(ctx, TopicUserStatusChanged, TypeUserStatusChanged, u.ID, actorID, data)
}

// PasswordChanged publishes user.password_changed. The payload carries only
// the user id.
func (p *Producer) PasswordChanged(ctx context.Context, userID string) error {
	return p.publish(ctx, TopicUserPasswordChanged, TypeUserPasswordChanged, userID, userID, PasswordChangedData{ID: userID})
}

// publish wraps data for userID. actorID is the caller that caused the
// change, empty for self-registration.
func (p *Producer) publish(ctx context.Context, topic, eventType, userID, actorID string, data any) error {
	evt, err := pkgkafka.NewEvent(eventType, SubjectTypeUser, userID, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	evt.ActorID = actorID
	evt.CorrelationID = logger.CorrelationIDFromContext(ctx)

	if err := p.writer.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published "+eventType+" event", slog.String("user_id", userID))
	return nil
}

func userData(u *domain.User) UserData {
	return UserData{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     string(u.Role),
		Status:   string(u.Status),
	}
}

// Noop discards every event. It is used when Kafka is disabled.
type Noop struct{}

var _ Publisher = Noop{}

func (Noop) UserRegistered(context.Context, *domain.User) error            { return nil }
func (Noop) UserUpdated(context.Context, *domain.User) error               { return nil }
func (Noop) UserStatusChanged(context.Context, *domain.User, string) error { return nil }
func (Noop) PasswordChanged(context.Context, string) error                 { return nil }
