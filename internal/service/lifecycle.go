package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/domain"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/event"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/repository"
	apperrors "github.com/ThanishaDewangan/Mini-User-Management-System/pkg/errors"
)

// AccountLifecycle moves accounts between active and inactive. Both
// transitions are admin-only and reject a transition to the current state.
//
// Nothing here keeps at least one active admin in the system; the self
// deactivation guard only protects the acting admin.
type AccountLifecycle struct {
	users  repository.UserRepository
	events event.Publisher
	logger *slog.Logger
}

// NewAccountLifecycle creates an AccountLifecycle.
func NewAccountLifecycle(users repository.UserRepository, events event.Publisher, logger *slog.Logger) *AccountLifecycle {
	return &AccountLifecycle{users: users, events: events, logger: logger}
}

// Activate sets the target's status to active.
func (l *AccountLifecycle) Activate(ctx context.Context, actor *domain.User, targetID string) (*domain.User, error) {
	u, err := l.transition(ctx, actor, targetID, domain.StatusActive)
	statusTransitions.WithLabelValues("activate", outcome(err)).Inc()
	return u, err
}

// Deactivate sets the target's status to inactive. An admin can never
// deactivate their own account.
func (l *AccountLifecycle) Deactivate(ctx context.Context, actor *domain.User, targetID string) (*domain.User, error) {
	u, err := l.transition(ctx, actor, targetID, domain.StatusInactive)
	statusTransitions.WithLabelValues("deactivate", outcome(err)).Inc()
	return u, err
}

func (l *AccountLifecycle) transition(ctx context.Context, actor *domain.User, targetID string, next domain.Status) (*domain.User, error) {
	if err := RequireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}

	target, err := l.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user", targetID)
		}
		return nil, fmt.Errorf("get user for status change: %w", err)
	}

	if target.Status == next {
		return nil, alreadyIn(next)
	}
	if next == domain.StatusInactive && target.ID == actor.ID {
		return nil, apperrors.SelfModificationForbidden("you cannot deactivate your own account")
	}

	updated, err := l.users.UpdateStatus(ctx, target.ID, target.Status, next)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStatusMismatch):
			return nil, alreadyIn(next)
		case errors.Is(err, apperrors.ErrNotFound):
			return nil, apperrors.NotFound("user", targetID)
		}
		return nil, fmt.Errorf("update user status: %w", err)
	}

	if err := l.events.UserStatusChanged(ctx, updated, actor.ID); err != nil {
		l.logger.WarnContext(ctx, "failed to publish user.status_changed event",
			slog.String("user_id", updated.ID),
			slog.String("error", err.Error()),
		)
	}

	l.logger.InfoContext(ctx, "user status changed",
		slog.String("user_id", updated.ID),
		slog.String("actor_id", actor.ID),
		slog.String("status", string(updated.Status)),
	)

	return updated.Sanitized(), nil
}

func alreadyIn(status domain.Status) error {
	return apperrors.NoOpConflict(fmt.Sprintf("user is already %s", status))
}
