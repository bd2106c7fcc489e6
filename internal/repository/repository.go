package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/domain"
)

// ErrStatusMismatch is returned by UpdateStatus when the stored status no
// longer equals the expected one, meaning another writer got there first.
var ErrStatusMismatch = errors.New("repository: status precondition failed")

// UserRepository is the credential store. Implementations return
// apperrors.ErrNotFound for a missing user and an EMAIL_TAKEN AppError when
// a write would duplicate an email.
type UserRepository interface {
	// Create inserts u. CreatedAt and UpdatedAt are set by the store.
	Create(ctx context.Context, u *domain.User) error

	// GetByID retrieves a user by id.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by normalized email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns one page of users, newest first, and the total count.
	List(ctx context.Context, offset, limit int) ([]domain.User, int, error)

	// UpdateProfile applies the supplied fields in a single statement and
	// returns the updated record.
	UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error)

	// UpdateStatus sets status to next only if it currently equals expected.
	// It returns ErrStatusMismatch when the precondition fails.
	UpdateStatus(ctx context.Context, id string, expected, next domain.Status) (*domain.User, error)

	// UpdatePasswordHash replaces the stored hash.
	UpdatePasswordHash(ctx context.Context, id, hash string) error

	// RecordLogin sets last_login.
	RecordLogin(ctx context.Context, id string, at time.Time) error
}
