package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/domain"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/repository"
	apperrors "github.com/ThanishaDewangan/Mini-User-Management-System/pkg/errors"
)

// UserRepository is an in-process repository.UserRepository for development
// and tests. Every method works on copies, so callers never share records
// with the store.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]string
	now     func() time.Time
}

var _ repository.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates an empty store.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used for timestamps.
func (r *UserRepository) WithClock(now func() time.Time) *UserRepository {
	r.now = now
	return r
}

// Create inserts u and stamps its timestamps.
func (r *UserRepository) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[u.Email]; taken {
		return apperrors.EmailTaken()
	}
	if _, exists := r.byID[u.ID]; exists {
		return apperrors.InvalidInput("user id already exists")
	}

	now := r.now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.byID[u.ID] = clone(u)
	r.byEmail[u.Email] = u.ID
	return nil
}

// GetByID returns a copy of the user with id.
func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return clone(u), nil
}

// GetByEmail returns a copy of the user owning email.
func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return clone(r.byID[id]), nil
}

// List returns a page of users, newest first.
func (r *UserRepository) List(_ context.Context, offset, limit int) ([]domain.User, int, error) {
	r.mu.RLock()
	all := make([]domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		all = append(all, *clone(u))
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	total := len(all)
	if offset < 0 || offset >= total {
		return []domain.User{}, total, nil
	}
	end := min(offset+limit, total)
	return all[offset:end], total, nil
}

// UpdateProfile applies the non-nil fields of update.
func (r *UserRepository) UpdateProfile(_ context.Context, id string, update domain.ProfileUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}

	if update.Email != nil && *update.Email != u.Email {
		if owner, taken := r.byEmail[*update.Email]; taken && owner != id {
			return nil, apperrors.EmailTaken()
		}
		delete(r.byEmail, u.Email)
		u.Email = *update.Email
		r.byEmail[u.Email] = id
	}
	if update.FullName != nil {
		u.FullName = *update.FullName
	}
	u.UpdatedAt = r.now()
	return clone(u), nil
}

// UpdateStatus swaps status from expected to next.
func (r *UserRepository) UpdateStatus(_ context.Context, id string, expected, next domain.Status) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if u.Status != expected {
		return nil, repository.ErrStatusMismatch
	}
	u.Status = next
	u.UpdatedAt = r.now()
	return clone(u), nil
}

// UpdatePasswordHash replaces the stored hash.
func (r *UserRepository) UpdatePasswordHash(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = r.now()
	return nil
}

// RecordLogin sets LastLogin.
func (r *UserRepository) RecordLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.LastLogin = &at
	return nil
}

// Len returns the number of stored users.
func (r *UserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func clone(u *domain.User) *domain.User {
	c := *u
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	return &c
}
