package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/domain"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/repository"
	apperrors "github.com/ThanishaDewangan/Mini-User-Management-System/pkg/errors"
)

type tickingClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func newRepo() *UserRepository {
	clock := &tickingClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewUserRepository().WithClock(clock.Now)
}

func newUser(id, email string) *domain.User {
	return &domain.User{
		ID:           id,
		Email:        email,
		PasswordHash: "hash",
		FullName:     "User " + id,
		Role:         domain.RoleUser,
		Status:       domain.StatusActive,
	}
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	u := newUser("u-1", "a@example.com")

	require.NoError(t, repo.Create(ctx, u))
	assert.False(t, u.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	byEmail, err := repo.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", byEmail.ID)

	got.FullName = "mutated"
	again, err := repo.GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "User u-1", again.FullName, "store must not share records with callers")
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	require.NoError(t, repo.Create(ctx, newUser("u-1", "a@example.com")))

	err := repo.Create(ctx, newUser("u-2", "a@example.com"))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeEmailTaken))
	assert.Equal(t, 1, repo.Len())
}

func TestUserRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()

	_, err := repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = repo.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = repo.UpdateStatus(ctx, "missing", domain.StatusActive, domain.StatusInactive)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, repo.UpdatePasswordHash(ctx, "missing", "h"), apperrors.ErrNotFound)
	assert.ErrorIs(t, repo.RecordLogin(ctx, "missing", time.Now()), apperrors.ErrNotFound)
}

func TestUserRepository_List_NewestFirstAndPaged(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.Create(ctx, newUser(fmt.Sprintf("u-%d", i), fmt.Sprintf("u%d@example.com", i))))
	}

	page, total, err := repo.List(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "u-5", page[0].ID)
	assert.Equal(t, "u-4", page[1].ID)

	page, _, err = repo.List(ctx, 4, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "u-1", page[0].ID)

	page, _, err = repo.List(ctx, 10, 2)
	require.NoError(t, err)
	assert.NotNil(t, page)
	assert.Empty(t, page)

	page, total, err = repo.List(ctx, -3, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, page)
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	require.NoError(t, repo.Create(ctx, newUser("u-1", "a@example.com")))
	require.NoError(t, repo.Create(ctx, newUser("u-2", "b@example.com")))

	taken := "b@example.com"
	_, err := repo.UpdateProfile(ctx, "u-1", domain.ProfileUpdate{Email: &taken})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeEmailTaken))

	free := "c@example.com"
	got, err := repo.UpdateProfile(ctx, "u-1", domain.ProfileUpdate{Email: &free})
	require.NoError(t, err)
	assert.Equal(t, free, got.Email)
	assert.Equal(t, "User u-1", got.FullName)

	_, err = repo.GetByEmail(ctx, "a@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "old email must be released")
	reclaimed := "a@example.com"
	_, err = repo.UpdateProfile(ctx, "u-2", domain.ProfileUpdate{Email: &reclaimed})
	assert.NoError(t, err)
}

func TestUserRepository_UpdateStatus_CompareAndSwap(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	require.NoError(t, repo.Create(ctx, newUser("u-1", "a@example.com")))

	_, err := repo.UpdateStatus(ctx, "u-1", domain.StatusInactive, domain.StatusActive)
	assert.ErrorIs(t, err, repository.ErrStatusMismatch)

	got, err := repo.UpdateStatus(ctx, "u-1", domain.StatusActive, domain.StatusInactive)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInactive, got.Status)
}

func TestUserRepository_UpdateStatus_ConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	require.NoError(t, repo.Create(ctx, newUser("u-1", "a@example.com")))

	const n = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.UpdateStatus(ctx, "u-1", domain.StatusActive, domain.StatusInactive); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestUserRepository_PasswordAndLogin(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	require.NoError(t, repo.Create(ctx, newUser("u-1", "a@example.com")))

	require.NoError(t, repo.UpdatePasswordHash(ctx, "u-1", "new-hash"))
	at := time.Date(2026, 5, 5, 5, 5, 5, 0, time.UTC)
	require.NoError(t, repo.RecordLogin(ctx, "u-1", at))

	got, err := repo.GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)
	require.NotNil(t, got.LastLogin)
	assert.Equal(t, at, *got.LastLogin)
}
