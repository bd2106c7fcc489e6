package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/auth"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/domain"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/event"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/repository/memory"
)

// --- Mock User Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) List(ctx context.Context, offset, limit int) ([]domain.User, int, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]domain.User), args.Int(1), args.Error(2)
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) UpdateStatus(ctx context.Context, id string, expected, next domain.Status) (*domain.User, error) {
	args := m.Called(ctx, id, expected, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

func (m *mockUserRepository) RecordLogin(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

// --- Recording publisher ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (p *recordingPublisher) record(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, name)
	return p.err
}

func (p *recordingPublisher) UserRegistered(context.Context, *domain.User) error {
	return p.record(event.TypeUserRegistered)
}

func (p *recordingPublisher) UserUpdated(context.Context, *domain.User) error {
	return p.record(event.TypeUserUpdated)
}

func (p *recordingPublisher) UserStatusChanged(context.Context, *domain.User, string) error {
	return p.record(event.TypeUserStatusChanged)
}

func (p *recordingPublisher) PasswordChanged(context.Context, string) error {
	return p.record(event.TypeUserPasswordChanged)
}

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

// --- Fixture ---

const testSecret = "service-test-secret-with-enough-length"

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	clock     *testClock
	repo      *memory.UserRepository
	tokens    *auth.TokenService
	creds     *auth.CredentialService
	events    *recordingPublisher
	accounts  *AccountService
	lifecycle *AccountLifecycle
	profiles  *ProfileService
	authn     *Authenticator
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &testClock{t: time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)}
	repo := memory.NewUserRepository().WithClock(clock.Now)

	tokens, err := auth.NewTokenService(auth.TokenConfig{Secret: testSecret, TTL: time.Hour, Issuer: "account-service"})
	require.NoError(t, err)
	tokens.WithClock(clock.Now)

	creds := auth.NewCredentialService(bcrypt.MinCost, auth.PasswordPolicy{MinLength: 6})
	events := &recordingPublisher{}
	logger := discardLogger()

	return &fixture{
		clock:     clock,
		repo:      repo,
		tokens:    tokens,
		creds:     creds,
		events:    events,
		accounts:  NewAccountService(repo, tokens, creds, events, logger).WithClock(clock.Now),
		lifecycle: NewAccountLifecycle(repo, events, logger),
		profiles:  NewProfileService(repo, creds, events, logger),
		authn:     NewAuthenticator(repo, tokens),
	}
}

// seed creates an active account and returns the stored record.
func (f *fixture) seed(t *testing.T, email, password string, role domain.Role) *domain.User {
	t.Helper()
	u, err := f.accounts.create(context.Background(), SignupInput{FullName: "Seed " + email, Email: email, Password: password}, role)
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	return u
}

func (f *fixture) bearer(t *testing.T, userID string) string {
	t.Helper()
	tok, err := f.tokens.Issue(userID)
	require.NoError(t, err)
	return "Bearer " + tok.Value
}
