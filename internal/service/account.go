package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/auth"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/domain"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/event"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/repository"
	apperrors "github.com/ThanishaDewangan/Mini-User-Management-System/pkg/errors"
	"github.com/ThanishaDewangan/Mini-User-Management-System/pkg/pagination"
)

// invalidLogin is shared by unknown-email and wrong-password failures so the
// two cannot be told apart.
const invalidLogin = "invalid email or password"

// SignupInput holds the parameters for creating an account.
type SignupInput struct {
	FullName string
	Email    string
	Password string
}

// AuthResult is returned by Signup and Login.
type AuthResult struct {
	Token auth.Token
	User  *domain.User
}

// UserPage is one page of ListUsers.
type UserPage struct {
	Users      []domain.User
	Pagination pagination.Meta
}

// AccountService creates accounts, logs users in and lists accounts.
type AccountService struct {
	users       repository.UserRepository
	tokens      *auth.TokenService
	credentials *auth.CredentialService
	events      event.Publisher
	logger      *slog.Logger
	now         func() time.Time
}

// NewAccountService creates an AccountService.
func NewAccountService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	credentials *auth.CredentialService,
	events event.Publisher,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:       users,
		tokens:      tokens,
		credentials: credentials,
		events:      events,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used for last-login stamps.
func (s *AccountService) WithClock(now func() time.Time) *AccountService {
	s.now = now
	return s
}

// Signup creates an active user account and returns a token for it.
func (s *AccountService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	u, err := s.create(ctx, in, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	if err := s.events.UserRegistered(ctx, u); err != nil {
		s.logger.WarnContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", u.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", u.ID))
	return &AuthResult{Token: token, User: u.Sanitized()}, nil
}

// Login checks the credentials and returns a fresh token. Unknown email and
// wrong password fail identically; an inactive account fails with
// AccountInactive only after the password has been verified.
func (s *AccountService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.InvalidInput("email and password are required")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidCredential(invalidLogin)
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	ok, err := s.credentials.Compare(u.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, apperrors.InvalidCredential(invalidLogin)
	}
	if !u.IsActive() {
		return nil, apperrors.AccountInactive()
	}

	at := s.now()
	if err := s.users.RecordLogin(ctx, u.ID, at); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	u.LastLogin = &at

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", u.ID))
	return &AuthResult{Token: token, User: u.Sanitized()}, nil
}

// ListUsers returns one page of accounts, newest first. Admin only.
func (s *AccountService) ListUsers(ctx context.Context, actor *domain.User, params pagination.Params) (*UserPage, error) {
	if err := RequireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if params.Page < 1 || params.Limit < 1 {
		params = pagination.DefaultParams()
	}
	params.Limit = min(params.Limit, pagination.MaxLimit)
	params.Page = min(params.Page, pagination.MaxPage)
	params.Offset = (params.Page - 1) * params.Limit

	users, total, err := s.users.List(ctx, params.Offset, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}

	return &UserPage{Users: users, Pagination: pagination.NewMeta(total, params)}, nil
}

// BootstrapAdmin creates an active admin with the given credentials unless
// the email is already registered. It reports whether an account was created.
func (s *AccountService) BootstrapAdmin(ctx context.Context, in SignupInput) (bool, error) {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return false, nil
	}

	u, err := s.create(ctx, in, domain.RoleAdmin)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeEmailTaken) {
			s.logger.DebugContext(ctx, "bootstrap admin already present")
			return false, nil
		}
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}

	s.logger.InfoContext(ctx, "bootstrap admin created", slog.String("user_id", u.ID))
	return true, nil
}

func (s *AccountService) create(ctx context.Context, in SignupInput, role domain.Role) (*domain.User, error) {
	email := domain.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.FullName)
	if email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if name == "" {
		return nil, apperrors.InvalidInput("full name is required")
	}
	if err := s.credentials.ValidatePolicy(in.Password); err != nil {
		return nil, err
	}

	switch _, err := s.users.GetByEmail(ctx, email); {
	case err == nil:
		return nil, apperrors.EmailTaken()
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, fmt.Errorf("check email availability: %w", err)
	}

	hash, err := s.credentials.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FullName:     name,
		Role:         role,
		Status:       domain.StatusActive,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if apperrors.HasCode(err, apperrors.CodeEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}
