package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/domain"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/repository"
	apperrors "github.com/ThanishaDewangan/Mini-User-Management-System/pkg/errors"
)

// TokenVerifier resolves a bearer token to the user id it was issued for.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Authenticator maps a credential header to a live, active principal.
type Authenticator struct {
	users  repository.UserRepository
	tokens TokenVerifier
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(users repository.UserRepository, tokens TokenVerifier) *Authenticator {
	return &Authenticator{users: users, tokens: tokens}
}

// ExtractToken returns the token carried by an Authorization header value.
// "Bearer abc" and a bare "abc" both yield "abc".
func ExtractToken(header string) (string, bool) {
	fields := strings.Fields(header)
	switch len(fields) {
	case 0:
		return "", false
	case 1:
		return fields[0], true
	default:
		return fields[1], true
	}
}

// Authenticate verifies the token, loads its subject and checks that the
// account is active. The returned user has its secrets cleared. The status
// is read from the store on every call.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (*domain.User, error) {
	u, err := a.authenticate(ctx, header)
	authnOutcomes.WithLabelValues(outcome(err)).Inc()
	return u, err
}

func (a *Authenticator) authenticate(ctx context.Context, header string) (*domain.User, error) {
	token, ok := ExtractToken(header)
	if !ok {
		return nil, apperrors.MissingToken()
	}

	userID, err := a.tokens.Verify(token)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeExpiredToken) || apperrors.HasCode(err, apperrors.CodeInvalidToken) {
			return nil, err
		}
		return nil, apperrors.InvalidToken(err)
	}

	u, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.PrincipalNotFound()
		}
		return nil, apperrors.InternalAuth(err)
	}

	if !u.IsActive() {
		return nil, apperrors.AccountInactive()
	}
	return u.Sanitized(), nil
}
