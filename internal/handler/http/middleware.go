package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/domain"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/service"
	"github.com/ThanishaDewangan/Mini-User-Management-System/pkg/middleware"
)

// Authenticate resolves the Authorization header through authn and stores
// the resulting principal in the request identity.
func Authenticate(authn *service.Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Auth(middleware.AuthenticatorFunc(
		func(ctx context.Context, header string) (middleware.Identity, error) {
			u, err := authn.Authenticate(ctx, header)
			if err != nil {
				return middleware.Identity{}, err
			}
			return middleware.Identity{UserID: u.ID, Role: string(u.Role), Principal: u}, nil
		},
	), logger)
}

// RequireRole rejects requests whose principal does not hold role. It must
// be mounted after Authenticate.
func RequireRole(role domain.Role, logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Authorize(func(id middleware.Identity) error {
		principal, _ := id.Principal.(*domain.User)
		return service.RequireRole(principal, role)
	}, logger)
}

// principal returns the user stored by Authenticate, or nil.
func principal(r *http.Request) *domain.User {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return nil
	}
	u, _ := id.Principal.(*domain.User)
	return u
}
