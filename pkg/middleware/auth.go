package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ThanishaDewangan/Mini-User-Management-System/pkg/httputil"
	"github.com/ThanishaDewangan/Mini-User-Management-System/pkg/logger"
)

type contextKeyType string

const identityKey contextKeyType = "identity"

// Identity is what the Auth middleware attaches to a request once the caller
// has been authenticated. Principal holds the service-level principal value.
type Identity struct {
	UserID    string
	Role      string
	Principal any
}

// Authenticator resolves the raw Authorization header value into an
// Identity. It returns a typed AppError on failure.
type Authenticator interface {
	Authenticate(ctx context.Context, authorizationHeader string) (Identity, error)
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
type AuthenticatorFunc func(ctx context.Context, authorizationHeader string) (Identity, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, header string) (Identity, error) {
	return f(ctx, header)
}

// Auth runs the authenticator for every request and rejects the request with
// the authenticator's error when it fails. On success the identity is stored
// in context and the request-scoped logger gains user_id and role attributes.
func Auth(a Authenticator, fallback *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := a.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				httputil.WriteError(w, r, err, fallback)
				return
			}

			ctx := WithIdentity(r.Context(), id)
			ctx = logger.WithUserID(ctx, id.UserID)
			if l := logger.FromContext(ctx); l != slog.Default() {
				l = l.With(slog.String("user_id", id.UserID))
				if role := RoleFromContext(ctx); role != "" {
					l = l.With(slog.String("role", role))
				}
				ctx = logger.NewContext(ctx, l)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authorize runs check against the identity stored by Auth. A request with
// no identity, or one that check rejects, is answered with check's error.
func Authorize(check func(Identity) error, fallback *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, _ := IdentityFromContext(r.Context())
			if err := check(id); err != nil {
				httputil.WriteError(w, r, err, fallback)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity stored by Auth.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// UserIDFromContext extracts the authenticated user ID from the request context.
func UserIDFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.UserID
}

// RoleFromContext extracts the authenticated user's role from the request context.
func RoleFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.Role
}
