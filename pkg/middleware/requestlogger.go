package middleware

import (
	"log/slog"
	"net/http"

	"github.com/ThanishaDewangan/Mini-User-Management-System/pkg/logger"
)

// RequestLogger builds a request-scoped logger enriched with correlation_id,
// trace_id and span_id and stores it in context. Downstream handlers retrieve
// it with logger.FromContext(ctx). Auth adds user_id once the caller is known;
// caller-supplied headers are never trusted for identity.
//
// Mount it after RequestLogging (correlation id) and Tracing (span context).
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if userID := UserIDFromContext(ctx); userID != "" {
				ctx = logger.WithUserID(ctx, userID)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
