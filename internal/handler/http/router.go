package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/domain"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/service"
	"github.com/ThanishaDewangan/Mini-User-Management-System/pkg/health"
	"github.com/ThanishaDewangan/Mini-User-Management-System/pkg/middleware"
)

// ServiceName labels metrics and spans emitted by the router.
const ServiceName = "account"

// Services groups the use cases served over HTTP.
type Services struct {
	Accounts      *service.AccountService
	Lifecycle     *service.AccountLifecycle
	Profiles      *service.ProfileService
	Authenticator *service.Authenticator
}

// RouterConfig holds the transport-level options.
type RouterConfig struct {
	CORS              middleware.CORSConfig
	PprofEnabled      bool
	PprofAllowedCIDRs []string
}

// NewRouter creates a chi router with all account service routes registered.
func NewRouter(svc Services, healthHandler *health.Handler, logger *slog.Logger, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger, "/health", "/metrics"))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(ServiceName))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	if cfg.PprofEnabled {
		middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)
	}

	authenticate := Authenticate(svc.Authenticator, logger)
	adminOnly := RequireRole(domain.RoleAdmin, logger)

	authHandler := NewAuthHandler(svc.Accounts, logger)
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(middleware.NoStore)

		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", authHandler.Me)
			r.Post("/logout", authHandler.Logout)
		})
	})

	userHandler := NewUserHandler(svc.Accounts, svc.Lifecycle, svc.Profiles, logger)
	r.Route("/api/users", func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(authenticate)

		r.Get("/profile", userHandler.GetProfile)
		r.Patch("/profile", userHandler.UpdateProfile)
		r.Patch("/profile/password", userHandler.ChangePassword)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/", userHandler.List)
			r.Patch("/{id}/activate", userHandler.Activate)
			r.Patch("/{id}/deactivate", userHandler.Deactivate)
		})
	})

	return r
}
