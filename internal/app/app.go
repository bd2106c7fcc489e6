package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/auth"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/config"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/event"
	handler "github.com/ThanishaDewangan/Mini-User-Management-System/internal/handler/http"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/repository"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/repository/memory"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/repository/postgres"
	"github.com/ThanishaDewangan/Mini-User-Management-System/internal/service"
	"github.com/ThanishaDewangan/Mini-User-Management-System/migrations"
	"github.com/ThanishaDewangan/Mini-User-Management-System/pkg/database"
	"github.com/ThanishaDewangan/Mini-User-Management-System/pkg/health"
	pkgkafka "github.com/ThanishaDewangan/Mini-User-Management-System/pkg/kafka"
	"github.com/ThanishaDewangan/Mini-User-Management-System/pkg/middleware"
	"github.com/ThanishaDewangan/Mini-User-Management-System/pkg/tracing"
)

const serviceVersion = "0.1.0"

// App wires together all dependencies and runs the account service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	producer       *pkgkafka.Producer
	handler        http.Handler
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing(handler.ServiceName, serviceVersion))
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	healthHandler := health.NewHandler()

	users, err := a.openStorage(ctx, healthHandler)
	if err != nil {
		a.closeResources()
		return nil, err
	}

	events := a.openEvents(healthHandler)

	// Build the dependency graph.
	tokens, err := auth.NewTokenService(cfg.Token())
	if err != nil {
		a.closeResources()
		return nil, fmt.Errorf("create token service: %w", err)
	}
	credentials := auth.NewCredentialService(cfg.BcryptCost, cfg.PasswordPolicy())

	accounts := service.NewAccountService(users, tokens, credentials, events, logger)
	svc := handler.Services{
		Accounts:      accounts,
		Lifecycle:     service.NewAccountLifecycle(users, events, logger),
		Profiles:      service.NewProfileService(users, credentials, events, logger),
		Authenticator: service.NewAuthenticator(users, tokens),
	}

	if cfg.BootstrapAdminEnabled() {
		created, err := accounts.BootstrapAdmin(ctx, service.SignupInput{
			FullName: cfg.AdminFullName,
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
		})
		if err != nil {
			a.closeResources()
			return nil, fmt.Errorf("bootstrap admin: %w", err)
		}
		logger.Info("bootstrap admin checked", slog.Bool("created", created))
	}

	// HTTP router.
	a.handler = handler.NewRouter(svc, healthHandler, logger, handler.RouterConfig{
		CORS: middleware.CORSConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			ExposedHeaders: []string{middleware.CorrelationIDHeader},
			MaxAge:         3600,
			Environment:    cfg.Environment,
		},
		PprofEnabled:      cfg.PprofEnabled,
		PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           a.handler,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// openStorage selects the user repository named by STORAGE_DRIVER. The
// postgres driver connects, registers pool metrics and applies migrations.
func (a *App) openStorage(ctx context.Context, healthHandler *health.Handler) (repository.UserRepository, error) {
	if a.cfg.StorageDriver == config.StorageMemory {
		a.logger.Warn("using in-memory storage, data is lost on restart")
		return memory.NewUserRepository(), nil
	}

	pgCfg := a.cfg.Postgres()
	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	a.logger.Info("connected to PostgreSQL",
		slog.String("host", pgCfg.Host),
		slog.Int("port", pgCfg.Port),
		slog.String("database", pgCfg.DBName),
	)

	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, handler.ServiceName); err != nil {
		return nil, err
	}

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, a.logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	a.logger.Info("database migrations completed")

	// Configure slow query logging.
	if threshold := a.cfg.SlowQueryThreshold(); threshold > 0 {
		database.SetSlowQueryLogging(threshold, a.logger)
	}

	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})

	return postgres.NewUserRepository(pool), nil
}

// openEvents returns the Kafka-backed publisher, or a no-op one when Kafka
// is disabled.
func (a *App) openEvents(healthHandler *health.Handler) event.Publisher {
	if !a.cfg.KafkaEnabled {
		a.logger.Info("kafka disabled, domain events are discarded")
		return event.Noop{}
	}

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(a.cfg.KafkaBrokers), a.logger)
	a.producer = producer
	a.logger.Info("kafka producer initialized", slog.Any("brokers", a.cfg.KafkaBrokers))

	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	return event.NewProducer(producer, a.logger)
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order: HTTP server first so
// in-flight requests finish, then the tracer, the Kafka producer and the
// PostgreSQL pool.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.closeResources(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// closeResources releases everything NewApp opened, in reverse dependency
// order. It is safe on a partially built App.
func (a *App) closeResources() error {
	var errs []error

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.tracerShutdown = nil
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.producer = nil
	}

	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}

	return errors.Join(errs...)
}
