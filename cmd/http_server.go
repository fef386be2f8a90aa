package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/identity-api/internal"
	"github.com/frahmantamala/identity-api/internal/bootstrap"
	"github.com/frahmantamala/identity-api/internal/core/events"
	"github.com/frahmantamala/identity-api/internal/notification"
	"github.com/frahmantamala/identity-api/internal/transport/middleware"
	"github.com/frahmantamala/identity-api/internal/transport/rest"
	"github.com/frahmantamala/identity-api/internal/transport/swagger"
	"github.com/frahmantamala/identity-api/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const (
	apiVersion      = "1.0.0"
	shutdownTimeout = 30 * time.Second
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *gorm.DB
	SQL    *sqlx.DB
	Bus    *events.EventBus
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	lg := deps.Logger

	if err := setupRoutes(deps); err != nil {
		lg.Error("failed to set up routes", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	lg.Info("Starting HTTP server", "address", addr, "environment", deps.Config.Environment)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		lg.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			lg.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	// let audit handlers finish before the pool goes away
	deps.Bus.Wait()
	if err := deps.SQL.Close(); err != nil {
		lg.Error("Database close error", "error", err)
	}
	lg.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	lg := deps.Logger

	handlers := rest.NewHandlers(rest.Dependencies{
		Config:    cfg,
		DB:        deps.DB,
		SQL:       deps.SQL,
		Notifier:  notification.New(cfg.Notification, lg),
		Publisher: deps.Bus,
		Logger:    lg,
	})

	opts := rest.Options{
		Logger:         lg,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ExposeErrors:   cfg.Security.ReturnCallStackOnError,
		Version:        apiVersion,
		TrustProxy:     cfg.Server.TrustProxy,
	}
	if cfg.Observability.Metrics.Enabled {
		opts.Metrics = middleware.NewMetrics()
		opts.MetricsPath = cfg.Observability.Metrics.Path
	}
	if cfg.RateLimit.Enabled {
		opts.RateLimiter = middleware.NewRateLimiter(cfg.RateLimit.Burst, cfg.RateLimit.PerSecond)
	}

	doc, err := swagger.Load(context.Background(), cfg.Server.OpenAPIPath)
	if err != nil {
		// docs are optional, the api is not
		lg.Warn("openapi document not served", "path", cfg.Server.OpenAPIPath, "error", err)
	} else {
		definition, err := swagger.DefinitionHandler(doc)
		if err != nil {
			return err
		}
		opts.Definition = definition
	}

	rest.RegisterAllRoutes(deps.Router, handlers, opts)
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	lg := logger.Init(config.Environment, config.Observability.Logging.Level, config.Observability.Logging.Format)

	gdb, sqlDB, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if config.Bootstrap.Enabled {
		seeder := bootstrap.NewSeeder(gdb, config.Bootstrap, config.Security.BCryptCost, lg)
		if _, err := seeder.Seed(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
	}

	bus := events.NewEventBus(lg)
	subscribeAudit(bus, lg)

	return &Dependencies{
		Config: config,
		DB:     gdb,
		SQL:    sqlDB,
		Bus:    bus,
		Router: chi.NewRouter(),
		Logger: lg,
	}, nil
}

// subscribeAudit writes one structured line per lifecycle event.
func subscribeAudit(bus *events.EventBus, lg *slog.Logger) {
	audit := lg.With("component", "audit")
	for _, eventType := range events.AuditedEventTypes {
		bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			audit.InfoContext(ctx, "identity event",
				"event_id", event.EventID(),
				"event_type", event.EventType(),
				"occurred_at", event.OccurredAt(),
				"payload", event.Payload())
			return nil
		})
	}
}
