package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"healthdash/docs"
	"healthdash/internal/auth"
	"healthdash/internal/config"
	"healthdash/internal/database"
	"healthdash/internal/database/migration"
	handlers "healthdash/internal/http/handler"
	"healthdash/internal/http/middleware"
	"healthdash/internal/logger"
	"healthdash/internal/notify"
	tracing "healthdash/internal/otel"
	"healthdash/internal/records"
	"healthdash/internal/reminder"
	"healthdash/internal/repository"
	"healthdash/internal/repository/memory"
	"healthdash/internal/repository/postgres"
	"healthdash/internal/service"
	"healthdash/internal/storage"
	"healthdash/internal/summary"
)

const shutdownTimeout = 10 * time.Second

// @title Health Dashboard API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logger.NewStdout(cfg.App.LogLevel, cfg.Location())
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server_exit", zap.Error(err))
	}
}

func run(cfg *config.AppConfig, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Otel, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	db, settings, err := openSettings(ctx, cfg, log)
	if err != nil {
		return err
	}

	objects, err := openObjectStorage(ctx, cfg, log)
	if err != nil {
		return err
	}

	store := records.NewStore()
	hub := notify.NewHub(log.Named("ws"), cfg.Notifications.PromptTimeout)

	reminderMetrics, err := reminder.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("register reminder metrics: %w", err)
	}
	scheduler := reminder.NewScheduler(hub, log.Named("reminder"), reminder.WithMetrics(reminderMetrics))
	store.OnAppointmentsChanged(scheduler.SetAppointments)

	notifications := notify.NewService(settings, scheduler, hub, log)
	if err := notifications.Restore(ctx); err != nil {
		return fmt.Errorf("restore notification settings: %w", err)
	}

	tokens, err := auth.NewTokens(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL, cfg.Auth.ShareTTL)
	if err != nil {
		return fmt.Errorf("init tokens: %w", err)
	}
	if cfg.Auth.SessionSecret == "" {
		log.Warn("SESSION_SECRET is not set; sessions will not survive a restart")
	}

	recordSvc := service.NewRecordService(store, objects,
		service.WithLocation(cfg.Location()),
		service.WithLogger(log.Named("records")),
	)
	if cfg.Summary.APIKey == "" {
		log.Warn("SUMMARY_API_KEY is not set; document summaries will fail")
	}
	summarySvc, err := service.NewSummaryService(recordSvc, summary.NewGateway(cfg.Summary), reg, log.Named("summary"))
	if err != nil {
		return fmt.Errorf("register summary metrics: %w", err)
	}

	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             25 << 20,
		DisableStartupMessage: true,
	})

	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics"
	})))
	app.Use(middleware.Logger(log.Named("http")))
	app.Use(promMiddleware.Handler())

	handlers.RegisterRoutes(app, handlers.Dependencies{
		DB:            db,
		Records:       recordSvc,
		Summaries:     summarySvc,
		Sessions:      service.NewSessionService(settings, tokens),
		Shares:        service.NewShareService(recordSvc, tokens, cfg.App.PublicBaseURL),
		Notifications: notifications,
		Hub:           hub,
		Gatherer:      reg,
		LinkExpiry:    cfg.MinIO.LinkExpiry,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := ":" + cfg.App.Port
		log.Info("server_listening", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("server_shutting_down")

		scheduler.Stop()
		hub.Close()

		var errs []error
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		if db != nil {
			if err := db.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close database: %w", err))
			}
		}

		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			errs = append(errs, fmt.Errorf("flush traces: %w", err))
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

// openSettings connects to PostgreSQL when configured and falls back to memory otherwise.
func openSettings(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (*sql.DB, repository.SettingsRepository, error) {
	if !database.Enabled(cfg.Database) {
		log.Info("settings_backend", zap.String("backend", "memory"))
		return nil, memory.NewSettingsMemory(), nil
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	log.Info("settings_backend", zap.String("backend", "postgres"))
	return db, postgres.NewSettingsPostgres(db), nil
}

// openObjectStorage connects to MinIO when configured and falls back to memory otherwise.
func openObjectStorage(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (storage.Storage, error) {
	if cfg.MinIO.Endpoint == "" {
		log.Info("object_storage_backend", zap.String("backend", "memory"))
		return storage.NewMemory(), nil
	}
	objects, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	log.Info("object_storage_backend", zap.String("backend", "minio"), zap.String("bucket", cfg.MinIO.Bucket))
	return objects, nil
}
