package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"ocrweb/internal/config"
	handlers "ocrweb/internal/http/handler"
	"ocrweb/internal/http/middleware"
	"ocrweb/internal/logging"
	"ocrweb/internal/otel"
	"ocrweb/internal/pipeline"
	"ocrweb/internal/repository"
	"ocrweb/internal/service"
	"ocrweb/internal/storage"
	"ocrweb/internal/view"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(env *appEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the upload web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, env)
		},
	}
}

func serve(ctx context.Context, env *appEnv) error {
	cfg, logger := env.cfg, env.logger
	if err := cfg.Validate(); err != nil {
		return err
	}

	shutdownTracing, err := otel.Init(ctx, version, logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	store, err := storage.NewLocal(cfg.Media.Root, cfg.Media.URL)
	if err != nil {
		return err
	}

	ledger, closeLedger, err := openLedger(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer closeLedger()

	recognizer, err := newRecognizer(cfg.Engine, reg, logger)
	if err != nil {
		return err
	}

	renderer, err := view.NewRenderer()
	if err != nil {
		return err
	}

	svc := service.NewExtractionService(service.ExtractionDeps{
		Store:      store,
		Ledger:     ledger,
		Archive:    openArchive(cfg.MinIO, logger),
		Recognizer: recognizer,
		Logger:     logger,
	})

	app, err := newApp(cfg, appDeps{
		Service:    svc,
		Recognizer: recognizer,
		Ledger:     ledger,
		View:       renderer,
		Registry:   reg,
		MediaRoot:  store.Root(),
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	sweeper := service.NewSweeper(store, ledger, time.Duration(cfg.Media.RetentionHours)*time.Hour, logger)
	go sweeper.Run(ctx, time.Duration(cfg.Media.SweepIntervalMin)*time.Minute)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_starting", "addr", addr, "app_host", cfg.AppHost, "debug", cfg.Debug, "engine", recognizer.EngineName())
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server_stopping")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// appDeps are the collaborators newApp wires into the HTTP stack.
// Ledger is optional.
type appDeps struct {
	Service    service.ExtractionService
	Recognizer pipeline.Recognizer
	Ledger     repository.UploadRepository
	View       *view.Renderer
	Registry   *prometheus.Registry
	MediaRoot  string
	Logger     *slog.Logger
}

// newApp builds the fiber app: middleware chain first, then routes.
func newApp(cfg *config.AppConfig, d appDeps) (*fiber.App, error) {
	promMiddleware, err := middleware.NewPrometheusMiddleware(d.Registry)
	if err != nil {
		return nil, err
	}

	cookieKey, err := middleware.CookieKey(cfg.SecretKey)
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:      "ocrweb",
		BodyLimit:    cfg.Media.MaxUploadBytes,
		ErrorHandler: handlers.ErrorHandler(d.View, d.Logger),
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger(logging.Location(cfg.Timezone)))
	app.Use(promMiddleware.Handler())
	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.Debug}))
	app.Use(middleware.AllowedHosts(cfg.AllowedHosts))
	app.Use(encryptcookie.New(encryptcookie.Config{Key: cookieKey}))
	// Secure cookie flag follows the request scheme
	app.Use(middleware.CSRF(csrf.Config{
		KeyLookup:      "form:csrf_token",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieHTTPOnly: true,
		Expiration:     time.Hour,
		KeyGenerator:   utils.UUIDv4,
		ContextKey:     handlers.CSRFContextKey,
	}))

	handlers.RegisterRoutes(app, handlers.Deps{
		Service:        d.Service,
		View:           d.View,
		Recognizer:     d.Recognizer,
		Ledger:         d.Ledger,
		Gatherer:       d.Registry,
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
		MediaRoot:      d.MediaRoot,
		MediaURL:       cfg.Media.URL,
		Debug:          cfg.Debug,
	})
	return app, nil
}
