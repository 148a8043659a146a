package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpadapter "lucky-wheel/internal/adapter/http"
	"lucky-wheel/internal/adapter/notify"
	"lucky-wheel/internal/adapter/postgres"
	"lucky-wheel/internal/adapter/usecase"
	"lucky-wheel/internal/config"
	"lucky-wheel/internal/db"
)

// main is the entry point of the lucky-wheel service. It loads
// configuration, optionally runs database migrations, initializes the
// database pool, the notifier and the wheel engine, then starts the HTTP
// server. On receiving a termination signal it gracefully shuts down.
func main() {
	exitCode := 1
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		} else {
			os.Exit(exitCode)
		}
	}()

	// A local .env is convenient in development; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	var logger *slog.Logger
	{
		// Initialise structured logger based on configuration.
		var handler slog.Handler
		opts := &slog.HandlerOptions{Level: cfg.Log.SlogLevel(), AddSource: cfg.Log.AddSource}
		switch cfg.Log.SlogFormat() {
		case "json":
			handler = slog.NewJSONHandler(os.Stdout, opts)
		default:
			handler = slog.NewTextHandler(os.Stdout, opts)
		}
		logger = slog.New(handler)
	}

	// Optionally run migrations if configured. We use the Psql sub-config.
	if cfg.Psql.RunMigrations {
		if err = db.Migrate(cfg.Psql.Addr.String()); err != nil {
			logger.Error("migration error", slog.Any("error", err))
		} else {
			logger.Info("migrations applied successfully")
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.Psql)
	if err != nil {
		logger.Error("database connection error", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	notifier, err := notify.New(cfg.Notify, cfg.Redis, cfg.Kafka, logger)
	if err != nil {
		logger.Error("notifier setup error", slog.Any("error", err))
		os.Exit(1)
	}

	repo := postgres.NewWheelRepository(pool)
	svc := usecase.NewWheelUseCase(repo, notifier, logger, cfg.Wheel)

	handler := httpadapter.NewHandler(svc, logger)
	srv := &http.Server{
		Addr:    cfg.HTTP.Addr(),
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("server listening", slog.String("addr", cfg.HTTP.Addr()))
		if err = srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	value := <-quit
	exitCode = 128 + int(value.(syscall.Signal))

	ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err = srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	} else {
		logger.Info("server gracefully stopped")
	}
}
