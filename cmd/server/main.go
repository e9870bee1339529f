package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"learnhub/internal/app"
	"learnhub/internal/config"
	"learnhub/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)))

	// Startup waits for Postgres and Redis; a signal aborts the wait.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	application, err := app.New(ctx, cfg)
	stop()
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}
