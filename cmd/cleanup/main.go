// Command cleanup purges old read notifications once and exits. It is meant
// for external schedulers when the server runs with CLEANUP_ENABLED=false.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"learnhub/internal/config"
	"learnhub/internal/database"
	"learnhub/internal/jobs"
	"learnhub/internal/logger"
	"learnhub/internal/repository"
)

func main() {
	cfg, err := config.LoadCleanup()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DatabaseURL, 2, 1, cfg.ConnectRetryDelay)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	runCtx, cancel := context.WithTimeout(ctx, cfg.CleanupTimeout)
	defer cancel()

	cleanup := jobs.NewNotificationCleanup(repository.NewNotificationRepository(db.Pool), cfg.NotificationRetention)
	if _, err := cleanup.Run(runCtx); err != nil {
		slog.Error("notification cleanup failed", "error", err)
		cancel()
		db.Close()
		os.Exit(1)
	}
}
