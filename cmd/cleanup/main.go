// Command cleanup removes terminal searches older than the configured
// retention period, together with their cascaded pain points, quotes, and
// analyses. It is intended to be invoked by an external cron job, not as
// an in-process goroutine.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/painradar/painradar-backend/internal/adapter/postgres"
	searchrepo "github.com/painradar/painradar-backend/internal/adapter/postgres/search"
	"github.com/painradar/painradar-backend/internal/app"
	"github.com/painradar/painradar-backend/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	repo := searchrepo.New(pool)

	threshold := time.Now().AddDate(0, 0, -cfg.Search.RetentionDays)

	deleted, err := repo.DeleteTerminalBefore(ctx, threshold)
	if err != nil {
		logger.Error("cleanup failed",
			slog.String("error", err.Error()),
			slog.Time("threshold", threshold),
		)
		os.Exit(1)
	}

	logger.Info("cleanup completed",
		slog.Int64("deleted", deleted),
		slog.Time("threshold", threshold),
	)
}
