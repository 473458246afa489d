// Command refresh-reporting rebuilds the denormalized reporting projection
// from the live tables. It is intended to be invoked by an external cron
// job, not as an in-process goroutine.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite"
	"github.com/carelog/carelog-backend/internal/adapter/sqlite/reporting"
	"github.com/carelog/carelog-backend/internal/app"
	"github.com/carelog/carelog-backend/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Reporting.RefreshTimeout)
	defer cancel()

	db, err := sqlite.Open(ctx, cfg.Database)
	if err != nil {
		logger.Error("open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	reportRepo := reporting.New(db)

	projected, err := reportRepo.Refresh(ctx)
	if err != nil {
		logger.Error("refresh failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("refresh completed",
		slog.Int("rows", projected),
	)
}
