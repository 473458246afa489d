// Package sqlite provides the shared SQLite store: connection setup,
// the Querier abstraction, transaction management, goose migrations and
// driver-to-domain error mapping.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/pressly/goose/v3"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite/migrations"
	"github.com/carelog/carelog-backend/internal/config"
)

// Open opens the SQLite database described by cfg, applies connection
// pragmas (WAL journaling, foreign keys, busy timeout) and pings it for
// fail-fast validation.
//
// A ":memory:" path is opened with a shared cache so that every pooled
// connection sees the same database.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.Path, err)
	}

	db.SetMaxOpenConns(cfg.MaxConns)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database %s: %w", cfg.Path, err)
	}

	return db, nil
}

// Migrate applies all pending goose migrations from the embedded FS.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

func dsn(cfg config.DatabaseConfig) string {
	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_foreign_keys", "ON")
	params.Set("_busy_timeout", fmt.Sprintf("%d", cfg.BusyTimeout.Milliseconds()))
	params.Set("_loc", "UTC")

	path := cfg.Path
	if path == ":memory:" {
		path = "file::memory:"
		params.Set("mode", "memory")
		params.Set("cache", "shared")
	}

	return path + "?" + params.Encode()
}
