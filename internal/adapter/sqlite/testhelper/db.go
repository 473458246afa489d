// Package testhelper creates throwaway SQLite databases with migrations
// applied, plus seed helpers for entities most repository tests need.
package testhelper

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite"
	"github.com/carelog/carelog-backend/internal/config"
)

// SetupTestDB opens a fresh file-backed SQLite database in a per-test temp
// directory and applies all goose migrations. The handle is closed via
// t.Cleanup; the file vanishes with the temp dir.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		BusyTimeout: 5 * time.Second,
		MaxConns:    4,
	}

	db, err := sqlite.Open(ctx, cfg)
	if err != nil {
		t.Fatalf("testhelper: open test DB: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := sqlite.Migrate(ctx, db); err != nil {
		t.Fatalf("testhelper: migrate test DB: %v", err)
	}

	return db
}
