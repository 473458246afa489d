package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/sqlscan"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/carelog/carelog-backend/internal/domain"
)

// MapError converts driver errors to domain errors, wrapping them with the
// table and record id for diagnosis.
// context.DeadlineExceeded and context.Canceled are NOT mapped — they pass through.
func MapError(err error, table string, id any) error {
	if err == nil {
		return nil
	}

	// context errors pass through as-is
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %v: %w", table, id, err)
	}

	// Absent row -> domain.ErrNotFound. scany reports its own not-found
	// error rather than sql.ErrNoRows, so both are checked.
	if errors.Is(err, sql.ErrNoRows) || sqlscan.NotFound(err) {
		return fmt.Errorf("%s %v: %w", table, id, domain.ErrNotFound)
	}

	// SQLite constraint codes
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%s %v: %w", table, id, domain.ErrAlreadyExists)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%s %v: %w", table, id, domain.ErrNotFound)
		case sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintNotNull:
			return fmt.Errorf("%s %v: %w", table, id, domain.ErrValidation)
		}
	}

	// Everything else: wrap with context
	return fmt.Errorf("%s %v: %w", table, id, err)
}
