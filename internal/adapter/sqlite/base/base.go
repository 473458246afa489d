// Package base implements the generic audited repository every domain
// repository is built on: parameterized CRUD, pagination, soft delete and
// audit logging over any entity type T.
//
// Lifecycle contract: rows carry created_at / updated_at timestamps and a
// nullable deleted_at marker. A row with non-null deleted_at is logically
// absent from all default reads but stays physically present for audit and
// referential integrity. Every successful mutation writes exactly one
// audit_log row in the same transaction as the mutation itself; if the
// audit write fails the whole transaction rolls back.
package base

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite"
)

// Meta describes the storage shape of one entity: its table and the full
// column list used for SELECTs. Columns must include id, created_at,
// updated_at and deleted_at.
type Meta struct {
	Table   string
	Columns []string
}

// Base is the generic repository for entity type T. T must be a struct
// scannable by scany from Meta.Columns (snake_case column names map onto
// T's fields).
type Base[T any] struct {
	db   *sql.DB
	tx   *sqlite.TxManager
	meta Meta
}

// New creates a Base repository for T. It panics if meta is incomplete,
// since that is a programming error caught at wiring time.
func New[T any](db *sql.DB, meta Meta) *Base[T] {
	if meta.Table == "" || len(meta.Columns) == 0 {
		panic(fmt.Sprintf("base: incomplete meta for table %q", meta.Table))
	}
	if !slices.Contains(meta.Columns, "id") || !slices.Contains(meta.Columns, "deleted_at") {
		panic(fmt.Sprintf("base: table %q must carry id and deleted_at columns", meta.Table))
	}
	return &Base[T]{
		db:   db,
		tx:   sqlite.NewTxManager(db),
		meta: meta,
	}
}

// Table returns the entity's table name.
func (b *Base[T]) Table() string { return b.meta.Table }

// DB returns the underlying database handle for repositories that need
// queries the generic layer cannot express.
func (b *Base[T]) DB() *sql.DB { return b.db }

// Tx returns the transaction manager bound to the repository's database.
func (b *Base[T]) Tx() *sqlite.TxManager { return b.tx }

// Querier resolves the active querier: the transaction carried by ctx if
// present, otherwise the plain database handle.
func (b *Base[T]) Querier(ctx context.Context) sqlite.Querier {
	return sqlite.QuerierFromCtx(ctx, b.db)
}

// Builder returns a squirrel statement builder with SQLite placeholders.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

// SelectBuilder returns a SELECT over all live (non-deleted) rows.
func (b *Base[T]) SelectBuilder() squirrel.SelectBuilder {
	return b.SelectUnfiltered().Where(notDeleted)
}

// SelectUnfiltered returns a SELECT over all rows including soft-deleted
// ones. Callers outside the audit path rarely want this.
func (b *Base[T]) SelectUnfiltered() squirrel.SelectBuilder {
	return Builder().Select(b.meta.Columns...).From(b.meta.Table)
}

// notDeleted is the uniform soft-delete visibility predicate.
var notDeleted = squirrel.Eq{"deleted_at": nil}

// GetByID returns the live entity with the given id.
// Returns domain.ErrNotFound when no live row matches; a soft-deleted row
// is indistinguishable from an absent one.
func (b *Base[T]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	return b.get(ctx, id, false)
}

// get selects one row by id, optionally including soft-deleted rows.
func (b *Base[T]) get(ctx context.Context, id uuid.UUID, includeDeleted bool) (*T, error) {
	qb := b.SelectUnfiltered().Where(squirrel.Eq{"id": id})
	if !includeDeleted {
		qb = qb.Where(notDeleted)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, sqlite.MapError(err, b.meta.Table, id)
	}

	var dst T
	if err := sqlscan.Get(ctx, b.Querier(ctx), &dst, query, args...); err != nil {
		return nil, sqlite.MapError(err, b.meta.Table, id)
	}

	return &dst, nil
}

// Count returns the number of live rows matching the optional predicate.
func (b *Base[T]) Count(ctx context.Context, pred squirrel.Sqlizer) (int, error) {
	qb := Builder().Select("COUNT(*)").From(b.meta.Table).Where(notDeleted)
	if pred != nil {
		qb = qb.Where(pred)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return 0, sqlite.MapError(err, b.meta.Table, uuid.Nil)
	}

	var total int
	if err := sqlscan.Get(ctx, b.Querier(ctx), &total, query, args...); err != nil {
		return 0, sqlite.MapError(err, b.meta.Table, uuid.Nil)
	}

	return total, nil
}

// Exists reports whether any live row matches the predicate. Domain
// repositories use it for uniqueness pre-checks, which must ignore
// soft-deleted rows (a deleted client's name is free for reuse).
func (b *Base[T]) Exists(ctx context.Context, pred squirrel.Sqlizer) (bool, error) {
	qb := Builder().Select("1").From(b.meta.Table).Where(notDeleted).Where(pred).Limit(1)

	query, args, err := qb.ToSql()
	if err != nil {
		return false, sqlite.MapError(err, b.meta.Table, uuid.Nil)
	}

	var one int
	err = sqlscan.Get(ctx, b.Querier(ctx), &one, query, args...)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, sqlite.MapError(err, b.meta.Table, uuid.Nil)
	}

	return true, nil
}

// Select runs an arbitrary SELECT built on SelectBuilder and scans all rows.
func (b *Base[T]) Select(ctx context.Context, qb squirrel.SelectBuilder) ([]T, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, sqlite.MapError(err, b.meta.Table, uuid.Nil)
	}

	items := []T{}
	if err := sqlscan.Select(ctx, b.Querier(ctx), &items, query, args...); err != nil {
		return nil, sqlite.MapError(err, b.meta.Table, uuid.Nil)
	}

	return items, nil
}

func isNotFound(err error) bool {
	return err != nil && (sqlscan.NotFound(err) || errors.Is(err, sql.ErrNoRows))
}
