package base

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite"
	"github.com/carelog/carelog-backend/internal/domain"
)

// Create inserts the row, stamps id and timestamps, writes the INSERT audit
// entry and re-reads the entity inside one transaction. The returned value
// therefore reflects exactly what was persisted, including storage-side
// defaults.
func (b *Base[T]) Create(ctx context.Context, row Row, actorID uuid.UUID) (*T, error) {
	row = row.Clone()
	id := row.ensureID()

	now := time.Now().UTC()
	row["created_at"] = now
	row["updated_at"] = now

	var created *T
	err := b.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := b.insert(txCtx, row); err != nil {
			return err
		}

		var err error
		created, err = b.get(txCtx, id, false)
		if err != nil {
			return fmt.Errorf("reread after insert: %w", err)
		}

		newValues, err := snapshot(created)
		if err != nil {
			return fmt.Errorf("snapshot %s %s: %w", b.meta.Table, id, err)
		}

		return b.writeAudit(txCtx, domain.AuditActionInsert, id, nil, newValues, actorID)
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// BulkCreate invokes Create for each row inside one outer transaction.
// Any failure aborts the entire batch.
func (b *Base[T]) BulkCreate(ctx context.Context, rows []Row, actorID uuid.UUID) ([]*T, error) {
	created := make([]*T, 0, len(rows))

	err := b.tx.RunInTx(ctx, func(txCtx context.Context) error {
		for i, row := range rows {
			entity, err := b.Create(txCtx, row, actorID)
			if err != nil {
				return fmt.Errorf("bulk create %s item %d: %w", b.meta.Table, i, err)
			}
			created = append(created, entity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Update applies a partial change set to the live row with the given id.
//
// Returns domain.ErrNotFound when no live row matches. An empty change set
// (after stripping immutable columns) short-circuits: the unmodified entity
// is returned and no audit entry is written. Otherwise updated_at is
// stamped, the UPDATE plus its audit entry run in one transaction, and
// domain.ErrConflict is returned if the row vanished between read and
// write (concurrent deletion race).
func (b *Base[T]) Update(ctx context.Context, id uuid.UUID, changes Row, actorID uuid.UUID) (*T, error) {
	old, err := b.get(ctx, id, false)
	if err != nil {
		return nil, err
	}

	changes = changes.sanitized()
	if len(changes) == 0 {
		return old, nil
	}
	changes["updated_at"] = time.Now().UTC()

	oldValues, err := snapshot(old)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s %s: %w", b.meta.Table, id, err)
	}

	var updated *T
	err = b.tx.RunInTx(ctx, func(txCtx context.Context) error {
		qb := Builder().Update(b.meta.Table).Where(squirrel.Eq{"id": id}).Where(notDeleted)
		for _, col := range changes.sortedKeys() {
			qb = qb.Set(col, changes[col])
		}

		query, args, err := qb.ToSql()
		if err != nil {
			return sqlite.MapError(err, b.meta.Table, id)
		}

		res, err := b.Querier(txCtx).ExecContext(txCtx, query, args...)
		if err != nil {
			return sqlite.MapError(err, b.meta.Table, id)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return sqlite.MapError(err, b.meta.Table, id)
		}
		if affected == 0 {
			return fmt.Errorf("%s %s: deleted concurrently: %w", b.meta.Table, id, domain.ErrConflict)
		}

		updated, err = b.get(txCtx, id, false)
		if err != nil {
			return fmt.Errorf("reread after update: %w", err)
		}

		newValues, err := snapshot(updated)
		if err != nil {
			return fmt.Errorf("snapshot %s %s: %w", b.meta.Table, id, err)
		}

		return b.writeAudit(txCtx, domain.AuditActionUpdate, id, oldValues, newValues, actorID)
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// SoftDelete marks the live row deleted by setting deleted_at, stamps
// updated_at, and writes a DELETE audit entry capturing the old record and
// the synthetic new record carrying the deletion timestamp, all in one
// transaction. Returns domain.ErrNotFound when no live row matches.
func (b *Base[T]) SoftDelete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	old, err := b.get(ctx, id, false)
	if err != nil {
		return err
	}

	oldValues, err := snapshot(old)
	if err != nil {
		return fmt.Errorf("snapshot %s %s: %w", b.meta.Table, id, err)
	}

	now := time.Now().UTC()

	return b.tx.RunInTx(ctx, func(txCtx context.Context) error {
		qb := Builder().Update(b.meta.Table).
			Set("deleted_at", now).
			Set("updated_at", now).
			Where(squirrel.Eq{"id": id}).
			Where(notDeleted)

		query, args, err := qb.ToSql()
		if err != nil {
			return sqlite.MapError(err, b.meta.Table, id)
		}

		res, err := b.Querier(txCtx).ExecContext(txCtx, query, args...)
		if err != nil {
			return sqlite.MapError(err, b.meta.Table, id)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return sqlite.MapError(err, b.meta.Table, id)
		}
		if affected == 0 {
			return fmt.Errorf("%s %s: %w", b.meta.Table, id, domain.ErrNotFound)
		}

		deleted, err := b.get(txCtx, id, true)
		if err != nil {
			return fmt.Errorf("reread after soft delete: %w", err)
		}

		newValues, err := snapshot(deleted)
		if err != nil {
			return fmt.Errorf("snapshot %s %s: %w", b.meta.Table, id, err)
		}

		return b.writeAudit(txCtx, domain.AuditActionDelete, id, oldValues, newValues, actorID)
	})
}

// HardDelete physically removes the row (live or soft-deleted) and writes a
// DELETE audit entry with null new values. Idempotent: returns false, not
// an error, when the row is already absent.
func (b *Base[T]) HardDelete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (bool, error) {
	old, err := b.get(ctx, id, true)
	if err != nil {
		if isAbsent(err) {
			return false, nil
		}
		return false, err
	}

	oldValues, err := snapshot(old)
	if err != nil {
		return false, fmt.Errorf("snapshot %s %s: %w", b.meta.Table, id, err)
	}

	err = b.tx.RunInTx(ctx, func(txCtx context.Context) error {
		qb := Builder().Delete(b.meta.Table).Where(squirrel.Eq{"id": id})

		query, args, err := qb.ToSql()
		if err != nil {
			return sqlite.MapError(err, b.meta.Table, id)
		}

		if _, err := b.Querier(txCtx).ExecContext(txCtx, query, args...); err != nil {
			return sqlite.MapError(err, b.meta.Table, id)
		}

		return b.writeAudit(txCtx, domain.AuditActionDelete, id, oldValues, nil, actorID)
	})
	if err != nil {
		return false, err
	}

	return true, nil
}

// insert executes the INSERT for an already-stamped row.
func (b *Base[T]) insert(ctx context.Context, row Row) error {
	cols := row.sortedKeys()
	vals := make([]any, len(cols))
	for i, col := range cols {
		vals[i] = row[col]
	}

	query, args, err := Builder().Insert(b.meta.Table).Columns(cols...).Values(vals...).ToSql()
	if err != nil {
		return sqlite.MapError(err, b.meta.Table, uuid.Nil)
	}

	if _, err := b.Querier(ctx).ExecContext(ctx, query, args...); err != nil {
		return sqlite.MapError(err, b.meta.Table, uuid.Nil)
	}

	return nil
}

func isAbsent(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
