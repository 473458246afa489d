package base

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite"
	"github.com/carelog/carelog-backend/internal/domain"
)

// AuditTable is the audit log's physical table. The audit read API lives in
// the audit repository package; the write path lives here because every
// generic mutation must append its entry inside the mutation's transaction.
const AuditTable = "audit_log"

// writeAudit appends one audit row using the querier resolved from ctx, so
// that inside a transaction the audit entry shares the mutation's fate.
func (b *Base[T]) writeAudit(ctx context.Context, action domain.AuditAction, recordID uuid.UUID, oldValues, newValues json.RawMessage, actorID uuid.UUID) error {
	qb := Builder().
		Insert(AuditTable).
		Columns("id", "table_name", "record_id", "action", "old_values", "new_values", "user_id", "created_at").
		Values(
			uuid.New(),
			b.meta.Table,
			recordID,
			action.String(),
			nullableJSON(oldValues),
			nullableJSON(newValues),
			actorID,
			time.Now().UTC(),
		)

	query, args, err := qb.ToSql()
	if err != nil {
		return sqlite.MapError(err, AuditTable, recordID)
	}

	if _, err := b.Querier(ctx).ExecContext(ctx, query, args...); err != nil {
		return sqlite.MapError(err, AuditTable, recordID)
	}

	return nil
}

// snapshot serializes an entity for an audit before/after value.
func snapshot[T any](entity *T) (json.RawMessage, error) {
	if entity == nil {
		return nil, nil
	}
	return json.Marshal(entity)
}

// nullableJSON converts an optional blob to a driver value (nil -> NULL).
func nullableJSON(raw json.RawMessage) any {
	if raw == nil {
		return nil
	}
	return []byte(raw)
}
