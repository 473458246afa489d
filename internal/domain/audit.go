package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditRecord is an immutable account of one mutation: who changed what,
// when, with before/after snapshots. Every create, update, soft delete and
// hard delete performed through the repository layer writes exactly one
// record in the same transaction as the mutation itself.
//
// OldValues and NewValues are opaque JSON snapshots of the affected row,
// held as raw bytes so a NULL column scans to nil. OldValues is nil for
// INSERT; NewValues is nil for a hard DELETE.
type AuditRecord struct {
	ID        uuid.UUID
	TableName string
	RecordID  uuid.UUID
	Action    AuditAction
	OldValues []byte
	NewValues []byte
	UserID    uuid.UUID
	CreatedAt time.Time
}
