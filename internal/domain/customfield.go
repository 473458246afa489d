package domain

import (
	"time"

	"github.com/google/uuid"
)

// CustomField is an admin-defined extra input on the service log form.
// A nil ClientID makes the field global; otherwise it applies to one client
// only. Label uniqueness is evaluated within that scope: global labels
// collide only with other global labels, client-scoped labels only within
// the same client.
type CustomField struct {
	ID         uuid.UUID
	Label      string
	Type       FieldType
	ClientID   *uuid.UUID
	OrderIndex int
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time

	Choices []FieldChoice `db:"-"`
}

// IsDeleted returns true if the field has been soft-deleted.
func (f *CustomField) IsDeleted() bool { return f.DeletedAt != nil }

// IsGlobal returns true when the field is not scoped to a single client.
func (f *CustomField) IsGlobal() bool { return f.ClientID == nil }

// FieldChoice is one selectable option of a DROPDOWN custom field.
// Text is unique within the parent field, case-insensitive. Choices are
// owned by their field and are hard-deleted together with it.
type FieldChoice struct {
	ID         uuid.UUID
	FieldID    uuid.UUID
	Text       string
	OrderIndex int
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// IsDeleted returns true if the choice has been soft-deleted.
func (c *FieldChoice) IsDeleted() bool { return c.DeletedAt != nil }

// OrderUpdate is one {id, order} pair of a batch reorder. The supplied
// values are written verbatim; no renumbering or gap filling is applied.
type OrderUpdate struct {
	ID         uuid.UUID
	OrderIndex int
}
