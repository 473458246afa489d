package domain

import (
	"time"

	"github.com/google/uuid"
)

// Activity is a reference-data entry describing the kind of work a service
// log records (e.g. "Ward Round", "Clinic"). Names are unique among live
// activities, case-insensitive.
type Activity struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// IsDeleted returns true if the activity has been soft-deleted.
func (a *Activity) IsDeleted() bool { return a.DeletedAt != nil }

// Outcome is a reference-data entry describing the result recorded on a
// service log. Names are unique among live outcomes, case-insensitive.
type Outcome struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// IsDeleted returns true if the outcome has been soft-deleted.
func (o *Outcome) IsDeleted() bool { return o.DeletedAt != nil }
