package domain

import (
	"time"

	"github.com/google/uuid"
)

// ServiceLog records a clinician's activity for a client on a given date.
// A log cycles between draft and submitted: SubmittedAt is set exactly when
// the draft is submitted and cleared when it is reverted. Only the authoring
// user may submit or revert their own log.
type ServiceLog struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	ClientID     uuid.UUID
	ActivityID   uuid.UUID
	OutcomeID    *uuid.UUID
	ServiceDate  time.Time
	PatientCount int
	IsDraft      bool
	SubmittedAt  *time.Time
	// CustomValues holds the raw custom-field answers as an opaque JSON blob,
	// kept as raw bytes so a NULL column scans to nil. It is deserialized
	// only where a consumer needs specific fields.
	CustomValues []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time

	Entries []PatientEntry `db:"-"`
}

// IsDeleted returns true if the log has been soft-deleted.
func (s *ServiceLog) IsDeleted() bool { return s.DeletedAt != nil }

// IsSubmitted returns true once the log has left the draft state.
func (s *ServiceLog) IsSubmitted() bool { return !s.IsDraft }

// PatientEntry is one appointment-type tally attached to a service log.
type PatientEntry struct {
	ID              uuid.UUID
	ServiceLogID    uuid.UUID
	AppointmentType AppointmentType
	Count           int
	CreatedAt       time.Time
}
