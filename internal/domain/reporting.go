package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReportRow is a denormalized projection of one live service log joined with
// client and activity names and pre-aggregated patient-entry counts. Rows are
// rebuilt wholesale on refresh and may be stale relative to the source
// tables; callers needing strong consistency must bypass the projection.
type ReportRow struct {
	ServiceLogID  uuid.UUID
	UserID        uuid.UUID
	ClientID      uuid.UUID
	ClientName    string
	ActivityID    uuid.UUID
	ActivityName  string
	ServiceDate   time.Time
	IsDraft       bool
	PatientCount  int
	NewCount      int
	FollowupCount int
	DNACount      int
	TotalCount    int
}

// ReportFilter narrows a reporting query. Nil fields are ignored.
type ReportFilter struct {
	UserID     *uuid.UUID
	ClientID   *uuid.UUID
	ActivityID *uuid.UUID
	IsDraft    *bool
	DateFrom   *time.Time
	DateTo     *time.Time
}

// ReportSummary is an aggregate over a set of report rows.
type ReportSummary struct {
	Logs          int
	Patients      int
	NewCount      int
	FollowupCount int
	DNACount      int
}
