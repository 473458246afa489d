// Package servicelog implements the ServiceLog repository: audited CRUD on
// the log row itself plus ownership of the patient_entries child table.
package servicelog

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite"
	"github.com/carelog/carelog-backend/internal/adapter/sqlite/base"
	"github.com/carelog/carelog-backend/internal/domain"
)

// Repo provides service-log persistence backed by SQLite.
type Repo struct {
	*base.Base[domain.ServiceLog]
}

// New creates a new service-log repository.
func New(db *sql.DB) *Repo {
	return &Repo{
		Base: base.New[domain.ServiceLog](db, base.Meta{
			Table: "service_logs",
			Columns: []string{
				"id", "user_id", "client_id", "activity_id", "outcome_id",
				"service_date", "patient_count", "is_draft", "submitted_at",
				"custom_values", "created_at", "updated_at", "deleted_at",
			},
		}),
	}
}

// CreateParams holds the attributes of a new draft log.
type CreateParams struct {
	UserID       uuid.UUID
	ClientID     uuid.UUID
	ActivityID   uuid.UUID
	OutcomeID    *uuid.UUID
	ServiceDate  time.Time
	PatientCount int
	CustomValues json.RawMessage
	Entries      []EntryParams
}

// EntryParams is one appointment-type tally of a new or replaced log.
type EntryParams struct {
	AppointmentType domain.AppointmentType
	Count           int
}

// UpdateParams is the partial change set for Update. Nil fields are
// untouched; the author (user_id) never changes.
type UpdateParams struct {
	ClientID     *uuid.UUID
	ActivityID   *uuid.UUID
	OutcomeID    *uuid.UUID
	ClearOutcome bool
	ServiceDate  *time.Time
	PatientCount *int
	CustomValues json.RawMessage
	Entries      []EntryParams // nil keeps existing entries; empty slice clears them
}

// Create inserts a draft log and its patient entries in one transaction and
// returns the log with entries loaded.
func (r *Repo) Create(ctx context.Context, params CreateParams, actorID uuid.UUID) (*domain.ServiceLog, error) {
	row := base.Row{
		"user_id":       params.UserID,
		"client_id":     params.ClientID,
		"activity_id":   params.ActivityID,
		"outcome_id":    nullableID(params.OutcomeID),
		"service_date":  params.ServiceDate.UTC(),
		"patient_count": params.PatientCount,
		"is_draft":      true,
		"custom_values": nullableJSON(params.CustomValues),
	}

	var created *domain.ServiceLog
	err := r.Tx().RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = r.Base.Create(txCtx, row, actorID)
		if err != nil {
			return err
		}

		if err := r.insertEntries(txCtx, created.ID, params.Entries); err != nil {
			return err
		}

		created.Entries, err = r.GetEntries(txCtx, created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Update applies the partial change set and, when Entries is non-nil,
// replaces the patient entries, all in one transaction.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, params UpdateParams, actorID uuid.UUID) (*domain.ServiceLog, error) {
	row := base.Row{}
	if params.ClientID != nil {
		row["client_id"] = *params.ClientID
	}
	if params.ActivityID != nil {
		row["activity_id"] = *params.ActivityID
	}
	if params.ClearOutcome {
		row["outcome_id"] = nil
	} else if params.OutcomeID != nil {
		row["outcome_id"] = *params.OutcomeID
	}
	if params.ServiceDate != nil {
		row["service_date"] = params.ServiceDate.UTC()
	}
	if params.PatientCount != nil {
		row["patient_count"] = *params.PatientCount
	}
	if params.CustomValues != nil {
		row["custom_values"] = []byte(params.CustomValues)
	}

	var updated *domain.ServiceLog
	err := r.Tx().RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		updated, err = r.Base.Update(txCtx, id, row, actorID)
		if err != nil {
			return err
		}

		if params.Entries != nil {
			if err := r.deleteEntries(txCtx, id); err != nil {
				return err
			}
			if err := r.insertEntries(txCtx, id, params.Entries); err != nil {
				return err
			}
		}

		updated.Entries, err = r.GetEntries(txCtx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Submit moves a draft to the submitted state: is_draft false, submitted_at
// stamped. The caller enforces the author check.
func (r *Repo) Submit(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*domain.ServiceLog, error) {
	return r.Base.Update(ctx, id, base.Row{
		"is_draft":     false,
		"submitted_at": time.Now().UTC(),
	}, actorID)
}

// ConvertToDraft reverts a submitted log: is_draft true, submitted_at
// cleared.
func (r *Repo) ConvertToDraft(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*domain.ServiceLog, error) {
	return r.Base.Update(ctx, id, base.Row{
		"is_draft":     true,
		"submitted_at": nil,
	}, actorID)
}

// GetWithEntries returns the live log with its patient entries loaded.
func (r *Repo) GetWithEntries(ctx context.Context, id uuid.UUID) (*domain.ServiceLog, error) {
	log, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	log.Entries, err = r.GetEntries(ctx, id)
	if err != nil {
		return nil, err
	}

	return log, nil
}

// ListFiltered returns one page of logs matching the filter, newest service
// date first.
func (r *Repo) ListFiltered(ctx context.Context, filter domain.ReportFilter, page, limit int) (*base.Page[domain.ServiceLog], error) {
	return r.List(ctx, base.ListParams{
		Page:     page,
		Limit:    limit,
		OrderBy:  "service_date",
		OrderDir: "DESC",
		Where:    filterPred(filter),
	})
}

// GetEntries returns the patient entries of a log ordered by type.
func (r *Repo) GetEntries(ctx context.Context, logID uuid.UUID) ([]domain.PatientEntry, error) {
	qb := base.Builder().
		Select("id", "service_log_id", "appointment_type", "count", "created_at").
		From("patient_entries").
		Where(squirrel.Eq{"service_log_id": logID}).
		OrderBy("appointment_type ASC")

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, sqlite.MapError(err, "patient_entries", logID)
	}

	entries := []domain.PatientEntry{}
	if err := sqlscan.Select(ctx, r.Querier(ctx), &entries, query, args...); err != nil {
		return nil, sqlite.MapError(err, "patient_entries", logID)
	}

	return entries, nil
}

// insertEntries appends patient entries for a log. Child rows ride on the
// log's own audit trail, so no per-entry audit entries are written.
func (r *Repo) insertEntries(ctx context.Context, logID uuid.UUID, entries []EntryParams) error {
	if len(entries) == 0 {
		return nil
	}

	qb := base.Builder().
		Insert("patient_entries").
		Columns("id", "service_log_id", "appointment_type", "count", "created_at")

	now := time.Now().UTC()
	for _, e := range entries {
		qb = qb.Values(uuid.New(), logID, e.AppointmentType.String(), e.Count, now)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return sqlite.MapError(err, "patient_entries", logID)
	}

	if _, err := r.Querier(ctx).ExecContext(ctx, query, args...); err != nil {
		return sqlite.MapError(err, "patient_entries", logID)
	}

	return nil
}

func (r *Repo) deleteEntries(ctx context.Context, logID uuid.UUID) error {
	query, args, err := base.Builder().
		Delete("patient_entries").
		Where(squirrel.Eq{"service_log_id": logID}).
		ToSql()
	if err != nil {
		return sqlite.MapError(err, "patient_entries", logID)
	}

	if _, err := r.Querier(ctx).ExecContext(ctx, query, args...); err != nil {
		return sqlite.MapError(err, "patient_entries", logID)
	}

	return nil
}

// filterPred translates a ReportFilter into a squirrel conjunction over the
// service_logs columns. Nil filter fields add no predicate.
func filterPred(filter domain.ReportFilter) squirrel.Sqlizer {
	pred := squirrel.And{}
	if filter.UserID != nil {
		pred = append(pred, squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.ClientID != nil {
		pred = append(pred, squirrel.Eq{"client_id": *filter.ClientID})
	}
	if filter.ActivityID != nil {
		pred = append(pred, squirrel.Eq{"activity_id": *filter.ActivityID})
	}
	if filter.IsDraft != nil {
		pred = append(pred, squirrel.Eq{"is_draft": *filter.IsDraft})
	}
	if filter.DateFrom != nil {
		pred = append(pred, squirrel.GtOrEq{"service_date": filter.DateFrom.UTC()})
	}
	if filter.DateTo != nil {
		pred = append(pred, squirrel.LtOrEq{"service_date": filter.DateTo.UTC()})
	}
	if len(pred) == 0 {
		return nil
	}
	return pred
}

// nullableID converts an optional uuid to a driver value (nil -> NULL).
func nullableID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

// nullableJSON converts an optional blob to a driver value (nil -> NULL).
func nullableJSON(raw json.RawMessage) any {
	if raw == nil {
		return nil
	}
	return []byte(raw)
}
