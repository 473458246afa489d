package servicelog

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	slrepo "github.com/carelog/carelog-backend/internal/adapter/sqlite/servicelog"
	"github.com/carelog/carelog-backend/internal/domain"
)

// EntryInput is one appointment-type tally of a draft.
type EntryInput struct {
	AppointmentType domain.AppointmentType
	Count           int
}

// CreateDraftInput holds the parameters for creating a draft log. The
// authenticated user becomes the author.
type CreateDraftInput struct {
	ClientID     uuid.UUID
	ActivityID   uuid.UUID
	OutcomeID    *uuid.UUID
	ServiceDate  time.Time
	PatientCount int
	CustomValues json.RawMessage
	Entries      []EntryInput
}

// Validate checks all fields and collects all errors.
func (i CreateDraftInput) Validate() error {
	var errs []domain.FieldError

	if i.ClientID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "client_id", Message: "required"})
	}
	if i.ActivityID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "activity_id", Message: "required"})
	}
	if i.OutcomeID != nil && *i.OutcomeID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "outcome_id", Message: "must be a valid id or absent"})
	}
	if i.ServiceDate.IsZero() {
		errs = append(errs, domain.FieldError{Field: "service_date", Message: "required"})
	}
	if i.PatientCount < 0 {
		errs = append(errs, domain.FieldError{Field: "patient_count", Message: "must not be negative"})
	}
	errs = append(errs, validateEntries(i.Entries)...)
	errs = append(errs, validateCustomValues(i.CustomValues)...)

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// UpdateLogInput holds the partial change set for editing a log. Nil fields
// are untouched; a non-nil Entries slice replaces all patient entries.
type UpdateLogInput struct {
	LogID        uuid.UUID
	ClientID     *uuid.UUID
	ActivityID   *uuid.UUID
	OutcomeID    *uuid.UUID
	ClearOutcome bool
	ServiceDate  *time.Time
	PatientCount *int
	CustomValues json.RawMessage
	Entries      []EntryInput
}

// Validate checks all fields and collects all errors.
func (i UpdateLogInput) Validate() error {
	var errs []domain.FieldError

	if i.LogID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "log_id", Message: "required"})
	}
	if i.ClientID != nil && *i.ClientID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "client_id", Message: "must be a valid id"})
	}
	if i.ActivityID != nil && *i.ActivityID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "activity_id", Message: "must be a valid id"})
	}
	if i.OutcomeID != nil && *i.OutcomeID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "outcome_id", Message: "must be a valid id"})
	}
	if i.OutcomeID != nil && i.ClearOutcome {
		errs = append(errs, domain.FieldError{Field: "outcome_id", Message: "cannot both set and clear"})
	}
	if i.PatientCount != nil && *i.PatientCount < 0 {
		errs = append(errs, domain.FieldError{Field: "patient_count", Message: "must not be negative"})
	}
	if i.Entries != nil {
		errs = append(errs, validateEntries(i.Entries)...)
	}
	errs = append(errs, validateCustomValues(i.CustomValues)...)

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ListLogsInput narrows and pages a log listing.
type ListLogsInput struct {
	Filter domain.ReportFilter
	Page   int
	Limit  int
}

func validateEntries(entries []EntryInput) []domain.FieldError {
	var errs []domain.FieldError
	seen := make(map[domain.AppointmentType]bool, len(entries))
	for _, e := range entries {
		if !e.AppointmentType.IsValid() {
			errs = append(errs, domain.FieldError{Field: "entries", Message: "appointment type must be one of NEW, FOLLOWUP, DNA"})
			break
		}
		if e.Count < 0 {
			errs = append(errs, domain.FieldError{Field: "entries", Message: "count must not be negative"})
			break
		}
		if seen[e.AppointmentType] {
			errs = append(errs, domain.FieldError{Field: "entries", Message: "duplicate appointment type"})
			break
		}
		seen[e.AppointmentType] = true
	}
	return errs
}

func validateCustomValues(raw json.RawMessage) []domain.FieldError {
	if raw == nil {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return []domain.FieldError{{Field: "custom_values", Message: "must be a JSON object"}}
	}
	return nil
}

func toEntryParams(entries []EntryInput) []slrepo.EntryParams {
	if entries == nil {
		return nil
	}
	params := make([]slrepo.EntryParams, len(entries))
	for i, e := range entries {
		params[i] = slrepo.EntryParams{AppointmentType: e.AppointmentType, Count: e.Count}
	}
	return params
}
