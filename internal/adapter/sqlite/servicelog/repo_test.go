package servicelog_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite/servicelog"
	"github.com/carelog/carelog-backend/internal/adapter/sqlite/testhelper"
	"github.com/carelog/carelog-backend/internal/domain"
)

type fixture struct {
	user     domain.User
	clinic   domain.Client
	activity domain.Activity
	outcome  domain.Outcome
}

func setup(t *testing.T, db *sql.DB) fixture {
	t.Helper()
	return fixture{
		user:     testhelper.SeedUser(t, db),
		clinic:   testhelper.SeedClient(t, db, ""),
		activity: testhelper.SeedActivity(t, db, ""),
		outcome:  testhelper.SeedOutcome(t, db, ""),
	}
}

func TestCreate_WithEntries(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	repo := servicelog.New(db)
	ctx := context.Background()
	fx := setup(t, db)

	created, err := repo.Create(ctx, servicelog.CreateParams{
		UserID:       fx.user.ID,
		ClientID:     fx.clinic.ID,
		ActivityID:   fx.activity.ID,
		OutcomeID:    &fx.outcome.ID,
		ServiceDate:  time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		PatientCount: 7,
		CustomValues: json.RawMessage(`{"ward":"North"}`),
		Entries: []servicelog.EntryParams{
			{AppointmentType: domain.AppointmentNew, Count: 4},
			{AppointmentType: domain.AppointmentFollowup, Count: 3},
		},
	}, fx.user.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !created.IsDraft {
		t.Error("expected new log to be a draft")
	}
	if created.OutcomeID == nil || *created.OutcomeID != fx.outcome.ID {
		t.Error("expected outcome preserved")
	}
	if len(created.Entries) != 2 {
		t.Fatalf("expected 2 entries loaded, got %d", len(created.Entries))
	}
	// Entries come back ordered by appointment type.
	if created.Entries[0].AppointmentType != domain.AppointmentFollowup {
		t.Errorf("unexpected entry order: %v", created.Entries[0].AppointmentType)
	}
	if string(created.CustomValues) != `{"ward":"North"}` {
		t.Errorf("expected custom values round-tripped, got %q", created.CustomValues)
	}

	if n := testhelper.CountRows(t, db, "patient_entries"); n != 2 {
		t.Errorf("expected 2 entry rows, got %d", n)
	}
}

func TestCreate_WithoutCustomValues(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	repo := servicelog.New(db)
	ctx := context.Background()
	fx := setup(t, db)

	// No custom values stores NULL; both the create re-read and later
	// fetches must scan it back as nil.
	created, err := repo.Create(ctx, servicelog.CreateParams{
		UserID:      fx.user.ID,
		ClientID:    fx.clinic.ID,
		ActivityID:  fx.activity.ID,
		ServiceDate: time.Now().UTC(),
	}, fx.user.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.CustomValues != nil {
		t.Errorf("expected nil custom values, got %q", created.CustomValues)
	}

	fetched, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.CustomValues != nil {
		t.Errorf("expected nil custom values on fetch, got %q", fetched.CustomValues)
	}
}

func TestUpdate_ReplacesEntries(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	repo := servicelog.New(db)
	ctx := context.Background()
	fx := setup(t, db)

	created, err := repo.Create(ctx, servicelog.CreateParams{
		UserID:       fx.user.ID,
		ClientID:     fx.clinic.ID,
		ActivityID:   fx.activity.ID,
		ServiceDate:  time.Now().UTC(),
		PatientCount: 2,
		Entries: []servicelog.EntryParams{
			{AppointmentType: domain.AppointmentNew, Count: 2},
		},
	}, fx.user.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Nil entries keep the existing rows.
	count := 5
	updated, err := repo.Update(ctx, created.ID, servicelog.UpdateParams{PatientCount: &count}, fx.user.ID)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.PatientCount != 5 {
		t.Errorf("expected patient count 5, got %d", updated.PatientCount)
	}
	if len(updated.Entries) != 1 {
		t.Errorf("expected entries untouched, got %d", len(updated.Entries))
	}

	// A supplied slice replaces the set wholesale.
	updated, err = repo.Update(ctx, created.ID, servicelog.UpdateParams{
		Entries: []servicelog.EntryParams{
			{AppointmentType: domain.AppointmentDNA, Count: 1},
			{AppointmentType: domain.AppointmentFollowup, Count: 4},
		},
	}, fx.user.ID)
	if err != nil {
		t.Fatalf("Update with entries failed: %v", err)
	}
	if len(updated.Entries) != 2 {
		t.Fatalf("expected 2 replacement entries, got %d", len(updated.Entries))
	}
	if n := testhelper.CountRows(t, db, "patient_entries"); n != 2 {
		t.Errorf("expected old entries removed, got %d rows", n)
	}

	// An empty slice clears the set.
	updated, err = repo.Update(ctx, created.ID, servicelog.UpdateParams{
		Entries: []servicelog.EntryParams{},
	}, fx.user.ID)
	if err != nil {
		t.Fatalf("Update clearing entries failed: %v", err)
	}
	if len(updated.Entries) != 0 {
		t.Errorf("expected entries cleared, got %d", len(updated.Entries))
	}
}

func TestUpdate_ClearOutcome(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	repo := servicelog.New(db)
	ctx := context.Background()
	fx := setup(t, db)

	created, err := repo.Create(ctx, servicelog.CreateParams{
		UserID:      fx.user.ID,
		ClientID:    fx.clinic.ID,
		ActivityID:  fx.activity.ID,
		OutcomeID:   &fx.outcome.ID,
		ServiceDate: time.Now().UTC(),
	}, fx.user.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := repo.Update(ctx, created.ID, servicelog.UpdateParams{ClearOutcome: true}, fx.user.ID)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.OutcomeID != nil {
		t.Errorf("expected outcome cleared, got %v", updated.OutcomeID)
	}
}

func TestSubmitAndConvertToDraft(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	repo := servicelog.New(db)
	ctx := context.Background()
	fx := setup(t, db)
	log := testhelper.SeedServiceLog(t, db, fx.user.ID, fx.clinic.ID, fx.activity.ID)

	submitted, err := repo.Submit(ctx, log.ID, fx.user.ID)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if submitted.IsDraft {
		t.Error("expected draft flag cleared")
	}
	if submitted.SubmittedAt == nil {
		t.Error("expected submitted_at stamped")
	}

	reverted, err := repo.ConvertToDraft(ctx, log.ID, fx.user.ID)
	if err != nil {
		t.Fatalf("ConvertToDraft failed: %v", err)
	}
	if !reverted.IsDraft {
		t.Error("expected draft flag restored")
	}
	if reverted.SubmittedAt != nil {
		t.Errorf("expected submitted_at cleared, got %v", reverted.SubmittedAt)
	}
}

func TestListFiltered(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	repo := servicelog.New(db)
	ctx := context.Background()
	fx := setup(t, db)
	other := testhelper.SeedUser(t, db)

	mine := testhelper.SeedServiceLog(t, db, fx.user.ID, fx.clinic.ID, fx.activity.ID)
	testhelper.SeedServiceLog(t, db, other.ID, fx.clinic.ID, fx.activity.ID)

	page, err := repo.ListFiltered(ctx, domain.ReportFilter{UserID: &fx.user.ID}, 1, 10)
	if err != nil {
		t.Fatalf("ListFiltered failed: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("expected 1 log for the author, got %d", page.Total)
	}
	if page.Items[0].ID != mine.ID {
		t.Errorf("expected own log, got %s", page.Items[0].ID)
	}

	draft := false
	page, err = repo.ListFiltered(ctx, domain.ReportFilter{IsDraft: &draft}, 1, 10)
	if err != nil {
		t.Fatalf("ListFiltered by state failed: %v", err)
	}
	if page.Total != 0 {
		t.Errorf("expected no submitted logs, got %d", page.Total)
	}
}
