package servicelog_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite"
	slrepo "github.com/carelog/carelog-backend/internal/adapter/sqlite/servicelog"
	"github.com/carelog/carelog-backend/internal/adapter/sqlite/testhelper"
	"github.com/carelog/carelog-backend/internal/domain"
	"github.com/carelog/carelog-backend/internal/service/servicelog"
	"github.com/carelog/carelog-backend/pkg/ctxutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(db *sql.DB) *servicelog.Service {
	return servicelog.NewService(testLogger(), slrepo.New(db), sqlite.NewTxManager(db), nil)
}

func asUser(u domain.User) context.Context {
	ctx := ctxutil.WithUserID(context.Background(), u.ID)
	return ctxutil.WithUserRole(ctx, u.Role.String())
}

func asAdmin(id uuid.UUID) context.Context {
	ctx := ctxutil.WithUserID(context.Background(), id)
	return ctxutil.WithUserRole(ctx, domain.RoleAdmin.String())
}

type refs struct {
	clinic   domain.Client
	activity domain.Activity
}

func seedRefs(t *testing.T, db *sql.DB) refs {
	t.Helper()
	return refs{
		clinic:   testhelper.SeedClient(t, db, ""),
		activity: testhelper.SeedActivity(t, db, ""),
	}
}

func draftInput(r refs) servicelog.CreateDraftInput {
	return servicelog.CreateDraftInput{
		ClientID:     r.clinic.ID,
		ActivityID:   r.activity.ID,
		ServiceDate:  time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC),
		PatientCount: 3,
		Entries: []servicelog.EntryInput{
			{AppointmentType: domain.AppointmentNew, Count: 3},
		},
	}
}

func TestCreateDraft(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	svc := newService(db)
	author := testhelper.SeedUser(t, db)
	r := seedRefs(t, db)

	created, err := svc.CreateDraft(asUser(author), draftInput(r))
	if err != nil {
		t.Fatalf("CreateDraft failed: %v", err)
	}
	if created.UserID != author.ID {
		t.Errorf("expected caller as author, got %s", created.UserID)
	}
	if !created.IsDraft {
		t.Error("expected a draft")
	}
	if len(created.Entries) != 1 {
		t.Errorf("expected 1 entry, got %d", len(created.Entries))
	}
}

func TestCreateDraft_RequiresAuth(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	svc := newService(db)
	r := seedRefs(t, db)

	_, err := svc.CreateDraft(context.Background(), draftInput(r))
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestCreateDraft_CollectsValidationErrors(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	svc := newService(db)
	author := testhelper.SeedUser(t, db)

	_, err := svc.CreateDraft(asUser(author), servicelog.CreateDraftInput{
		PatientCount: -1,
		Entries: []servicelog.EntryInput{
			{AppointmentType: "WALKIN", Count: 1},
		},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors) < 4 {
		t.Errorf("expected all field errors collected, got %d: %v", len(verr.Errors), verr.Errors)
	}
}

func TestSubmitAndRevertCycle(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	svc := newService(db)
	author := testhelper.SeedUser(t, db)
	r := seedRefs(t, db)
	ctx := asUser(author)

	created, err := svc.CreateDraft(ctx, draftInput(r))
	if err != nil {
		t.Fatalf("CreateDraft failed: %v", err)
	}

	submitted, err := svc.SubmitDraft(ctx, created.ID)
	if err != nil {
		t.Fatalf("SubmitDraft failed: %v", err)
	}
	if submitted.IsDraft || submitted.SubmittedAt == nil {
		t.Error("expected submitted state")
	}

	// Submitting twice conflicts.
	if _, err := svc.SubmitDraft(ctx, created.ID); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict on double submit, got %v", err)
	}

	reverted, err := svc.ConvertToDraft(ctx, created.ID)
	if err != nil {
		t.Fatalf("ConvertToDraft failed: %v", err)
	}
	if !reverted.IsDraft || reverted.SubmittedAt != nil {
		t.Error("expected draft state restored")
	}

	// Reverting a draft conflicts.
	if _, err := svc.ConvertToDraft(ctx, created.ID); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict on double revert, got %v", err)
	}

	// The cycle may repeat.
	if _, err := svc.SubmitDraft(ctx, created.ID); err != nil {
		t.Errorf("expected resubmit to succeed, got %v", err)
	}
}

func TestSubmitDraft_AuthorOnly(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	svc := newService(db)
	author := testhelper.SeedUser(t, db)
	other := testhelper.SeedUser(t, db)
	r := seedRefs(t, db)

	created, err := svc.CreateDraft(asUser(author), draftInput(r))
	if err != nil {
		t.Fatalf("CreateDraft failed: %v", err)
	}

	if _, err := svc.SubmitDraft(asUser(other), created.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-author, got %v", err)
	}

	// Even an admin cannot submit someone else's draft.
	if _, err := svc.SubmitDraft(asAdmin(other.ID), created.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden for admin non-author, got %v", err)
	}
}

func TestUpdateLog_AuthorOrAdmin(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	svc := newService(db)
	author := testhelper.SeedUser(t, db)
	other := testhelper.SeedUser(t, db)
	r := seedRefs(t, db)

	created, err := svc.CreateDraft(asUser(author), draftInput(r))
	if err != nil {
		t.Fatalf("CreateDraft failed: %v", err)
	}

	count := 9
	input := servicelog.UpdateLogInput{LogID: created.ID, PatientCount: &count}

	if _, err := svc.UpdateLog(asUser(other), input); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden for stranger, got %v", err)
	}

	updated, err := svc.UpdateLog(asAdmin(other.ID), input)
	if err != nil {
		t.Fatalf("admin UpdateLog failed: %v", err)
	}
	if updated.PatientCount != 9 {
		t.Errorf("expected patient count 9, got %d", updated.PatientCount)
	}
}

func TestDeleteLog(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	svc := newService(db)
	author := testhelper.SeedUser(t, db)
	r := seedRefs(t, db)
	ctx := asUser(author)

	created, err := svc.CreateDraft(ctx, draftInput(r))
	if err != nil {
		t.Fatalf("CreateDraft failed: %v", err)
	}

	if err := svc.DeleteLog(ctx, created.ID); err != nil {
		t.Fatalf("DeleteLog failed: %v", err)
	}
	if _, err := svc.GetLog(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListLogs_NonAdminSeesOnlyOwn(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	svc := newService(db)
	alice := testhelper.SeedUser(t, db)
	bob := testhelper.SeedUser(t, db)
	r := seedRefs(t, db)

	if _, err := svc.CreateDraft(asUser(alice), draftInput(r)); err != nil {
		t.Fatalf("CreateDraft failed: %v", err)
	}
	if _, err := svc.CreateDraft(asUser(bob), draftInput(r)); err != nil {
		t.Fatalf("CreateDraft failed: %v", err)
	}

	// A clinician's filter is pinned to their own logs even when they ask
	// for someone else's.
	page, err := svc.ListLogs(asUser(alice), servicelog.ListLogsInput{
		Filter: domain.ReportFilter{UserID: &bob.ID},
	})
	if err != nil {
		t.Fatalf("ListLogs failed: %v", err)
	}
	if page.Total != 1 || page.Items[0].UserID != alice.ID {
		t.Errorf("expected only alice's logs, got total=%d", page.Total)
	}

	admin, err := svc.ListLogs(asAdmin(uuid.New()), servicelog.ListLogsInput{})
	if err != nil {
		t.Fatalf("admin ListLogs failed: %v", err)
	}
	if admin.Total != 2 {
		t.Errorf("expected admin to see all logs, got %d", admin.Total)
	}
}

func TestBulkCreateDrafts_AllOrNothing(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	svc := newService(db)
	author := testhelper.SeedUser(t, db)
	r := seedRefs(t, db)

	bad := draftInput(r)
	bad.ClientID = uuid.New() // dangling reference

	_, err := svc.BulkCreateDrafts(asUser(author), []servicelog.CreateDraftInput{
		draftInput(r),
		bad,
	})
	if err == nil {
		t.Fatal("expected bulk create to fail")
	}

	if n := testhelper.CountRows(t, db, "service_logs"); n != 0 {
		t.Errorf("expected no logs after failed batch, got %d", n)
	}
}

type countingRefresher struct {
	calls int
}

func (c *countingRefresher) Refresh(context.Context) (int, error) {
	c.calls++
	return 0, nil
}

func TestStateChangesRefreshProjection(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	refresher := &countingRefresher{}
	svc := servicelog.NewService(testLogger(), slrepo.New(db), sqlite.NewTxManager(db), refresher)
	author := testhelper.SeedUser(t, db)
	r := seedRefs(t, db)
	ctx := asUser(author)

	created, err := svc.CreateDraft(ctx, draftInput(r))
	if err != nil {
		t.Fatalf("CreateDraft failed: %v", err)
	}
	if _, err := svc.SubmitDraft(ctx, created.ID); err != nil {
		t.Fatalf("SubmitDraft failed: %v", err)
	}
	if _, err := svc.ConvertToDraft(ctx, created.ID); err != nil {
		t.Fatalf("ConvertToDraft failed: %v", err)
	}

	if refresher.calls != 2 {
		t.Errorf("expected one refresh per state change, got %d", refresher.calls)
	}
}
