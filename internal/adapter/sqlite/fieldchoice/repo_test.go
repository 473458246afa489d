package fieldchoice_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite/customfield"
	"github.com/carelog/carelog-backend/internal/adapter/sqlite/fieldchoice"
	"github.com/carelog/carelog-backend/internal/adapter/sqlite/testhelper"
	"github.com/carelog/carelog-backend/internal/domain"
)

func seedField(t *testing.T, db *sql.DB) domain.CustomField {
	t.Helper()
	field, err := customfield.New(db).Create(context.Background(), customfield.CreateParams{
		Label: "Severity", Type: domain.FieldTypeDropdown,
	}, uuid.New())
	if err != nil {
		t.Fatalf("seed field: %v", err)
	}
	return *field
}

func TestCreate_PerFieldTextUniqueness(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	repo := fieldchoice.New(db)
	ctx := context.Background()
	actor := uuid.New()
	field := seedField(t, db)

	if _, err := repo.Create(ctx, fieldchoice.CreateParams{FieldID: field.ID, Text: "Mild"}, actor); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err := repo.Create(ctx, fieldchoice.CreateParams{FieldID: field.ID, Text: "MILD"}, actor)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists for duplicate text, got %v", err)
	}

	// The same text under a different field is fine.
	other, err := customfield.New(db).Create(ctx, customfield.CreateParams{
		Label: "Priority", Type: domain.FieldTypeDropdown,
	}, actor)
	if err != nil {
		t.Fatalf("seed second field: %v", err)
	}
	if _, err := repo.Create(ctx, fieldchoice.CreateParams{FieldID: other.ID, Text: "Mild"}, actor); err != nil {
		t.Errorf("expected text reusable across fields, got %v", err)
	}
}

func TestCreate_OrderIndexAppendsWithinField(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	repo := fieldchoice.New(db)
	ctx := context.Background()
	actor := uuid.New()
	field := seedField(t, db)

	for i, text := range []string{"Mild", "Moderate", "Severe"} {
		choice, err := repo.Create(ctx, fieldchoice.CreateParams{FieldID: field.ID, Text: text}, actor)
		if err != nil {
			t.Fatalf("Create %q failed: %v", text, err)
		}
		if choice.OrderIndex != i+1 {
			t.Errorf("%q: expected index %d, got %d", text, i+1, choice.OrderIndex)
		}
	}

	choices, err := repo.ListByField(ctx, field.ID)
	if err != nil {
		t.Fatalf("ListByField failed: %v", err)
	}
	if len(choices) != 3 {
		t.Fatalf("expected 3 choices, got %d", len(choices))
	}
	if choices[0].Text != "Mild" || choices[2].Text != "Severe" {
		t.Errorf("unexpected ordering: %q .. %q", choices[0].Text, choices[2].Text)
	}
}

func TestRename_ExcludesSelfFromUniqueness(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	repo := fieldchoice.New(db)
	ctx := context.Background()
	actor := uuid.New()
	field := seedField(t, db)

	mild, err := repo.Create(ctx, fieldchoice.CreateParams{FieldID: field.ID, Text: "Mild"}, actor)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := repo.Create(ctx, fieldchoice.CreateParams{FieldID: field.ID, Text: "Severe"}, actor); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := repo.Rename(ctx, mild.ID, "severe", actor); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists on rename collision, got %v", err)
	}

	got, err := repo.Rename(ctx, mild.ID, "Mild", actor)
	if err != nil {
		t.Fatalf("self-rename failed: %v", err)
	}
	if got.Text != "Mild" {
		t.Errorf("unexpected text after self-rename: %q", got.Text)
	}
}

func TestHardDeleteByField_CascadeWithAudit(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	repo := fieldchoice.New(db)
	ctx := context.Background()
	actor := uuid.New()
	field := seedField(t, db)

	for _, text := range []string{"Mild", "Moderate"} {
		if _, err := repo.Create(ctx, fieldchoice.CreateParams{FieldID: field.ID, Text: text}, actor); err != nil {
			t.Fatalf("Create %q failed: %v", text, err)
		}
	}

	deleted, err := repo.HardDeleteByField(ctx, field.ID, actor)
	if err != nil {
		t.Fatalf("HardDeleteByField failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 removed choices, got %d", deleted)
	}
	if n := testhelper.CountRows(t, db, "field_choices"); n != 0 {
		t.Errorf("expected choices physically gone, got %d rows", n)
	}

	var audits int
	err = db.QueryRow(
		`SELECT COUNT(*) FROM audit_log WHERE table_name = 'field_choices' AND action = 'DELETE'`,
	).Scan(&audits)
	if err != nil {
		t.Fatalf("count audits: %v", err)
	}
	if audits != 2 {
		t.Errorf("expected one DELETE audit per choice, got %d", audits)
	}
}
