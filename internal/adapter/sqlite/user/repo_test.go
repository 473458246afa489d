package user_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite/testhelper"
	"github.com/carelog/carelog-backend/internal/adapter/sqlite/user"
	"github.com/carelog/carelog-backend/internal/domain"
)

func TestCreate_RejectsDuplicateEmail(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	repo := user.New(db)
	ctx := context.Background()
	actor := uuid.New()

	params := user.CreateParams{
		Email:        "nurse@example.com",
		Name:         "First Nurse",
		Role:         domain.RoleClinician,
		PasswordHash: "$2a$10$hash",
	}
	if _, err := repo.Create(ctx, params, actor); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	params.Email = "NURSE@example.com"
	_, err := repo.Create(ctx, params, actor)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists for duplicate email, got %v", err)
	}
}

func TestGetByEmail(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	repo := user.New(db)
	ctx := context.Background()
	seeded := testhelper.SeedUser(t, db)

	got, err := repo.GetByEmail(ctx, seeded.Email)
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != seeded.ID {
		t.Errorf("expected user %s, got %s", seeded.ID, got.ID)
	}

	if _, err := repo.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown email, got %v", err)
	}

	// Deactivated accounts are invisible to lookup.
	if err := repo.SoftDelete(ctx, seeded.ID, uuid.New()); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}
	if _, err := repo.GetByEmail(ctx, seeded.Email); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after deactivation, got %v", err)
	}
}

func TestUpdate_EmailUniquenessExcludesSelf(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	repo := user.New(db)
	ctx := context.Background()
	actor := uuid.New()

	a := testhelper.SeedUser(t, db)
	b := testhelper.SeedUser(t, db)

	if _, err := repo.Update(ctx, a.ID, user.UpdateParams{Email: &b.Email}, actor); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists on email collision, got %v", err)
	}

	got, err := repo.Update(ctx, a.ID, user.UpdateParams{Email: &a.Email}, actor)
	if err != nil {
		t.Fatalf("self-email update failed: %v", err)
	}
	if got.Email != a.Email {
		t.Errorf("unexpected email: %q", got.Email)
	}
}

func TestTouchLastLogin(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	repo := user.New(db)
	ctx := context.Background()
	seeded := testhelper.SeedUser(t, db)

	if seeded.LastLoginAt != nil {
		t.Fatal("expected fresh user without last login")
	}

	if err := repo.TouchLastLogin(ctx, seeded.ID); err != nil {
		t.Fatalf("TouchLastLogin failed: %v", err)
	}

	got, err := repo.GetByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.LastLoginAt == nil {
		t.Error("expected last_login_at stamped")
	}

	// No audit entry: a login is not an entity mutation.
	var audits int
	err = db.QueryRow(`SELECT COUNT(*) FROM audit_log WHERE record_id = ?`, seeded.ID).Scan(&audits)
	if err != nil {
		t.Fatalf("count audits: %v", err)
	}
	if audits != 0 {
		t.Errorf("expected no audit rows for login touch, got %d", audits)
	}

	if err := repo.TouchLastLogin(ctx, uuid.New()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown user, got %v", err)
	}
}
