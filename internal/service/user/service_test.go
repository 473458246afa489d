package user_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite/testhelper"
	usrrepo "github.com/carelog/carelog-backend/internal/adapter/sqlite/user"
	"github.com/carelog/carelog-backend/internal/auth"
	"github.com/carelog/carelog-backend/internal/domain"
	"github.com/carelog/carelog-backend/internal/service/user"
	"github.com/carelog/carelog-backend/pkg/ctxutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(db *sql.DB) *user.Service {
	tokens := auth.NewJWTManager("test-secret", "carelog-test", time.Hour)
	return user.NewService(testLogger(), usrrepo.New(db), auth.NewHasher(4), tokens)
}

func asAdmin() context.Context {
	ctx := ctxutil.WithUserID(context.Background(), uuid.New())
	return ctxutil.WithUserRole(ctx, domain.RoleAdmin.String())
}

func asClinician(id uuid.UUID) context.Context {
	ctx := ctxutil.WithUserID(context.Background(), id)
	return ctxutil.WithUserRole(ctx, domain.RoleClinician.String())
}

func TestRegister_AdminOnly(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	svc := newService(db)

	input := user.RegisterInput{
		Email:    "new@example.com",
		Name:     "New Clinician",
		Role:     domain.RoleClinician,
		Password: "s3cret-pass",
	}

	if _, err := svc.Register(context.Background(), input); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for anonymous, got %v", err)
	}
	if _, err := svc.Register(asClinician(uuid.New()), input); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden for clinician, got %v", err)
	}

	created, err := svc.Register(asAdmin(), input)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if created.Email != "new@example.com" {
		t.Errorf("unexpected email %q", created.Email)
	}
	if created.PasswordHash == input.Password {
		t.Error("expected password hashed, not stored raw")
	}
}

func TestRegister_NormalizesEmail(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	svc := newService(db)

	created, err := svc.Register(asAdmin(), user.RegisterInput{
		Email:    "  Mixed.Case@Example.COM ",
		Name:     "Normalized",
		Role:     domain.RoleClinician,
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if created.Email != "mixed.case@example.com" {
		t.Errorf("expected normalized email, got %q", created.Email)
	}
}

func TestRegister_ValidatesInput(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	svc := newService(db)

	_, err := svc.Register(asAdmin(), user.RegisterInput{
		Email:    "not-an-email",
		Name:     "",
		Role:     "SUPERVISOR",
		Password: "short",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors) != 4 {
		t.Errorf("expected 4 field errors, got %d: %v", len(verr.Errors), verr.Errors)
	}
}

func TestAuthenticate(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	svc := newService(db)

	created, err := svc.Register(asAdmin(), user.RegisterInput{
		Email:    "login@example.com",
		Name:     "Login User",
		Role:     domain.RoleClinician,
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	result, err := svc.Authenticate(context.Background(), user.LoginInput{
		Email:    "Login@Example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if result.Token == "" {
		t.Error("expected access token issued")
	}
	if result.User.ID != created.ID {
		t.Errorf("expected user %s, got %s", created.ID, result.User.ID)
	}

	got, err := usrrepo.New(db).GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.LastLoginAt == nil {
		t.Error("expected last login stamped")
	}
}

func TestAuthenticate_UniformFailure(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	svc := newService(db)

	if _, err := svc.Register(asAdmin(), user.RegisterInput{
		Email:    "known@example.com",
		Name:     "Known",
		Role:     domain.RoleClinician,
		Password: "correct-horse",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Unknown account and wrong password are indistinguishable.
	_, unknownErr := svc.Authenticate(context.Background(), user.LoginInput{
		Email:    "unknown@example.com",
		Password: "whatever-pass",
	})
	_, wrongErr := svc.Authenticate(context.Background(), user.LoginInput{
		Email:    "known@example.com",
		Password: "wrong-pass",
	})
	if !errors.Is(unknownErr, domain.ErrUnauthorized) || !errors.Is(wrongErr, domain.ErrUnauthorized) {
		t.Errorf("expected uniform ErrUnauthorized, got %v / %v", unknownErr, wrongErr)
	}
}

func TestDeactivate(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	svc := newService(db)

	created, err := svc.Register(asAdmin(), user.RegisterInput{
		Email:    "leaver@example.com",
		Name:     "Leaver",
		Role:     domain.RoleClinician,
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Admins cannot deactivate themselves.
	self := ctxutil.WithUserRole(ctxutil.WithUserID(context.Background(), created.ID), domain.RoleAdmin.String())
	if err := svc.Deactivate(self, created.ID); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected self-deactivation rejected, got %v", err)
	}

	if err := svc.Deactivate(asAdmin(), created.ID); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}

	// A deactivated account cannot log in.
	_, err = svc.Authenticate(context.Background(), user.LoginInput{
		Email:    "leaver@example.com",
		Password: "s3cret-pass",
	})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized after deactivation, got %v", err)
	}
}

func TestUpdateProfile_SelfOrAdmin(t *testing.T) {
	db := testhelper.SetupTestDB(t)
	svc := newService(db)

	created, err := svc.Register(asAdmin(), user.RegisterInput{
		Email:    "profile@example.com",
		Name:     "Old Name",
		Role:     domain.RoleClinician,
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	name := "New Name"
	updated, err := svc.UpdateProfile(asClinician(created.ID), user.UpdateProfileInput{
		UserID: created.ID,
		Name:   &name,
	})
	if err != nil {
		t.Fatalf("self UpdateProfile failed: %v", err)
	}
	if updated.Name != "New Name" {
		t.Errorf("unexpected name %q", updated.Name)
	}

	// A stranger may not touch the profile.
	other := "Hijacked"
	_, err = svc.UpdateProfile(asClinician(uuid.New()), user.UpdateProfileInput{
		UserID: created.ID,
		Name:   &other,
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden for stranger, got %v", err)
	}
}
