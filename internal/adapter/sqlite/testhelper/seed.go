package testhelper

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedUser inserts a clinician user directly and returns the filled domain.User.
func SeedUser(t *testing.T, db *sql.DB) domain.User {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.New(),
		Email:        "testuser-" + suffix + "@example.com",
		Name:         "Test User " + suffix,
		Role:         domain.RoleClinician,
		PasswordHash: "$2a$10$seeded-hash-placeholder",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, role, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Name, string(user.Role), user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedUser: %v", err)
	}

	return user
}

// SeedClient inserts a client row and returns the filled domain.Client.
func SeedClient(t *testing.T, db *sql.DB, name string) domain.Client {
	t.Helper()
	ctx := context.Background()

	if name == "" {
		name = "Client " + uniqueSuffix()
	}

	now := time.Now().UTC()
	client := domain.Client{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO clients (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		client.ID, client.Name, client.CreatedAt, client.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedClient: %v", err)
	}

	return client
}

// SeedActivity inserts an activity row and returns the filled domain.Activity.
func SeedActivity(t *testing.T, db *sql.DB, name string) domain.Activity {
	t.Helper()
	ctx := context.Background()

	if name == "" {
		name = "Activity " + uniqueSuffix()
	}

	now := time.Now().UTC()
	activity := domain.Activity{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO activities (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		activity.ID, activity.Name, activity.CreatedAt, activity.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedActivity: %v", err)
	}

	return activity
}

// SeedOutcome inserts an outcome row and returns the filled domain.Outcome.
func SeedOutcome(t *testing.T, db *sql.DB, name string) domain.Outcome {
	t.Helper()
	ctx := context.Background()

	if name == "" {
		name = "Outcome " + uniqueSuffix()
	}

	now := time.Now().UTC()
	outcome := domain.Outcome{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO outcomes (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		outcome.ID, outcome.Name, outcome.CreatedAt, outcome.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedOutcome: %v", err)
	}

	return outcome
}

// SeedServiceLog inserts a draft service log for the given author and refs.
func SeedServiceLog(t *testing.T, db *sql.DB, userID, clientID, activityID uuid.UUID) domain.ServiceLog {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC()
	log := domain.ServiceLog{
		ID:           uuid.New(),
		UserID:       userID,
		ClientID:     clientID,
		ActivityID:   activityID,
		ServiceDate:  now.Truncate(24 * time.Hour),
		PatientCount: 3,
		IsDraft:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO service_logs (id, user_id, client_id, activity_id, service_date, patient_count, is_draft, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID, log.UserID, log.ClientID, log.ActivityID, log.ServiceDate, log.PatientCount, log.IsDraft, log.CreatedAt, log.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedServiceLog: %v", err)
	}

	return log
}

// CountRows returns the physical row count of a table, ignoring soft-delete
// visibility. Tests use it to prove soft-deleted rows remain present.
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var n int
	if err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("testhelper: CountRows %s: %v", table, err)
	}
	return n
}
