// Package user implements the User repository on the generic base.
package user

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite/base"
	"github.com/carelog/carelog-backend/internal/domain"
)

// Repo provides user persistence backed by SQLite.
type Repo struct {
	*base.Base[domain.User]
}

// New creates a new user repository.
func New(db *sql.DB) *Repo {
	return &Repo{
		Base: base.New[domain.User](db, base.Meta{
			Table: "users",
			Columns: []string{
				"id", "email", "name", "role", "password_hash",
				"last_login_at", "created_at", "updated_at", "deleted_at",
			},
		}),
	}
}

// CreateParams holds the attributes of a new account.
type CreateParams struct {
	Email        string
	Name         string
	Role         domain.Role
	PasswordHash string
}

// UpdateParams is the partial change set for Update. Nil fields are untouched.
type UpdateParams struct {
	Email        *string
	Name         *string
	Role         *domain.Role
	PasswordHash *string
}

// Create inserts a new user. Returns domain.ErrAlreadyExists when a live
// account already uses the email (case-insensitive).
func (r *Repo) Create(ctx context.Context, params CreateParams, actorID uuid.UUID) (*domain.User, error) {
	taken, err := r.EmailExists(ctx, params.Email, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("user email %q: %w", params.Email, domain.ErrAlreadyExists)
	}

	return r.Base.Create(ctx, base.Row{
		"email":         params.Email,
		"name":          params.Name,
		"role":          params.Role.String(),
		"password_hash": params.PasswordHash,
	}, actorID)
}

// Update applies the partial change set, re-running the email uniqueness
// check (excluding the user itself) when the email changes.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, params UpdateParams, actorID uuid.UUID) (*domain.User, error) {
	row := base.Row{}
	if params.Email != nil {
		taken, err := r.EmailExists(ctx, *params.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("user email %q: %w", *params.Email, domain.ErrAlreadyExists)
		}
		row["email"] = *params.Email
	}
	if params.Name != nil {
		row["name"] = *params.Name
	}
	if params.Role != nil {
		row["role"] = params.Role.String()
	}
	if params.PasswordHash != nil {
		row["password_hash"] = *params.PasswordHash
	}

	return r.Base.Update(ctx, id, row, actorID)
}

// GetByEmail returns the live user with the given email, case-insensitively.
func (r *Repo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	users, err := r.Select(ctx, r.SelectBuilder().
		Where(squirrel.Expr("LOWER(email) = LOWER(?)", email)).
		Limit(1))
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
	}

	return &users[0], nil
}

// EmailExists reports whether a live user other than excludeID already uses
// the email, case-insensitively.
func (r *Repo) EmailExists(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	pred := squirrel.And{squirrel.Expr("LOWER(email) = LOWER(?)", email)}
	if excludeID != uuid.Nil {
		pred = append(pred, squirrel.NotEq{"id": excludeID})
	}
	return r.Exists(ctx, pred)
}

// TouchLastLogin stamps last_login_at. It bypasses the audit trail: a login
// is recorded by the auth layer, not as an entity mutation.
func (r *Repo) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	qb := base.Builder().Update(r.Table()).
		Set("last_login_at", squirrel.Expr("CURRENT_TIMESTAMP")).
		Where(squirrel.Eq{"id": id, "deleted_at": nil})

	query, args, err := qb.ToSql()
	if err != nil {
		return fmt.Errorf("touch last login %s: %w", id, err)
	}

	res, err := r.Querier(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("touch last login %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch last login %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
