// Package activity implements the Activity reference-data repository.
package activity

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite/base"
	"github.com/carelog/carelog-backend/internal/domain"
)

// Repo provides activity persistence backed by SQLite.
type Repo struct {
	*base.Base[domain.Activity]
}

// New creates a new activity repository.
func New(db *sql.DB) *Repo {
	return &Repo{
		Base: base.New[domain.Activity](db, base.Meta{
			Table:   "activities",
			Columns: []string{"id", "name", "created_at", "updated_at", "deleted_at"},
		}),
	}
}

// Create inserts a new activity. Returns domain.ErrAlreadyExists when a
// live activity already carries the name (case-insensitive).
func (r *Repo) Create(ctx context.Context, name string, actorID uuid.UUID) (*domain.Activity, error) {
	taken, err := r.NameExists(ctx, name, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("activity name %q: %w", name, domain.ErrAlreadyExists)
	}

	return r.Base.Create(ctx, base.Row{"name": name}, actorID)
}

// Rename changes the activity's name, re-running the uniqueness check
// excluding the activity itself.
func (r *Repo) Rename(ctx context.Context, id uuid.UUID, name string, actorID uuid.UUID) (*domain.Activity, error) {
	taken, err := r.NameExists(ctx, name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("activity name %q: %w", name, domain.ErrAlreadyExists)
	}

	return r.Update(ctx, id, base.Row{"name": name}, actorID)
}

// NameExists reports whether a live activity other than excludeID already
// uses the name, case-insensitively.
func (r *Repo) NameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	pred := squirrel.And{squirrel.Expr("LOWER(name) = LOWER(?)", name)}
	if excludeID != uuid.Nil {
		pred = append(pred, squirrel.NotEq{"id": excludeID})
	}
	return r.Exists(ctx, pred)
}

// ListByName returns one page of activities ordered by name.
func (r *Repo) ListByName(ctx context.Context, page, limit int) (*base.Page[domain.Activity], error) {
	return r.List(ctx, base.ListParams{
		Page:    page,
		Limit:   limit,
		OrderBy: "name",
	})
}
