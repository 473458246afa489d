// Package outcome implements the Outcome reference-data repository.
package outcome

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite/base"
	"github.com/carelog/carelog-backend/internal/domain"
)

// Repo provides outcome persistence backed by SQLite.
type Repo struct {
	*base.Base[domain.Outcome]
}

// New creates a new outcome repository.
func New(db *sql.DB) *Repo {
	return &Repo{
		Base: base.New[domain.Outcome](db, base.Meta{
			Table:   "outcomes",
			Columns: []string{"id", "name", "created_at", "updated_at", "deleted_at"},
		}),
	}
}

// Create inserts a new outcome. Returns domain.ErrAlreadyExists when a
// live outcome already carries the name (case-insensitive).
func (r *Repo) Create(ctx context.Context, name string, actorID uuid.UUID) (*domain.Outcome, error) {
	taken, err := r.NameExists(ctx, name, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("outcome name %q: %w", name, domain.ErrAlreadyExists)
	}

	return r.Base.Create(ctx, base.Row{"name": name}, actorID)
}

// Rename changes the outcome's name, re-running the uniqueness check
// excluding the outcome itself.
func (r *Repo) Rename(ctx context.Context, id uuid.UUID, name string, actorID uuid.UUID) (*domain.Outcome, error) {
	taken, err := r.NameExists(ctx, name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("outcome name %q: %w", name, domain.ErrAlreadyExists)
	}

	return r.Update(ctx, id, base.Row{"name": name}, actorID)
}

// NameExists reports whether a live outcome other than excludeID already
// uses the name, case-insensitively.
func (r *Repo) NameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	pred := squirrel.And{squirrel.Expr("LOWER(name) = LOWER(?)", name)}
	if excludeID != uuid.Nil {
		pred = append(pred, squirrel.NotEq{"id": excludeID})
	}
	return r.Exists(ctx, pred)
}

// ListByName returns one page of outcomes ordered by name.
func (r *Repo) ListByName(ctx context.Context, page, limit int) (*base.Page[domain.Outcome], error) {
	return r.List(ctx, base.ListParams{
		Page:    page,
		Limit:   limit,
		OrderBy: "name",
	})
}
