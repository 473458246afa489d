// Package client implements the Client repository on the generic base.
// Client names are unique among live rows, case-insensitive; the check runs
// before the mutation so soft-deleted clients never block a name's reuse.
package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite/base"
	"github.com/carelog/carelog-backend/internal/domain"
)

// Repo provides client persistence backed by SQLite.
type Repo struct {
	*base.Base[domain.Client]
}

// New creates a new client repository.
func New(db *sql.DB) *Repo {
	return &Repo{
		Base: base.New[domain.Client](db, base.Meta{
			Table:   "clients",
			Columns: []string{"id", "name", "created_at", "updated_at", "deleted_at"},
		}),
	}
}

// UpdateParams is the partial change set for Update. Nil fields are untouched.
type UpdateParams struct {
	Name *string
}

// Create inserts a new client after checking the name is free.
// Returns domain.ErrAlreadyExists on a live name collision.
func (r *Repo) Create(ctx context.Context, name string, actorID uuid.UUID) (*domain.Client, error) {
	taken, err := r.NameExists(ctx, name, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("client name %q: %w", name, domain.ErrAlreadyExists)
	}

	return r.Base.Create(ctx, base.Row{"name": name}, actorID)
}

// Update applies the partial change set, re-running the name uniqueness
// check (excluding the client itself) when the name changes.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, params UpdateParams, actorID uuid.UUID) (*domain.Client, error) {
	row := base.Row{}
	if params.Name != nil {
		taken, err := r.NameExists(ctx, *params.Name, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("client name %q: %w", *params.Name, domain.ErrAlreadyExists)
		}
		row["name"] = *params.Name
	}

	return r.Base.Update(ctx, id, row, actorID)
}

// NameExists reports whether a live client other than excludeID already
// uses the name, case-insensitively.
func (r *Repo) NameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	pred := squirrel.And{squirrel.Expr("LOWER(name) = LOWER(?)", name)}
	if excludeID != uuid.Nil {
		pred = append(pred, squirrel.NotEq{"id": excludeID})
	}
	return r.Exists(ctx, pred)
}

// ListByName returns one page of clients ordered by name.
func (r *Repo) ListByName(ctx context.Context, page, limit int) (*base.Page[domain.Client], error) {
	return r.List(ctx, base.ListParams{
		Page:    page,
		Limit:   limit,
		OrderBy: "name",
	})
}
