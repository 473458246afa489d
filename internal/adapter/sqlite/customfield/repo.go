// Package customfield implements the CustomField repository.
//
// Scope rules: a field with a nil client id is global; label uniqueness and
// order indexes are computed within a single scope, so a client-scoped field
// may freely reuse a label already used globally or by another client.
package customfield

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite"
	"github.com/carelog/carelog-backend/internal/adapter/sqlite/base"
	"github.com/carelog/carelog-backend/internal/domain"
)

// Repo provides custom-field persistence backed by SQLite.
type Repo struct {
	*base.Base[domain.CustomField]
}

// New creates a new custom-field repository.
func New(db *sql.DB) *Repo {
	return &Repo{
		Base: base.New[domain.CustomField](db, base.Meta{
			Table: "custom_fields",
			Columns: []string{
				"id", "label", "type", "client_id", "order_index",
				"created_at", "updated_at", "deleted_at",
			},
		}),
	}
}

// CreateParams holds the attributes of a new field. OrderIndex zero means
// "append": the next free index in the field's scope is assigned.
type CreateParams struct {
	Label      string
	Type       domain.FieldType
	ClientID   *uuid.UUID
	OrderIndex int
}

// UpdateParams is the partial change set for Update. Nil fields are
// untouched. The scope (client id) of an existing field never changes.
type UpdateParams struct {
	Label      *string
	Type       *domain.FieldType
	OrderIndex *int
}

// Create inserts a new field after checking the label is free within its
// scope. Returns domain.ErrAlreadyExists on a live collision.
func (r *Repo) Create(ctx context.Context, params CreateParams, actorID uuid.UUID) (*domain.CustomField, error) {
	taken, err := r.LabelExists(ctx, params.Label, params.ClientID, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("custom field label %q: %w", params.Label, domain.ErrAlreadyExists)
	}

	orderIndex := params.OrderIndex
	if orderIndex <= 0 {
		orderIndex, err = r.NextOrderIndex(ctx, params.ClientID)
		if err != nil {
			return nil, err
		}
	}

	return r.Base.Create(ctx, base.Row{
		"label":       params.Label,
		"type":        params.Type.String(),
		"client_id":   nullableID(params.ClientID),
		"order_index": orderIndex,
	}, actorID)
}

// Update applies the partial change set, re-running the scoped label check
// (excluding the field itself) when the label changes.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, params UpdateParams, actorID uuid.UUID) (*domain.CustomField, error) {
	row := base.Row{}
	if params.Label != nil {
		field, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		taken, err := r.LabelExists(ctx, *params.Label, field.ClientID, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("custom field label %q: %w", *params.Label, domain.ErrAlreadyExists)
		}
		row["label"] = *params.Label
	}
	if params.Type != nil {
		row["type"] = params.Type.String()
	}
	if params.OrderIndex != nil {
		row["order_index"] = *params.OrderIndex
	}

	return r.Base.Update(ctx, id, row, actorID)
}

// LabelExists reports whether a live field other than excludeID already
// uses the label within the given scope, case-insensitively.
func (r *Repo) LabelExists(ctx context.Context, label string, clientID *uuid.UUID, excludeID uuid.UUID) (bool, error) {
	pred := squirrel.And{
		squirrel.Expr("LOWER(label) = LOWER(?)", label),
		scopePred(clientID),
	}
	if excludeID != uuid.Nil {
		pred = append(pred, squirrel.NotEq{"id": excludeID})
	}
	return r.Exists(ctx, pred)
}

// NextOrderIndex returns max(order_index)+1 within the scope, 1 when the
// scope is empty.
func (r *Repo) NextOrderIndex(ctx context.Context, clientID *uuid.UUID) (int, error) {
	qb := base.Builder().
		Select("COALESCE(MAX(order_index), 0) + 1").
		From(r.Table()).
		Where(squirrel.Eq{"deleted_at": nil}).
		Where(scopePred(clientID))

	query, args, err := qb.ToSql()
	if err != nil {
		return 0, sqlite.MapError(err, r.Table(), uuid.Nil)
	}

	var next int
	if err := sqlscan.Get(ctx, r.Querier(ctx), &next, query, args...); err != nil {
		return 0, sqlite.MapError(err, r.Table(), uuid.Nil)
	}

	return next, nil
}

// UpdateOrders applies a batch of {id, order} pairs in one transaction.
// The supplied values are written verbatim; rows not listed keep their
// index. Used for drag-and-drop reordering.
func (r *Repo) UpdateOrders(ctx context.Context, updates []domain.OrderUpdate, actorID uuid.UUID) error {
	return r.Tx().RunInTx(ctx, func(txCtx context.Context) error {
		for _, u := range updates {
			if _, err := r.Base.Update(txCtx, u.ID, base.Row{"order_index": u.OrderIndex}, actorID); err != nil {
				return fmt.Errorf("reorder field %s: %w", u.ID, err)
			}
		}
		return nil
	})
}

// ListByScope returns the live fields of one scope ordered by order_index.
func (r *Repo) ListByScope(ctx context.Context, clientID *uuid.UUID) ([]domain.CustomField, error) {
	return r.Select(ctx, r.SelectBuilder().
		Where(scopePred(clientID)).
		OrderBy("order_index ASC", "label ASC"))
}

// ListForClient returns the fields visible to a client: its own plus all
// global fields, ordered by order_index within each scope.
func (r *Repo) ListForClient(ctx context.Context, clientID uuid.UUID) ([]domain.CustomField, error) {
	return r.Select(ctx, r.SelectBuilder().
		Where(squirrel.Or{
			squirrel.Eq{"client_id": nil},
			squirrel.Eq{"client_id": clientID},
		}).
		OrderBy("client_id IS NOT NULL", "order_index ASC"))
}

// scopePred matches rows of exactly one scope: global (NULL client_id) or
// one client's.
func scopePred(clientID *uuid.UUID) squirrel.Sqlizer {
	if clientID == nil {
		return squirrel.Eq{"client_id": nil}
	}
	return squirrel.Eq{"client_id": *clientID}
}

// nullableID converts an optional uuid to a driver value (nil -> NULL).
func nullableID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}
