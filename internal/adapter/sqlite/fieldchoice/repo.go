// Package fieldchoice implements the FieldChoice repository. Choices are
// owned by their parent custom field: text uniqueness and ordering are
// computed per field, and deleting a field hard-deletes its choices.
package fieldchoice

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

// Repo provides field-choice persistence backed by SQLite.
type Repo struct {
	*base.Base[domain.FieldChoice]
}

// New creates a new field-choice repository.
func New(db *sql.DB) *Repo {
	return &Repo{
		Base: base.New[domain.FieldChoice](db, base.Meta{
			Table: "field_choices",
			Columns: []string{
				"id", "field_id", "text", "order_index",
				"created_at", "updated_at", "deleted_at",
			},
		}),
	}
}

// CreateParams holds the attributes of a new choice. OrderIndex zero means
// "append within the field".
type CreateParams struct {
	FieldID    uuid.UUID
	Text       string
	OrderIndex int
}

// Create inserts a new choice after checking the text is free within the
// field. Returns domain.ErrAlreadyExists on a live collision.
func (r *Repo) Create(ctx context.Context, params CreateParams, actorID uuid.UUID) (*domain.FieldChoice, error) {
	taken, err := r.TextExists(ctx, params.FieldID, params.Text, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("field choice %q: %w", params.Text, domain.ErrAlreadyExists)
	}

	orderIndex := params.OrderIndex
	if orderIndex <= 0 {
		orderIndex, err = r.NextOrderIndex(ctx, params.FieldID)
		if err != nil {
			return nil, err
		}
	}

	return r.Base.Create(ctx, base.Row{
		"field_id":    params.FieldID,
		"text":        params.Text,
		"order_index": orderIndex,
	}, actorID)
}

// Rename changes the choice's text, re-running the per-field uniqueness
// check excluding the choice itself.
func (r *Repo) Rename(ctx context.Context, id uuid.UUID, text string, actorID uuid.UUID) (*domain.FieldChoice, error) {
	choice, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	taken, err := r.TextExists(ctx, choice.FieldID, text, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("field choice %q: %w", text, domain.ErrAlreadyExists)
	}

	return r.Update(ctx, id, base.Row{"text": text}, actorID)
}

// TextExists reports whether a live choice of the field other than
// excludeID already uses the text, case-insensitively.
func (r *Repo) TextExists(ctx context.Context, fieldID uuid.UUID, text string, excludeID uuid.UUID) (bool, error) {
	pred := squirrel.And{
		squirrel.Eq{"field_id": fieldID},
		squirrel.Expr("LOWER(text) = LOWER(?)", text),
	}
	if excludeID != uuid.Nil {
		pred = append(pred, squirrel.NotEq{"id": excludeID})
	}
	return r.Exists(ctx, pred)
}

// NextOrderIndex returns max(order_index)+1 within the field, 1 when the
// field has no choices.
func (r *Repo) NextOrderIndex(ctx context.Context, fieldID uuid.UUID) (int, error) {
	qb := base.Builder().
		Select("COALESCE(MAX(order_index), 0) + 1").
		From(r.Table()).
		Where(squirrel.Eq{"deleted_at": nil, "field_id": fieldID})

	query, args, err := qb.ToSql()
	if err != nil {
		return 0, sqlite.MapError(err, r.Table(), fieldID)
	}

	var next int
	if err := sqlscan.Get(ctx, r.Querier(ctx), &next, query, args...); err != nil {
		return 0, sqlite.MapError(err, r.Table(), fieldID)
	}

	return next, nil
}

// UpdateOrders applies a batch of {id, order} pairs in one transaction,
// written verbatim.
func (r *Repo) UpdateOrders(ctx context.Context, updates []domain.OrderUpdate, actorID uuid.UUID) error {
	return r.Tx().RunInTx(ctx, func(txCtx context.Context) error {
		for _, u := range updates {
			if _, err := r.Update(txCtx, u.ID, base.Row{"order_index": u.OrderIndex}, actorID); err != nil {
				return fmt.Errorf("reorder choice %s: %w", u.ID, err)
			}
		}
		return nil
	})
}

// ListByField returns the live choices of a field ordered by order_index.
func (r *Repo) ListByField(ctx context.Context, fieldID uuid.UUID) ([]domain.FieldChoice, error) {
	return r.Select(ctx, r.SelectBuilder().
		Where(squirrel.Eq{"field_id": fieldID}).
		OrderBy("order_index ASC", "text ASC"))
}

// HardDeleteByField physically removes every choice of a field, writing one
// DELETE audit entry per removed choice, all in the caller's transaction.
// Used by the field-delete cascade.
func (r *Repo) HardDeleteByField(ctx context.Context, fieldID uuid.UUID, actorID uuid.UUID) (int, error) {
	choices, err := r.Select(ctx, r.SelectUnfiltered().Where(squirrel.Eq{"field_id": fieldID}))
	if err != nil {
		return 0, err
	}

	deleted := 0
	err = r.Tx().RunInTx(ctx, func(txCtx context.Context) error {
		for _, c := range choices {
			removed, err := r.HardDelete(txCtx, c.ID, actorID)
			if err != nil {
				return fmt.Errorf("cascade delete choice %s: %w", c.ID, err)
			}
			if removed {
				deleted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return deleted, nil
}
