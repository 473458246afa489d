// Package audit provides read access to the audit_log table. Audit rows are
// written by the repositories themselves inside each mutation's transaction;
// this package only queries the trail.
package audit

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite"
	"github.com/carelog/carelog-backend/internal/adapter/sqlite/base"
	"github.com/carelog/carelog-backend/internal/domain"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Repo reads the audit trail.
type Repo struct {
	db *sql.DB
}

// New creates a new audit repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Filter narrows an audit listing. Zero-value fields are ignored.
type Filter struct {
	TableName string
	RecordID  *uuid.UUID
	UserID    *uuid.UUID
	Action    domain.AuditAction
}

// GetByRecord returns every audit entry for one record, oldest first, so the
// full history of the record can be replayed.
func (r *Repo) GetByRecord(ctx context.Context, table string, recordID uuid.UUID) ([]domain.AuditRecord, error) {
	qb := selectRecords().
		Where(squirrel.Eq{"table_name": table, "record_id": recordID}).
		OrderBy("created_at ASC")

	return r.query(ctx, qb, recordID)
}

// GetByUser returns the most recent entries written by one actor.
func (r *Repo) GetByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.AuditRecord, error) {
	qb := selectRecords().
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(clampLimit(limit)))

	return r.query(ctx, qb, userID)
}

// List returns one page of audit entries matching the filter, newest first.
func (r *Repo) List(ctx context.Context, filter Filter, page, limit int) ([]domain.AuditRecord, int, error) {
	if page < 1 {
		page = 1
	}
	limit = clampLimit(limit)
	pred := filter.pred()

	countQB := base.Builder().Select("COUNT(*)").From("audit_log")
	if pred != nil {
		countQB = countQB.Where(pred)
	}
	query, args, err := countQB.ToSql()
	if err != nil {
		return nil, 0, sqlite.MapError(err, "audit_log", filter)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, sqlite.MapError(err, "audit_log", filter)
	}

	qb := selectRecords().
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64((page - 1) * limit))
	if pred != nil {
		qb = qb.Where(pred)
	}

	records, err := r.query(ctx, qb, filter)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *Repo) query(ctx context.Context, qb squirrel.SelectBuilder, subject any) ([]domain.AuditRecord, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, sqlite.MapError(err, "audit_log", subject)
	}

	records := []domain.AuditRecord{}
	if err := sqlscan.Select(ctx, r.db, &records, query, args...); err != nil {
		return nil, sqlite.MapError(err, "audit_log", subject)
	}

	return records, nil
}

func selectRecords() squirrel.SelectBuilder {
	return base.Builder().
		Select("id", "table_name", "record_id", "action", "old_values", "new_values", "user_id", "created_at").
		From("audit_log")
}

func (f Filter) pred() squirrel.Sqlizer {
	pred := squirrel.And{}
	if f.TableName != "" {
		pred = append(pred, squirrel.Eq{"table_name": f.TableName})
	}
	if f.RecordID != nil {
		pred = append(pred, squirrel.Eq{"record_id": *f.RecordID})
	}
	if f.UserID != nil {
		pred = append(pred, squirrel.Eq{"user_id": *f.UserID})
	}
	if f.Action != "" {
		pred = append(pred, squirrel.Eq{"action": f.Action.String()})
	}
	if len(pred) == 0 {
		return nil
	}
	return pred
}

func clampLimit(limit int) int {
	switch {
	case limit < 1:
		return defaultLimit
	case limit > maxLimit:
		return maxLimit
	default:
		return limit
	}
}
