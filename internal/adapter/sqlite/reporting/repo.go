// Package reporting maintains and queries the denormalized reporting
// projection. The projection is rebuilt wholesale by Refresh; when the
// projection table is absent, queries fall back to the live join and return
// identical row shapes.
package reporting

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite"
	"github.com/carelog/carelog-backend/internal/adapter/sqlite/base"
	"github.com/carelog/carelog-backend/internal/domain"
)

// ViewTable is the projection table rebuilt by Refresh.
const ViewTable = "service_log_reporting_view"

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Repo maintains the reporting projection.
type Repo struct {
	db *sql.DB
	tx *sqlite.TxManager
}

// New creates a new reporting repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db, tx: sqlite.NewTxManager(db)}
}

// rowColumns is the shared projection shape; both the view read and the live
// fallback produce exactly these columns.
var rowColumns = []string{
	"service_log_id", "user_id", "client_id", "client_name",
	"activity_id", "activity_name", "service_date", "is_draft",
	"patient_count", "new_count", "followup_count", "dna_count", "total_count",
}

// Available reports whether the projection table exists in the schema.
func (r *Repo) Available(ctx context.Context) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, ViewTable,
	).Scan(&n)
	if err != nil {
		return false, sqlite.MapError(err, "sqlite_master", ViewTable)
	}
	return n > 0, nil
}

// Refresh rebuilds the projection from the live tables: delete everything,
// reinsert from the join, all in one transaction so readers never observe a
// half-built view. Returns the number of rows projected.
func (r *Repo) Refresh(ctx context.Context) (int, error) {
	var projected int
	err := r.tx.RunInTx(ctx, func(txCtx context.Context) error {
		q := sqlite.QuerierFromCtx(txCtx, r.db)

		if _, err := q.ExecContext(txCtx, `DELETE FROM `+ViewTable); err != nil {
			return sqlite.MapError(err, ViewTable, "refresh")
		}

		res, err := q.ExecContext(txCtx, `
			INSERT INTO `+ViewTable+` (
				service_log_id, user_id, client_id, client_name,
				activity_id, activity_name, service_date, is_draft,
				patient_count, new_count, followup_count, dna_count, total_count,
				refreshed_at
			)
			`+liveSelect, time.Now().UTC())
		if err != nil {
			return sqlite.MapError(err, ViewTable, "refresh")
		}

		n, err := res.RowsAffected()
		if err != nil {
			return sqlite.MapError(err, ViewTable, "refresh")
		}
		projected = int(n)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return projected, nil
}

// liveSelect is the canonical projection query over the source tables. Only
// live logs are projected; soft-deleted clients and activities still
// contribute their names so historical logs keep rendering. The trailing
// placeholder column carries the refresh timestamp.
const liveSelect = `
			SELECT
				sl.id, sl.user_id, sl.client_id, c.name,
				sl.activity_id, a.name, sl.service_date, sl.is_draft,
				sl.patient_count,
				COALESCE(SUM(CASE WHEN pe.appointment_type = 'NEW' THEN pe.count END), 0),
				COALESCE(SUM(CASE WHEN pe.appointment_type = 'FOLLOWUP' THEN pe.count END), 0),
				COALESCE(SUM(CASE WHEN pe.appointment_type = 'DNA' THEN pe.count END), 0),
				COALESCE(SUM(pe.count), 0),
				?
			FROM service_logs sl
			JOIN clients c ON c.id = sl.client_id
			JOIN activities a ON a.id = sl.activity_id
			LEFT JOIN patient_entries pe ON pe.service_log_id = sl.id
			WHERE sl.deleted_at IS NULL
			GROUP BY sl.id`

// Query returns one page of report rows matching the filter, newest service
// date first, plus the total match count. It reads the projection when
// available and otherwise computes the same rows from the live tables.
func (r *Repo) Query(ctx context.Context, filter domain.ReportFilter, page, limit int) ([]domain.ReportRow, int, error) {
	ok, err := r.Available(ctx)
	if err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	limit = clampLimit(limit)
	offset := (page - 1) * limit

	if ok {
		return r.queryView(ctx, filter, limit, offset)
	}
	return r.queryLive(ctx, filter, limit, offset)
}

// Summary aggregates all rows matching the filter, regardless of paging.
func (r *Repo) Summary(ctx context.Context, filter domain.ReportFilter) (*domain.ReportSummary, error) {
	rows, _, err := r.queryAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	sum := &domain.ReportSummary{Logs: len(rows)}
	for _, row := range rows {
		sum.Patients += row.PatientCount
		sum.NewCount += row.NewCount
		sum.FollowupCount += row.FollowupCount
		sum.DNACount += row.DNACount
	}
	return sum, nil
}

func (r *Repo) queryAll(ctx context.Context, filter domain.ReportFilter) ([]domain.ReportRow, int, error) {
	ok, err := r.Available(ctx)
	if err != nil {
		return nil, 0, err
	}
	if ok {
		return r.queryView(ctx, filter, 0, 0)
	}
	return r.queryLive(ctx, filter, 0, 0)
}

func (r *Repo) queryView(ctx context.Context, filter domain.ReportFilter, limit, offset int) ([]domain.ReportRow, int, error) {
	pred := viewPred(filter)

	countQB := base.Builder().Select("COUNT(*)").From(ViewTable)
	if pred != nil {
		countQB = countQB.Where(pred)
	}
	total, err := r.count(ctx, countQB)
	if err != nil {
		return nil, 0, err
	}

	qb := base.Builder().
		Select(rowColumns...).
		From(ViewTable).
		OrderBy("service_date DESC", "service_log_id ASC")
	if pred != nil {
		qb = qb.Where(pred)
	}
	qb = paginate(qb, limit, offset)

	rows, err := r.selectRows(ctx, qb)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *Repo) queryLive(ctx context.Context, filter domain.ReportFilter, limit, offset int) ([]domain.ReportRow, int, error) {
	pred := livePred(filter)

	countQB := base.Builder().
		Select("COUNT(*)").
		From("service_logs sl").
		Where(squirrel.Eq{"sl.deleted_at": nil})
	if pred != nil {
		countQB = countQB.Where(pred)
	}
	total, err := r.count(ctx, countQB)
	if err != nil {
		return nil, 0, err
	}

	qb := base.Builder().
		Select(
			"sl.id AS service_log_id", "sl.user_id", "sl.client_id", "c.name AS client_name",
			"sl.activity_id", "a.name AS activity_name", "sl.service_date", "sl.is_draft",
			"sl.patient_count",
			"COALESCE(SUM(CASE WHEN pe.appointment_type = 'NEW' THEN pe.count END), 0) AS new_count",
			"COALESCE(SUM(CASE WHEN pe.appointment_type = 'FOLLOWUP' THEN pe.count END), 0) AS followup_count",
			"COALESCE(SUM(CASE WHEN pe.appointment_type = 'DNA' THEN pe.count END), 0) AS dna_count",
			"COALESCE(SUM(pe.count), 0) AS total_count",
		).
		From("service_logs sl").
		Join("clients c ON c.id = sl.client_id").
		Join("activities a ON a.id = sl.activity_id").
		LeftJoin("patient_entries pe ON pe.service_log_id = sl.id").
		Where(squirrel.Eq{"sl.deleted_at": nil}).
		GroupBy("sl.id").
		OrderBy("sl.service_date DESC", "sl.id ASC")
	if pred != nil {
		qb = qb.Where(pred)
	}
	qb = paginate(qb, limit, offset)

	rows, err := r.selectRows(ctx, qb)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *Repo) count(ctx context.Context, qb squirrel.SelectBuilder) (int, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return 0, sqlite.MapError(err, ViewTable, "count")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, sqlite.MapError(err, ViewTable, "count")
	}
	return total, nil
}

func (r *Repo) selectRows(ctx context.Context, qb squirrel.SelectBuilder) ([]domain.ReportRow, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, sqlite.MapError(err, ViewTable, "query")
	}

	rows := []domain.ReportRow{}
	if err := sqlscan.Select(ctx, r.db, &rows, query, args...); err != nil {
		return nil, sqlite.MapError(err, ViewTable, "query")
	}
	return rows, nil
}

func paginate(qb squirrel.SelectBuilder, limit, offset int) squirrel.SelectBuilder {
	if limit <= 0 {
		return qb
	}
	return qb.Limit(uint64(limit)).Offset(uint64(offset))
}

func viewPred(filter domain.ReportFilter) squirrel.Sqlizer {
	return pred(filter, "")
}

func livePred(filter domain.ReportFilter) squirrel.Sqlizer {
	return pred(filter, "sl.")
}

func pred(filter domain.ReportFilter, prefix string) squirrel.Sqlizer {
	and := squirrel.And{}
	if filter.UserID != nil {
		and = append(and, squirrel.Eq{prefix + "user_id": *filter.UserID})
	}
	if filter.ClientID != nil {
		and = append(and, squirrel.Eq{prefix + "client_id": *filter.ClientID})
	}
	if filter.ActivityID != nil {
		and = append(and, squirrel.Eq{prefix + "activity_id": *filter.ActivityID})
	}
	if filter.IsDraft != nil {
		and = append(and, squirrel.Eq{prefix + "is_draft": *filter.IsDraft})
	}
	if filter.DateFrom != nil {
		and = append(and, squirrel.GtOrEq{prefix + "service_date": filter.DateFrom.UTC()})
	}
	if filter.DateTo != nil {
		and = append(and, squirrel.LtOrEq{prefix + "service_date": filter.DateTo.UTC()})
	}
	if len(and) == 0 {
		return nil
	}
	return and
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
