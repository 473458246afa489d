// Package reporting serves read-side report queries over the denormalized
// projection and owns the projection refresh.
package reporting

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/carelog/carelog-backend/internal/domain"
	"github.com/carelog/carelog-backend/pkg/ctxutil"
)

type reportRepo interface {
	Refresh(ctx context.Context) (int, error)
	Available(ctx context.Context) (bool, error)
	Query(ctx context.Context, filter domain.ReportFilter, page, limit int) ([]domain.ReportRow, int, error)
	Summary(ctx context.Context, filter domain.ReportFilter) (*domain.ReportSummary, error)
}

// Service provides reporting operations.
type Service struct {
	reports reportRepo
	log     *slog.Logger
}

// NewService creates a new Reporting service.
func NewService(log *slog.Logger, reports reportRepo) *Service {
	return &Service{
		reports: reports,
		log:     log.With("service", "reporting"),
	}
}

// ReportPage is one page of report rows plus the total match count.
type ReportPage struct {
	Rows  []domain.ReportRow
	Total int
	Page  int
	Limit int
}

// Query returns one page of report rows. Non-admin callers are restricted to
// their own logs.
func (s *Service) Query(ctx context.Context, filter domain.ReportFilter, page, limit int) (*ReportPage, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if ctxutil.UserRoleFromCtx(ctx) != domain.RoleAdmin.String() {
		filter.UserID = &userID
	}

	rows, total, err := s.reports.Query(ctx, filter, page, limit)
	if err != nil {
		return nil, fmt.Errorf("query report: %w", err)
	}

	return &ReportPage{Rows: rows, Total: total, Page: page, Limit: limit}, nil
}

// Summary aggregates every row matching the filter. Non-admin callers are
// restricted to their own logs.
func (s *Service) Summary(ctx context.Context, filter domain.ReportFilter) (*domain.ReportSummary, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if ctxutil.UserRoleFromCtx(ctx) != domain.RoleAdmin.String() {
		filter.UserID = &userID
	}

	sum, err := s.reports.Summary(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("summarize report: %w", err)
	}
	return sum, nil
}

// Refresh rebuilds the projection. Admin only; the cron entry point calls
// the repository directly.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return 0, domain.ErrUnauthorized
	}
	if ctxutil.UserRoleFromCtx(ctx) != domain.RoleAdmin.String() {
		return 0, domain.ErrForbidden
	}

	started := time.Now()
	projected, err := s.reports.Refresh(ctx)
	if err != nil {
		return 0, fmt.Errorf("refresh projection: %w", err)
	}

	s.log.InfoContext(ctx, "reporting projection refreshed",
		slog.String("user_id", userID.String()),
		slog.Int("rows", projected),
		slog.Duration("took", time.Since(started)),
	)

	return projected, nil
}
