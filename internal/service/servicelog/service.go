// Package servicelog implements clinician-facing log entry: draft creation
// and editing, the draft/submitted state machine, and filtered listing.
package servicelog

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite/base"
	slrepo "github.com/carelog/carelog-backend/internal/adapter/sqlite/servicelog"
	"github.com/carelog/carelog-backend/internal/domain"
	"github.com/carelog/carelog-backend/pkg/ctxutil"
)

type logRepo interface {
	Create(ctx context.Context, params slrepo.CreateParams, actorID uuid.UUID) (*domain.ServiceLog, error)
	Update(ctx context.Context, id uuid.UUID, params slrepo.UpdateParams, actorID uuid.UUID) (*domain.ServiceLog, error)
	Submit(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*domain.ServiceLog, error)
	ConvertToDraft(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*domain.ServiceLog, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceLog, error)
	GetWithEntries(ctx context.Context, id uuid.UUID) (*domain.ServiceLog, error)
	SoftDelete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error
	ListFiltered(ctx context.Context, filter domain.ReportFilter, page, limit int) (*base.Page[domain.ServiceLog], error)
	GetEntries(ctx context.Context, logID uuid.UUID) ([]domain.PatientEntry, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type projectionRefresher interface {
	Refresh(ctx context.Context) (int, error)
}

// Service provides service-log operations.
type Service struct {
	logs      logRepo
	tx        txManager
	refresher projectionRefresher // nil disables refresh-on-write
	log       *slog.Logger
}

// NewService creates a new ServiceLog service. refresher may be nil; when
// set, the reporting projection is rebuilt after submits and reverts.
func NewService(log *slog.Logger, logs logRepo, tx txManager, refresher projectionRefresher) *Service {
	return &Service{
		logs:      logs,
		tx:        tx,
		refresher: refresher,
		log:       log.With("service", "servicelog"),
	}
}

// refreshProjection rebuilds the reporting view after a state change. The
// projection is best-effort by contract, so failures are logged, not
// returned.
func (s *Service) refreshProjection(ctx context.Context) {
	if s.refresher == nil {
		return
	}
	if _, err := s.refresher.Refresh(ctx); err != nil {
		s.log.WarnContext(ctx, "reporting refresh failed",
			slog.String("error", err.Error()),
		)
	}
}

func actor(ctx context.Context) (uuid.UUID, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return userID, nil
}

func isAdmin(ctx context.Context) bool {
	return ctxutil.UserRoleFromCtx(ctx) == domain.RoleAdmin.String()
}
