// Package catalog implements reference-data management: the activities and
// outcomes selectable on a service log. Mutations are admin-only.
package catalog

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite/base"
	"github.com/carelog/carelog-backend/internal/domain"
	"github.com/carelog/carelog-backend/pkg/ctxutil"
)

type activityRepo interface {
	Create(ctx context.Context, name string, actorID uuid.UUID) (*domain.Activity, error)
	Rename(ctx context.Context, id uuid.UUID, name string, actorID uuid.UUID) (*domain.Activity, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error)
	SoftDelete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error
	ListByName(ctx context.Context, page, limit int) (*base.Page[domain.Activity], error)
}

type outcomeRepo interface {
	Create(ctx context.Context, name string, actorID uuid.UUID) (*domain.Outcome, error)
	Rename(ctx context.Context, id uuid.UUID, name string, actorID uuid.UUID) (*domain.Outcome, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Outcome, error)
	SoftDelete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error
	ListByName(ctx context.Context, page, limit int) (*base.Page[domain.Outcome], error)
}

// Service provides reference-data management operations.
type Service struct {
	activities activityRepo
	outcomes   outcomeRepo
	log        *slog.Logger
}

// NewService creates a new Catalog service.
func NewService(log *slog.Logger, activities activityRepo, outcomes outcomeRepo) *Service {
	return &Service{
		activities: activities,
		outcomes:   outcomes,
		log:        log.With("service", "catalog"),
	}
}

func requireAdmin(ctx context.Context) (uuid.UUID, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	if ctxutil.UserRoleFromCtx(ctx) != domain.RoleAdmin.String() {
		return uuid.Nil, domain.ErrForbidden
	}
	return userID, nil
}

func requireUser(ctx context.Context) error {
	if _, ok := ctxutil.UserIDFromCtx(ctx); !ok {
		return domain.ErrUnauthorized
	}
	return nil
}
