// Package client implements client (healthcare site) management. All
// mutations are admin-only; reads are open to any authenticated user.
package client

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite/base"
	adapter "github.com/carelog/carelog-backend/internal/adapter/sqlite/client"
	"github.com/carelog/carelog-backend/internal/domain"
	"github.com/carelog/carelog-backend/pkg/ctxutil"
)

type clientRepo interface {
	Create(ctx context.Context, name string, actorID uuid.UUID) (*domain.Client, error)
	Update(ctx context.Context, id uuid.UUID, params adapter.UpdateParams, actorID uuid.UUID) (*domain.Client, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	SoftDelete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error
	ListByName(ctx context.Context, page, limit int) (*base.Page[domain.Client], error)
}

// Service provides client management operations.
type Service struct {
	clients clientRepo
	log     *slog.Logger
}

// NewService creates a new Client service.
func NewService(log *slog.Logger, clients clientRepo) *Service {
	return &Service{
		clients: clients,
		log:     log.With("service", "client"),
	}
}

// requireAdmin returns the acting admin's ID, ErrUnauthorized when no
// identity is present, or ErrForbidden for non-admins.
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
