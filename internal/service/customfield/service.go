// Package customfield implements admin management of the extra inputs shown
// on the service log form, including dropdown choices and display ordering.
package customfield

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	cfrepo "github.com/carelog/carelog-backend/internal/adapter/sqlite/customfield"
	fcrepo "github.com/carelog/carelog-backend/internal/adapter/sqlite/fieldchoice"
	"github.com/carelog/carelog-backend/internal/domain"
	"github.com/carelog/carelog-backend/pkg/ctxutil"
)

type fieldRepo interface {
	Create(ctx context.Context, params cfrepo.CreateParams, actorID uuid.UUID) (*domain.CustomField, error)
	Update(ctx context.Context, id uuid.UUID, params cfrepo.UpdateParams, actorID uuid.UUID) (*domain.CustomField, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CustomField, error)
	SoftDelete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error
	UpdateOrders(ctx context.Context, updates []domain.OrderUpdate, actorID uuid.UUID) error
	ListByScope(ctx context.Context, clientID *uuid.UUID) ([]domain.CustomField, error)
	ListForClient(ctx context.Context, clientID uuid.UUID) ([]domain.CustomField, error)
}

type choiceRepo interface {
	Create(ctx context.Context, params fcrepo.CreateParams, actorID uuid.UUID) (*domain.FieldChoice, error)
	Rename(ctx context.Context, id uuid.UUID, text string, actorID uuid.UUID) (*domain.FieldChoice, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FieldChoice, error)
	HardDelete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (bool, error)
	HardDeleteByField(ctx context.Context, fieldID uuid.UUID, actorID uuid.UUID) (int, error)
	UpdateOrders(ctx context.Context, updates []domain.OrderUpdate, actorID uuid.UUID) error
	ListByField(ctx context.Context, fieldID uuid.UUID) ([]domain.FieldChoice, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service provides custom-field management operations.
type Service struct {
	fields  fieldRepo
	choices choiceRepo
	tx      txManager
	log     *slog.Logger
}

// NewService creates a new CustomField service.
func NewService(log *slog.Logger, fields fieldRepo, choices choiceRepo, tx txManager) *Service {
	return &Service{
		fields:  fields,
		choices: choices,
		tx:      tx,
		log:     log.With("service", "customfield"),
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
