// Package user implements account management and authentication: register,
// login (JWT issue), profile updates, admin listing and deactivation.
package user

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite/base"
	usrrepo "github.com/carelog/carelog-backend/internal/adapter/sqlite/user"
	"github.com/carelog/carelog-backend/internal/domain"
	"github.com/carelog/carelog-backend/pkg/ctxutil"
)

type userRepo interface {
	Create(ctx context.Context, params usrrepo.CreateParams, actorID uuid.UUID) (*domain.User, error)
	Update(ctx context.Context, id uuid.UUID, params usrrepo.UpdateParams, actorID uuid.UUID) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	SoftDelete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params base.ListParams) (*base.Page[domain.User], error)
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) (bool, error)
}

type tokenIssuer interface {
	GenerateAccessToken(userID uuid.UUID, role domain.Role) (string, error)
}

// Service provides account and authentication operations.
type Service struct {
	users  userRepo
	hasher passwordHasher
	tokens tokenIssuer
	log    *slog.Logger
}

// NewService creates a new User service.
func NewService(log *slog.Logger, users userRepo, hasher passwordHasher, tokens tokenIssuer) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		log:    log.With("service", "user"),
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
