package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite/base"
	usrrepo "github.com/carelog/carelog-backend/internal/adapter/sqlite/user"
	"github.com/carelog/carelog-backend/internal/domain"
	"github.com/carelog/carelog-backend/pkg/ctxutil"
)

// UpdateProfile changes a user's name or password. Users may edit their own
// profile; admins may edit anyone's.
func (s *Service) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*domain.User, error) {
	actorID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	if input.UserID != actorID && ctxutil.UserRoleFromCtx(ctx) != domain.RoleAdmin.String() {
		return nil, domain.ErrForbidden
	}

	params := usrrepo.UpdateParams{}
	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		params.Name = &trimmed
	}
	if input.Password != nil {
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		params.PasswordHash = &hash
	}

	updated, err := s.users.Update(ctx, input.UserID, params, actorID)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.log.InfoContext(ctx, "profile updated",
		slog.String("user_id", input.UserID.String()),
	)

	return updated, nil
}

// Deactivate soft-deletes an account. The account disappears from listings
// and can no longer log in; its audit history stays intact. Admin only.
func (s *Service) Deactivate(ctx context.Context, userID uuid.UUID) error {
	actorID, err := requireAdmin(ctx)
	if err != nil {
		return err
	}
	if userID == uuid.Nil {
		return domain.NewValidationError("user_id", "required")
	}
	if userID == actorID {
		return domain.NewValidationError("user_id", "cannot deactivate your own account")
	}

	if err := s.users.SoftDelete(ctx, userID, actorID); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}

	s.log.InfoContext(ctx, "user deactivated",
		slog.String("user_id", userID.String()),
	)

	return nil
}

// GetUser returns one live account. Users may read themselves; admins may
// read anyone.
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	actorID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user_id", "required")
	}
	if userID != actorID && ctxutil.UserRoleFromCtx(ctx) != domain.RoleAdmin.String() {
		return nil, domain.ErrForbidden
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// ListUsers returns one page of live accounts ordered by name. Admin only.
func (s *Service) ListUsers(ctx context.Context, page, limit int) (*base.Page[domain.User], error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	result, err := s.users.List(ctx, base.ListParams{
		Page:    page,
		Limit:   limit,
		OrderBy: "name",
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return result, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
