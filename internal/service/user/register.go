package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	usrrepo "github.com/carelog/carelog-backend/internal/adapter/sqlite/user"
	"github.com/carelog/carelog-backend/internal/domain"
)

// Register creates a new account. Admin only; there is no self-signup in the
// portal.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	actorID, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.Create(ctx, usrrepo.CreateParams{
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Name:         strings.TrimSpace(input.Name),
		Role:         input.Role,
		PasswordHash: hash,
	}, actorID)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.InfoContext(ctx, "user registered",
		slog.String("user_id", created.ID.String()),
		slog.String("role", created.Role.String()),
	)

	return created, nil
}
