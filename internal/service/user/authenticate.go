package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/carelog/carelog-backend/internal/domain"
)

// AuthResult is a successful login: the account plus a signed access token.
type AuthResult struct {
	User  *domain.User
	Token string
}

// Authenticate verifies credentials and issues a JWT. Wrong email and wrong
// password both come back as ErrUnauthorized so callers cannot probe which
// accounts exist.
func (s *Service) Authenticate(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	ok, err := s.hasher.Verify(u.PasswordHash, input.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	token, err := s.tokens.GenerateAccessToken(u.ID, u.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	if err := s.users.TouchLastLogin(ctx, u.ID); err != nil {
		// A failed timestamp must not block the login itself.
		s.log.WarnContext(ctx, "touch last login failed",
			slog.String("user_id", u.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	s.log.InfoContext(ctx, "user authenticated",
		slog.String("user_id", u.ID.String()),
	)

	return &AuthResult{User: u, Token: token}, nil
}
