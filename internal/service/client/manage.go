package client

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite/base"
	adapter "github.com/carelog/carelog-backend/internal/adapter/sqlite/client"
	"github.com/carelog/carelog-backend/internal/domain"
	"github.com/carelog/carelog-backend/pkg/ctxutil"
)

// CreateClient creates a new client. Admin only.
func (s *Service) CreateClient(ctx context.Context, input CreateClientInput) (*domain.Client, error) {
	actorID, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	created, err := s.clients.Create(ctx, strings.TrimSpace(input.Name), actorID)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	s.log.InfoContext(ctx, "client created",
		slog.String("client_id", created.ID.String()),
		slog.String("name", created.Name),
	)

	return created, nil
}

// RenameClient changes a client's name. Admin only.
func (s *Service) RenameClient(ctx context.Context, input RenameClientInput) (*domain.Client, error) {
	actorID, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	updated, err := s.clients.Update(ctx, input.ClientID, adapter.UpdateParams{Name: &name}, actorID)
	if err != nil {
		return nil, fmt.Errorf("rename client: %w", err)
	}

	s.log.InfoContext(ctx, "client renamed",
		slog.String("client_id", input.ClientID.String()),
		slog.String("name", name),
	)

	return updated, nil
}

// DeleteClient soft-deletes a client. Historical service logs keep their
// reference; the client just stops appearing in pickers. Admin only.
func (s *Service) DeleteClient(ctx context.Context, clientID uuid.UUID) error {
	actorID, err := requireAdmin(ctx)
	if err != nil {
		return err
	}
	if clientID == uuid.Nil {
		return domain.NewValidationError("client_id", "required")
	}

	if err := s.clients.SoftDelete(ctx, clientID, actorID); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}

	s.log.InfoContext(ctx, "client deleted",
		slog.String("client_id", clientID.String()),
	)

	return nil
}

// GetClient returns one live client.
func (s *Service) GetClient(ctx context.Context, clientID uuid.UUID) (*domain.Client, error) {
	if _, ok := ctxutil.UserIDFromCtx(ctx); !ok {
		return nil, domain.ErrUnauthorized
	}
	if clientID == uuid.Nil {
		return nil, domain.NewValidationError("client_id", "required")
	}

	c, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

// ListClients returns one page of live clients ordered by name.
func (s *Service) ListClients(ctx context.Context, page, limit int) (*base.Page[domain.Client], error) {
	if _, ok := ctxutil.UserIDFromCtx(ctx); !ok {
		return nil, domain.ErrUnauthorized
	}

	result, err := s.clients.ListByName(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return result, nil
}
