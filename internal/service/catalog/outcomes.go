package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite/base"
	"github.com/carelog/carelog-backend/internal/domain"
)

// CreateOutcome adds an outcome to the catalog. Admin only.
func (s *Service) CreateOutcome(ctx context.Context, input NameInput) (*domain.Outcome, error) {
	actorID, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	created, err := s.outcomes.Create(ctx, strings.TrimSpace(input.Name), actorID)
	if err != nil {
		return nil, fmt.Errorf("create outcome: %w", err)
	}

	s.log.InfoContext(ctx, "outcome created",
		slog.String("outcome_id", created.ID.String()),
		slog.String("name", created.Name),
	)

	return created, nil
}

// RenameOutcome changes an outcome's name. Admin only.
func (s *Service) RenameOutcome(ctx context.Context, input RenameInput) (*domain.Outcome, error) {
	actorID, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.outcomes.Rename(ctx, input.ID, strings.TrimSpace(input.Name), actorID)
	if err != nil {
		return nil, fmt.Errorf("rename outcome: %w", err)
	}

	s.log.InfoContext(ctx, "outcome renamed",
		slog.String("outcome_id", input.ID.String()),
		slog.String("name", updated.Name),
	)

	return updated, nil
}

// DeleteOutcome soft-deletes an outcome. Admin only.
func (s *Service) DeleteOutcome(ctx context.Context, id uuid.UUID) error {
	actorID, err := requireAdmin(ctx)
	if err != nil {
		return err
	}
	if id == uuid.Nil {
		return domain.NewValidationError("id", "required")
	}

	if err := s.outcomes.SoftDelete(ctx, id, actorID); err != nil {
		return fmt.Errorf("delete outcome: %w", err)
	}

	s.log.InfoContext(ctx, "outcome deleted",
		slog.String("outcome_id", id.String()),
	)

	return nil
}

// GetOutcome returns one live outcome.
func (s *Service) GetOutcome(ctx context.Context, id uuid.UUID) (*domain.Outcome, error) {
	if err := requireUser(ctx); err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		return nil, domain.NewValidationError("id", "required")
	}

	o, err := s.outcomes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get outcome: %w", err)
	}
	return o, nil
}

// ListOutcomes returns one page of live outcomes ordered by name.
func (s *Service) ListOutcomes(ctx context.Context, page, limit int) (*base.Page[domain.Outcome], error) {
	if err := requireUser(ctx); err != nil {
		return nil, err
	}

	result, err := s.outcomes.ListByName(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	return result, nil
}
