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

// CreateActivity adds an activity to the catalog. Admin only.
func (s *Service) CreateActivity(ctx context.Context, input NameInput) (*domain.Activity, error) {
	actorID, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	created, err := s.activities.Create(ctx, strings.TrimSpace(input.Name), actorID)
	if err != nil {
		return nil, fmt.Errorf("create activity: %w", err)
	}

	s.log.InfoContext(ctx, "activity created",
		slog.String("activity_id", created.ID.String()),
		slog.String("name", created.Name),
	)

	return created, nil
}

// RenameActivity changes an activity's name. Admin only.
func (s *Service) RenameActivity(ctx context.Context, input RenameInput) (*domain.Activity, error) {
	actorID, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.activities.Rename(ctx, input.ID, strings.TrimSpace(input.Name), actorID)
	if err != nil {
		return nil, fmt.Errorf("rename activity: %w", err)
	}

	s.log.InfoContext(ctx, "activity renamed",
		slog.String("activity_id", input.ID.String()),
		slog.String("name", updated.Name),
	)

	return updated, nil
}

// DeleteActivity soft-deletes an activity. Historical logs keep rendering
// its name. Admin only.
func (s *Service) DeleteActivity(ctx context.Context, id uuid.UUID) error {
	actorID, err := requireAdmin(ctx)
	if err != nil {
		return err
	}
	if id == uuid.Nil {
		return domain.NewValidationError("id", "required")
	}

	if err := s.activities.SoftDelete(ctx, id, actorID); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}

	s.log.InfoContext(ctx, "activity deleted",
		slog.String("activity_id", id.String()),
	)

	return nil
}

// GetActivity returns one live activity.
func (s *Service) GetActivity(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	if err := requireUser(ctx); err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		return nil, domain.NewValidationError("id", "required")
	}

	a, err := s.activities.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return a, nil
}

// ListActivities returns one page of live activities ordered by name.
func (s *Service) ListActivities(ctx context.Context, page, limit int) (*base.Page[domain.Activity], error) {
	if err := requireUser(ctx); err != nil {
		return nil, err
	}

	result, err := s.activities.ListByName(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return result, nil
}
