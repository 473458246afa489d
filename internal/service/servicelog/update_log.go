package servicelog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	slrepo "github.com/carelog/carelog-backend/internal/adapter/sqlite/servicelog"
	"github.com/carelog/carelog-backend/internal/domain"
)

// UpdateLog applies a partial edit to a log. Only the author may edit;
// admins may edit any log.
func (s *Service) UpdateLog(ctx context.Context, input UpdateLogInput) (*domain.ServiceLog, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.logs.GetByID(ctx, input.LogID)
	if err != nil {
		return nil, fmt.Errorf("get log: %w", err)
	}
	if existing.UserID != userID && !isAdmin(ctx) {
		return nil, domain.ErrForbidden
	}

	updated, err := s.logs.Update(ctx, input.LogID, slrepo.UpdateParams{
		ClientID:     input.ClientID,
		ActivityID:   input.ActivityID,
		OutcomeID:    input.OutcomeID,
		ClearOutcome: input.ClearOutcome,
		ServiceDate:  input.ServiceDate,
		PatientCount: input.PatientCount,
		CustomValues: input.CustomValues,
		Entries:      toEntryParams(input.Entries),
	}, userID)
	if err != nil {
		return nil, fmt.Errorf("update log: %w", err)
	}

	s.log.InfoContext(ctx, "log updated",
		slog.String("log_id", input.LogID.String()),
	)

	return updated, nil
}

// DeleteLog soft-deletes a log. Only the author or an admin may delete.
func (s *Service) DeleteLog(ctx context.Context, logID uuid.UUID) error {
	userID, err := actor(ctx)
	if err != nil {
		return err
	}
	if logID == uuid.Nil {
		return domain.NewValidationError("log_id", "required")
	}

	existing, err := s.logs.GetByID(ctx, logID)
	if err != nil {
		return fmt.Errorf("get log: %w", err)
	}
	if existing.UserID != userID && !isAdmin(ctx) {
		return domain.ErrForbidden
	}

	if err := s.logs.SoftDelete(ctx, logID, userID); err != nil {
		return fmt.Errorf("delete log: %w", err)
	}

	s.log.InfoContext(ctx, "log deleted",
		slog.String("log_id", logID.String()),
	)

	return nil
}
