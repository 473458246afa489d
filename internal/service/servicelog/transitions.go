package servicelog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/domain"
)

// SubmitDraft moves a draft into the submitted state. Only the author may
// submit, and only a draft can be submitted.
func (s *Service) SubmitDraft(ctx context.Context, logID uuid.UUID) (*domain.ServiceLog, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	if logID == uuid.Nil {
		return nil, domain.NewValidationError("log_id", "required")
	}

	var submitted *domain.ServiceLog
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		existing, getErr := s.logs.GetByID(txCtx, logID)
		if getErr != nil {
			return fmt.Errorf("get log: %w", getErr)
		}
		if existing.UserID != userID {
			return domain.ErrForbidden
		}
		if !existing.IsDraft {
			return fmt.Errorf("log already submitted: %w", domain.ErrConflict)
		}

		var submitErr error
		submitted, submitErr = s.logs.Submit(txCtx, logID, userID)
		if submitErr != nil {
			return fmt.Errorf("submit log: %w", submitErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.refreshProjection(ctx)

	s.log.InfoContext(ctx, "draft submitted",
		slog.String("log_id", logID.String()),
	)

	return submitted, nil
}

// ConvertToDraft reverts a submitted log back to draft. Only the author may
// revert, and only a submitted log can be reverted. Submit and revert may
// cycle any number of times.
func (s *Service) ConvertToDraft(ctx context.Context, logID uuid.UUID) (*domain.ServiceLog, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	if logID == uuid.Nil {
		return nil, domain.NewValidationError("log_id", "required")
	}

	var reverted *domain.ServiceLog
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		existing, getErr := s.logs.GetByID(txCtx, logID)
		if getErr != nil {
			return fmt.Errorf("get log: %w", getErr)
		}
		if existing.UserID != userID {
			return domain.ErrForbidden
		}
		if existing.IsDraft {
			return fmt.Errorf("log already a draft: %w", domain.ErrConflict)
		}

		var revertErr error
		reverted, revertErr = s.logs.ConvertToDraft(txCtx, logID, userID)
		if revertErr != nil {
			return fmt.Errorf("convert log: %w", revertErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.refreshProjection(ctx)

	s.log.InfoContext(ctx, "log reverted to draft",
		slog.String("log_id", logID.String()),
	)

	return reverted, nil
}
