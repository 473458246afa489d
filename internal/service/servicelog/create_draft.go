package servicelog

import (
	"context"
	"fmt"
	"log/slog"

	slrepo "github.com/carelog/carelog-backend/internal/adapter/sqlite/servicelog"
	"github.com/carelog/carelog-backend/internal/domain"
)

// CreateDraft creates a new draft log authored by the authenticated user.
func (s *Service) CreateDraft(ctx context.Context, input CreateDraftInput) (*domain.ServiceLog, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	created, err := s.logs.Create(ctx, slrepo.CreateParams{
		UserID:       userID,
		ClientID:     input.ClientID,
		ActivityID:   input.ActivityID,
		OutcomeID:    input.OutcomeID,
		ServiceDate:  input.ServiceDate,
		PatientCount: input.PatientCount,
		CustomValues: input.CustomValues,
		Entries:      toEntryParams(input.Entries),
	}, userID)
	if err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}

	s.log.InfoContext(ctx, "draft created",
		slog.String("log_id", created.ID.String()),
		slog.String("client_id", input.ClientID.String()),
	)

	return created, nil
}

// BulkCreateDrafts creates several drafts in one transaction; if any of them
// fails, none are kept.
func (s *Service) BulkCreateDrafts(ctx context.Context, inputs []CreateDraftInput) ([]*domain.ServiceLog, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, domain.NewValidationError("drafts", "at least one draft required")
	}
	for idx, input := range inputs {
		if err := input.Validate(); err != nil {
			return nil, fmt.Errorf("draft %d: %w", idx+1, err)
		}
	}

	created := make([]*domain.ServiceLog, 0, len(inputs))
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		for idx, input := range inputs {
			log, createErr := s.logs.Create(txCtx, slrepo.CreateParams{
				UserID:       userID,
				ClientID:     input.ClientID,
				ActivityID:   input.ActivityID,
				OutcomeID:    input.OutcomeID,
				ServiceDate:  input.ServiceDate,
				PatientCount: input.PatientCount,
				CustomValues: input.CustomValues,
				Entries:      toEntryParams(input.Entries),
			}, userID)
			if createErr != nil {
				return fmt.Errorf("draft %d: %w", idx+1, createErr)
			}
			created = append(created, log)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.refreshProjection(ctx)

	s.log.InfoContext(ctx, "drafts bulk created",
		slog.Int("count", len(created)),
	)

	return created, nil
}
