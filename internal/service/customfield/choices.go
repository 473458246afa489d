package customfield

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	fcrepo "github.com/carelog/carelog-backend/internal/adapter/sqlite/fieldchoice"
	"github.com/carelog/carelog-backend/internal/domain"
)

// AddChoice appends an option to a DROPDOWN field. Admin only.
func (s *Service) AddChoice(ctx context.Context, input AddChoiceInput) (*domain.FieldChoice, error) {
	actorID, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	field, err := s.fields.GetByID(ctx, input.FieldID)
	if err != nil {
		return nil, fmt.Errorf("get field: %w", err)
	}
	if field.Type != domain.FieldTypeDropdown {
		return nil, domain.NewValidationError("field_id", "only dropdown fields have choices")
	}

	created, err := s.choices.Create(ctx, fcrepo.CreateParams{
		FieldID: input.FieldID,
		Text:    strings.TrimSpace(input.Text),
	}, actorID)
	if err != nil {
		return nil, fmt.Errorf("add choice: %w", err)
	}

	s.log.InfoContext(ctx, "field choice added",
		slog.String("field_id", input.FieldID.String()),
		slog.String("choice_id", created.ID.String()),
	)

	return created, nil
}

// RenameChoice changes the text of a dropdown option. Admin only.
func (s *Service) RenameChoice(ctx context.Context, input RenameChoiceInput) (*domain.FieldChoice, error) {
	actorID, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.choices.Rename(ctx, input.ChoiceID, strings.TrimSpace(input.Text), actorID)
	if err != nil {
		return nil, fmt.Errorf("rename choice: %w", err)
	}

	s.log.InfoContext(ctx, "field choice renamed",
		slog.String("choice_id", input.ChoiceID.String()),
	)

	return updated, nil
}

// DeleteChoice removes a dropdown option. The last remaining choice of a
// field cannot be removed; a dropdown with no options is unusable. Admin
// only.
func (s *Service) DeleteChoice(ctx context.Context, choiceID uuid.UUID) error {
	actorID, err := requireAdmin(ctx)
	if err != nil {
		return err
	}
	if choiceID == uuid.Nil {
		return domain.NewValidationError("choice_id", "required")
	}

	choice, err := s.choices.GetByID(ctx, choiceID)
	if err != nil {
		return fmt.Errorf("get choice: %w", err)
	}

	siblings, err := s.choices.ListByField(ctx, choice.FieldID)
	if err != nil {
		return fmt.Errorf("list choices: %w", err)
	}
	if len(siblings) <= 1 {
		return domain.NewValidationError("choice_id", "cannot remove the last choice of a dropdown")
	}

	if _, err := s.choices.HardDelete(ctx, choiceID, actorID); err != nil {
		return fmt.Errorf("delete choice: %w", err)
	}

	s.log.InfoContext(ctx, "field choice deleted",
		slog.String("field_id", choice.FieldID.String()),
		slog.String("choice_id", choiceID.String()),
	)

	return nil
}

// ReorderChoices writes the supplied display orders in one transaction.
// Admin only.
func (s *Service) ReorderChoices(ctx context.Context, input ReorderInput) error {
	actorID, err := requireAdmin(ctx)
	if err != nil {
		return err
	}
	if err := input.Validate(); err != nil {
		return err
	}

	if err := s.choices.UpdateOrders(ctx, input.Updates, actorID); err != nil {
		return fmt.Errorf("reorder choices: %w", err)
	}

	s.log.InfoContext(ctx, "field choices reordered",
		slog.Int("count", len(input.Updates)),
	)

	return nil
}
