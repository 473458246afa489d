package customfield

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	cfrepo "github.com/carelog/carelog-backend/internal/adapter/sqlite/customfield"
	fcrepo "github.com/carelog/carelog-backend/internal/adapter/sqlite/fieldchoice"
	"github.com/carelog/carelog-backend/internal/domain"
	"github.com/carelog/carelog-backend/pkg/ctxutil"
)

// CreateField creates a custom field. For DROPDOWN fields the choices are
// created in the same transaction; if any choice fails, nothing is kept.
// Admin only.
func (s *Service) CreateField(ctx context.Context, input CreateFieldInput) (*domain.CustomField, error) {
	actorID, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var created *domain.CustomField
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var createErr error
		created, createErr = s.fields.Create(txCtx, cfrepo.CreateParams{
			Label:    strings.TrimSpace(input.Label),
			Type:     input.Type,
			ClientID: input.ClientID,
		}, actorID)
		if createErr != nil {
			return fmt.Errorf("create field: %w", createErr)
		}

		for idx, text := range input.Choices {
			choice, choiceErr := s.choices.Create(txCtx, fcrepo.CreateParams{
				FieldID:    created.ID,
				Text:       strings.TrimSpace(text),
				OrderIndex: idx + 1,
			}, actorID)
			if choiceErr != nil {
				return fmt.Errorf("create choice %d: %w", idx+1, choiceErr)
			}
			created.Choices = append(created.Choices, *choice)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "custom field created",
		slog.String("field_id", created.ID.String()),
		slog.String("label", created.Label),
		slog.String("type", created.Type.String()),
		slog.Int("choices", len(created.Choices)),
	)

	return created, nil
}

// UpdateField relabels a custom field. Admin only.
func (s *Service) UpdateField(ctx context.Context, input UpdateFieldInput) (*domain.CustomField, error) {
	actorID, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	label := strings.TrimSpace(input.Label)
	updated, err := s.fields.Update(ctx, input.FieldID, cfrepo.UpdateParams{Label: &label}, actorID)
	if err != nil {
		return nil, fmt.Errorf("update field: %w", err)
	}

	updated.Choices, err = s.choices.ListByField(ctx, input.FieldID)
	if err != nil {
		return nil, fmt.Errorf("list choices: %w", err)
	}

	s.log.InfoContext(ctx, "custom field updated",
		slog.String("field_id", input.FieldID.String()),
		slog.String("label", label),
	)

	return updated, nil
}

// DeleteField soft-deletes a custom field and hard-deletes its choices in
// one transaction. Submitted logs keep whatever values they already hold in
// their custom-value blobs. Admin only.
func (s *Service) DeleteField(ctx context.Context, fieldID uuid.UUID) error {
	actorID, err := requireAdmin(ctx)
	if err != nil {
		return err
	}
	if fieldID == uuid.Nil {
		return domain.NewValidationError("field_id", "required")
	}

	var removedChoices int
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if deleteErr := s.fields.SoftDelete(txCtx, fieldID, actorID); deleteErr != nil {
			return fmt.Errorf("delete field: %w", deleteErr)
		}

		var choiceErr error
		removedChoices, choiceErr = s.choices.HardDeleteByField(txCtx, fieldID, actorID)
		if choiceErr != nil {
			return fmt.Errorf("delete choices: %w", choiceErr)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "custom field deleted",
		slog.String("field_id", fieldID.String()),
		slog.Int("removed_choices", removedChoices),
	)

	return nil
}

// ReorderFields writes the supplied display orders in one transaction.
// Admin only.
func (s *Service) ReorderFields(ctx context.Context, input ReorderInput) error {
	actorID, err := requireAdmin(ctx)
	if err != nil {
		return err
	}
	if err := input.Validate(); err != nil {
		return err
	}

	if err := s.fields.UpdateOrders(ctx, input.Updates, actorID); err != nil {
		return fmt.Errorf("reorder fields: %w", err)
	}

	s.log.InfoContext(ctx, "custom fields reordered",
		slog.Int("count", len(input.Updates)),
	)

	return nil
}

// GetField returns one live custom field with its choices loaded.
func (s *Service) GetField(ctx context.Context, fieldID uuid.UUID) (*domain.CustomField, error) {
	if _, ok := ctxutil.UserIDFromCtx(ctx); !ok {
		return nil, domain.ErrUnauthorized
	}
	if fieldID == uuid.Nil {
		return nil, domain.NewValidationError("field_id", "required")
	}

	field, err := s.fields.GetByID(ctx, fieldID)
	if err != nil {
		return nil, fmt.Errorf("get field: %w", err)
	}

	field.Choices, err = s.choices.ListByField(ctx, fieldID)
	if err != nil {
		return nil, fmt.Errorf("list choices: %w", err)
	}

	return field, nil
}

// ListFieldsForClient returns the fields shown on the log form for a client:
// global fields plus the client's own, ordered by display order. Choices are
// loaded for every dropdown field.
func (s *Service) ListFieldsForClient(ctx context.Context, clientID uuid.UUID) ([]domain.CustomField, error) {
	if _, ok := ctxutil.UserIDFromCtx(ctx); !ok {
		return nil, domain.ErrUnauthorized
	}
	if clientID == uuid.Nil {
		return nil, domain.NewValidationError("client_id", "required")
	}

	fields, err := s.fields.ListForClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}

	return s.loadChoices(ctx, fields)
}

// ListGlobalFields returns the global (unscoped) fields in display order.
func (s *Service) ListGlobalFields(ctx context.Context) ([]domain.CustomField, error) {
	if _, ok := ctxutil.UserIDFromCtx(ctx); !ok {
		return nil, domain.ErrUnauthorized
	}

	fields, err := s.fields.ListByScope(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}

	return s.loadChoices(ctx, fields)
}

func (s *Service) loadChoices(ctx context.Context, fields []domain.CustomField) ([]domain.CustomField, error) {
	for i := range fields {
		if fields[i].Type != domain.FieldTypeDropdown {
			continue
		}
		choices, err := s.choices.ListByField(ctx, fields[i].ID)
		if err != nil {
			return nil, fmt.Errorf("list choices: %w", err)
		}
		fields[i].Choices = choices
	}
	return fields, nil
}
