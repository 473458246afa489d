package customfield

import (
	"strings"

	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/domain"
)

// CreateFieldInput holds the parameters for creating a custom field.
// A DROPDOWN field must arrive with at least one choice; the field and its
// choices are created atomically.
type CreateFieldInput struct {
	Label    string
	Type     domain.FieldType
	ClientID *uuid.UUID // nil = global
	Choices  []string   // DROPDOWN only
}

// Validate checks all fields and collects all errors.
func (i CreateFieldInput) Validate() error {
	var errs []domain.FieldError

	label := strings.TrimSpace(i.Label)
	if label == "" {
		errs = append(errs, domain.FieldError{Field: "label", Message: "required"})
	}
	if len(label) > 200 {
		errs = append(errs, domain.FieldError{Field: "label", Message: "max 200 characters"})
	}
	if !i.Type.IsValid() {
		errs = append(errs, domain.FieldError{Field: "type", Message: "must be one of TEXT, DROPDOWN, NUMBER, CHECKBOX"})
	}
	if i.ClientID != nil && *i.ClientID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "client_id", Message: "must be a valid id or absent"})
	}

	if i.Type == domain.FieldTypeDropdown {
		if len(i.Choices) == 0 {
			errs = append(errs, domain.FieldError{Field: "choices", Message: "dropdown requires at least one choice"})
		}
		for _, c := range i.Choices {
			if strings.TrimSpace(c) == "" {
				errs = append(errs, domain.FieldError{Field: "choices", Message: "choice text must not be blank"})
				break
			}
		}
	} else if len(i.Choices) > 0 {
		errs = append(errs, domain.FieldError{Field: "choices", Message: "only dropdown fields have choices"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// UpdateFieldInput holds the parameters for relabelling a custom field.
// Type and scope are fixed at creation; only the label changes.
type UpdateFieldInput struct {
	FieldID uuid.UUID
	Label   string
}

// Validate checks all fields and collects all errors.
func (i UpdateFieldInput) Validate() error {
	var errs []domain.FieldError

	if i.FieldID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "field_id", Message: "required"})
	}
	label := strings.TrimSpace(i.Label)
	if label == "" {
		errs = append(errs, domain.FieldError{Field: "label", Message: "required"})
	}
	if len(label) > 200 {
		errs = append(errs, domain.FieldError{Field: "label", Message: "max 200 characters"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// AddChoiceInput holds the parameters for adding a dropdown choice.
type AddChoiceInput struct {
	FieldID uuid.UUID
	Text    string
}

// Validate checks all fields and collects all errors.
func (i AddChoiceInput) Validate() error {
	var errs []domain.FieldError

	if i.FieldID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "field_id", Message: "required"})
	}
	text := strings.TrimSpace(i.Text)
	if text == "" {
		errs = append(errs, domain.FieldError{Field: "text", Message: "required"})
	}
	if len(text) > 200 {
		errs = append(errs, domain.FieldError{Field: "text", Message: "max 200 characters"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// RenameChoiceInput holds the parameters for renaming a dropdown choice.
type RenameChoiceInput struct {
	ChoiceID uuid.UUID
	Text     string
}

// Validate checks all fields and collects all errors.
func (i RenameChoiceInput) Validate() error {
	var errs []domain.FieldError

	if i.ChoiceID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "choice_id", Message: "required"})
	}
	text := strings.TrimSpace(i.Text)
	if text == "" {
		errs = append(errs, domain.FieldError{Field: "text", Message: "required"})
	}
	if len(text) > 200 {
		errs = append(errs, domain.FieldError{Field: "text", Message: "max 200 characters"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ReorderInput holds the {id, order} pairs of a batch reorder.
type ReorderInput struct {
	Updates []domain.OrderUpdate
}

// Validate checks all fields and collects all errors.
func (i ReorderInput) Validate() error {
	var errs []domain.FieldError

	if len(i.Updates) == 0 {
		errs = append(errs, domain.FieldError{Field: "updates", Message: "at least one entry required"})
	}
	seen := make(map[uuid.UUID]bool, len(i.Updates))
	for _, u := range i.Updates {
		if u.ID == uuid.Nil {
			errs = append(errs, domain.FieldError{Field: "updates", Message: "entry id required"})
			break
		}
		if seen[u.ID] {
			errs = append(errs, domain.FieldError{Field: "updates", Message: "duplicate entry id"})
			break
		}
		seen[u.ID] = true
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
