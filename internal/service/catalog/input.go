package catalog

import (
	"strings"

	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/domain"
)

// NameInput holds the parameters for creating a catalog entry.
type NameInput struct {
	Name string
}

// Validate checks all fields and collects all errors.
func (i NameInput) Validate() error {
	return validateName(i.Name, nil)
}

// RenameInput holds the parameters for renaming a catalog entry.
type RenameInput struct {
	ID   uuid.UUID
	Name string
}

// Validate checks all fields and collects all errors.
func (i RenameInput) Validate() error {
	var errs []domain.FieldError
	if i.ID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "id", Message: "required"})
	}
	return validateName(i.Name, errs)
}

func validateName(name string, errs []domain.FieldError) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	}
	if len(trimmed) > 200 {
		errs = append(errs, domain.FieldError{Field: "name", Message: "max 200 characters"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
