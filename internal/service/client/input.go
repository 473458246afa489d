package client

import (
	"strings"

	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/domain"
)

// CreateClientInput holds the parameters for creating a client.
type CreateClientInput struct {
	Name string
}

// Validate checks all fields and collects all errors.
func (i CreateClientInput) Validate() error {
	var errs []domain.FieldError

	name := strings.TrimSpace(i.Name)
	if name == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	}
	if len(name) > 200 {
		errs = append(errs, domain.FieldError{Field: "name", Message: "max 200 characters"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// RenameClientInput holds the parameters for renaming a client.
type RenameClientInput struct {
	ClientID uuid.UUID
	Name     string
}

// Validate checks all fields and collects all errors.
func (i RenameClientInput) Validate() error {
	var errs []domain.FieldError

	if i.ClientID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "client_id", Message: "required"})
	}
	name := strings.TrimSpace(i.Name)
	if name == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	}
	if len(name) > 200 {
		errs = append(errs, domain.FieldError{Field: "name", Message: "max 200 characters"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
