package servicelog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/adapter/sqlite/base"
	"github.com/carelog/carelog-backend/internal/domain"
)

// GetLog returns one live log with its patient entries. Clinicians can only
// read their own logs; admins can read any.
func (s *Service) GetLog(ctx context.Context, logID uuid.UUID) (*domain.ServiceLog, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	if logID == uuid.Nil {
		return nil, domain.NewValidationError("log_id", "required")
	}

	log, err := s.logs.GetWithEntries(ctx, logID)
	if err != nil {
		return nil, fmt.Errorf("get log: %w", err)
	}
	if log.UserID != userID && !isAdmin(ctx) {
		return nil, domain.ErrForbidden
	}

	return log, nil
}

// ListLogs returns one page of logs matching the filter, newest service date
// first. Non-admin callers are always restricted to their own logs.
func (s *Service) ListLogs(ctx context.Context, input ListLogsInput) (*base.Page[domain.ServiceLog], error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}

	filter := input.Filter
	if !isAdmin(ctx) {
		filter.UserID = &userID
	}

	page, err := s.logs.ListFiltered(ctx, filter, input.Page, input.Limit)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}

	for i := range page.Items {
		entries, entriesErr := s.logs.GetEntries(ctx, page.Items[i].ID)
		if entriesErr != nil {
			return nil, fmt.Errorf("load entries: %w", entriesErr)
		}
		page.Items[i].Entries = entries
	}

	return page, nil
}
