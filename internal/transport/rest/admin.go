package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/carelog/carelog-backend/internal/domain"
)

type reportingService interface {
	Refresh(ctx context.Context) (int, error)
}

// AdminHandler serves admin REST endpoints.
type AdminHandler struct {
	reporting reportingService
	log       *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(reporting reportingService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		reporting: reporting,
		log:       logger.With("handler", "admin"),
	}
}

type refreshResponse struct {
	Rows int `json:"rows"`
}

// RefreshReporting rebuilds the reporting projection on demand.
// POST /admin/reporting/refresh
func (h *AdminHandler) RefreshReporting(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reporting.Refresh(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, "unauthorized")
		case errors.Is(err, domain.ErrForbidden):
			writeError(w, http.StatusForbidden, "admin access required")
		default:
			h.log.ErrorContext(r.Context(), "refresh reporting", slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, refreshResponse{Rows: rows})
}
