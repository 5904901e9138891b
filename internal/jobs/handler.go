package jobs

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/handlers"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/pagination"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/routes"
)

// Handler serves the job endpoints.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler over sys.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "jobs"),
		pagination: pagination,
	}
}

// Routes returns the job route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/jobs",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "/{id}/cancel", Handler: h.Cancel},
		},
	}
}

// List returns a window of jobs filtered by status, type and sender.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters, err := FiltersFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	window := pagination.WindowFromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.List(r.Context(), window, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	for i := range result.Items {
		result.Items[i] = *result.Items[i].Redacted()
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns one job.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: malformed id", ErrInvalid))
		return
	}

	job, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, job.Redacted())
}

// Cancel flags a job for cancellation. The execution stage stops the run
// and records the cancelled status.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: malformed id", ErrInvalid))
		return
	}

	job, err := h.sys.RequestCancel(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, job.Redacted())
}
