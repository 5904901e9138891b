package delivery

import (
	"log/slog"
	"net/http"

	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/handlers"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/pagination"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/routes"
)

// Handler serves the dead-letter inspection endpoint.
type Handler struct {
	coord      *Coordinator
	logger     *slog.Logger
	pagination pagination.Config
}

func NewHandler(coord *Coordinator, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		coord:      coord,
		logger:     logger.With("handler", "dead-letters"),
		pagination: pagination,
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/dead-letters",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
		},
	}
}

// List returns the newest dead letters, bounded by the limit query value.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	window := pagination.WindowFromQuery(r.URL.Query(), h.pagination)

	letters, err := h.coord.DeadLetters(r.Context(), window.Limit)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadGateway, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, letters)
}
