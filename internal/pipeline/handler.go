package pipeline

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/delivery"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/handlers"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/routes"
)

// Accepted is the response to a queued message.
type Accepted struct {
	MessageID  string    `json:"message_id"`
	JobID      uuid.UUID `json:"job_id"`
	EnvelopeID string    `json:"envelope_id"`
}

// Handler accepts inbound messages over HTTP.
type Handler struct {
	coord   *delivery.Coordinator
	maxBody int64
	logger  *slog.Logger
}

// NewHandler creates a Handler. A maxBody of zero or less uses
// handlers.MaxBodySize.
func NewHandler(coord *delivery.Coordinator, maxBody int64, logger *slog.Logger) *Handler {
	if maxBody <= 0 {
		maxBody = handlers.MaxBodySize
	}
	return &Handler{
		coord:   coord,
		maxBody: maxBody,
		logger:  logger.With("handler", "messages"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/messages",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Submit},
		},
	}
}

// Submit validates a raw message and queues it for ingestion. Messages
// without an id are assigned one so resubmission is traceable.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		handlers.RespondError(w, h.logger, status, err)
		return
	}

	msg, err := ParseMessage(data)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if msg.MessageID == "" {
		msg.MessageID = uuid.NewString()
	}

	env, err := h.coord.Enqueue(r.Context(), delivery.ChannelIngestion, msg.MessageID, msg)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusServiceUnavailable, err)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, Accepted{
		MessageID:  msg.MessageID,
		JobID:      msg.JobID(),
		EnvelopeID: env.ID,
	})
}
