// Package notify delivers terminal job outcomes to the requester. Rendering
// and mail transport sit outside this service; a Notifier hands the event
// to whatever does that.
package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/jobs"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/workflow"
)

// Event is emitted once per terminal job.
type Event struct {
	JobID          uuid.UUID        `json:"job_id"`
	Status         jobs.Status      `json:"status"`
	Result         *workflow.Result `json:"result"`
	RecipientEmail string           `json:"recipient_email"`
}

// Notifier delivers an Event.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// LogNotifier writes events to the log.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("system", "notify")}
}

func (n *LogNotifier) Notify(ctx context.Context, ev Event) error {
	attrs := []any{
		"job_id", ev.JobID,
		"status", ev.Status,
		"recipient", ev.RecipientEmail,
	}
	if ev.Result != nil {
		attrs = append(attrs,
			"success", ev.Result.Success,
			"message", ev.Result.Message,
			"errors", len(ev.Result.Errors),
			"artifact_bytes", len(ev.Result.Data.Artifact),
		)
	}
	n.logger.InfoContext(ctx, "job notification", attrs...)
	return nil
}
