// Package jobs persists jobs and enforces their lifecycle graph.
package jobs

import (
	"context"

	"github.com/google/uuid"

	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/pagination"
)

// System is the job store. Every transition locks the row, checks the
// lifecycle graph and persists in one transaction.
type System interface {
	Handler() *Handler

	// Create inserts a job. An existing job with the same id is returned
	// with created false.
	Create(ctx context.Context, cmd CreateCommand) (job *Job, created bool, err error)
	Find(ctx context.Context, id uuid.UUID) (*Job, error)
	List(ctx context.Context, w pagination.Window, f Filters) (*pagination.Result[Job], error)

	Start(ctx context.Context, id uuid.UUID) (*Job, error)
	Complete(ctx context.Context, id uuid.UUID, result string) (*Job, error)
	Fail(ctx context.Context, id uuid.UUID, result, reason string) (*Job, error)
	Cancel(ctx context.Context, id uuid.UUID, result string) (*Job, error)
	// Retry moves a processing job to retrying, or to failed at the cap.
	// result is the run outcome kept for diagnostics.
	Retry(ctx context.Context, id uuid.UUID, result, reason string) (*Job, error)

	// RequestCancel flags a non-terminal job for cancellation.
	RequestCancel(ctx context.Context, id uuid.UUID) (*Job, error)
	// Heartbeat records that the job's run is alive and reports whether
	// cancellation was requested.
	Heartbeat(ctx context.Context, id uuid.UUID) (cancelRequested bool, err error)
	// MarkNotified sets notified_at once and reports whether this call set it.
	MarkNotified(ctx context.Context, id uuid.UUID) (bool, error)
}
