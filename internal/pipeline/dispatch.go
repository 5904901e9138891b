package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/delivery"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/jobs"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/notify"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/workflow"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/backoff"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/broker"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/storage"
)

var ErrNotTerminal = errors.New("job is not in a terminal status")

// Dispatcher emits the notification for terminal jobs, once per job.
type Dispatcher struct {
	jobs     jobs.System
	store    storage.System
	notifier notify.Notifier
	coord    *delivery.Coordinator
	retry    backoff.Strategy
	attempts int
	logger   *slog.Logger
}

// NewDispatcher creates a Dispatcher. store may be nil, in which case
// events carry only artifacts kept inline in the result.
func NewDispatcher(js jobs.System, store storage.System, n notify.Notifier, coord *delivery.Coordinator, cfg Config, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		jobs:     js,
		store:    store,
		notifier: n,
		coord:    coord,
		retry:    cfg.RetryStrategy(),
		attempts: max(cfg.NotifyAttempts, 1),
		logger:   logger.With("stage", "notify"),
	}
}

// Handle is the notifications channel handler. A delivery failure is
// requeued with backoff until the attempt budget is spent; any other
// error rejects the envelope.
func (d *Dispatcher) Handle(ctx context.Context, env broker.Envelope) error {
	msg, err := delivery.Decode[NotifyMessage](env)
	if err != nil {
		return err
	}

	err = d.Dispatch(ctx, msg.JobID)
	if err == nil || !errors.Is(err, notify.ErrDelivery) {
		return err
	}
	return d.requeue(ctx, msg, err)
}

func (d *Dispatcher) requeue(ctx context.Context, msg NotifyMessage, cause error) error {
	attempt := msg.Attempt + 1
	logger := d.logger.With("job_id", msg.JobID, "attempt", attempt, "max_attempts", d.attempts)

	if attempt >= d.attempts {
		logger.Error("notification attempts exhausted", "error", cause)
		return fmt.Errorf("%w (gave up after %d attempts)", cause, attempt)
	}

	delay := d.retry.Delay(attempt)
	logger.Warn("notification failed, retrying", "error", cause, "delay", delay)
	if err := backoff.Sleep(ctx, delay); err != nil {
		logger.Warn("retry delay interrupted, requeueing now")
	}

	next := NotifyMessage{JobID: msg.JobID, Attempt: attempt}
	if _, err := d.coord.Enqueue(context.WithoutCancel(ctx), delivery.ChannelNotifications, msg.JobID.String(), next); err != nil {
		return fmt.Errorf("requeue notification: %w", err)
	}
	return nil
}

// Dispatch notifies the requester of the job's outcome unless that
// already happened.
func (d *Dispatcher) Dispatch(ctx context.Context, id uuid.UUID) error {
	logger := d.logger.With("job_id", id)

	job, err := d.jobs.Find(ctx, id)
	if err != nil {
		return fmt.Errorf("find job: %w", err)
	}
	if !job.Status.Terminal() {
		return fmt.Errorf("%w: %s", ErrNotTerminal, job.Status)
	}
	if job.NotifiedAt != nil {
		logger.Info("notification already sent")
		return nil
	}

	ev := notify.Event{
		JobID:          job.ID,
		Status:         job.Status,
		Result:         d.result(ctx, job, logger),
		RecipientEmail: recipient(job.Sender),
	}

	if err := d.notifier.Notify(ctx, ev); err != nil {
		return fmt.Errorf("notify: %w", err)
	}

	marked, err := d.jobs.MarkNotified(context.WithoutCancel(ctx), id)
	if err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	if !marked {
		logger.Warn("job was notified concurrently")
	}
	return nil
}

// result rebuilds the run result stored on job, reattaching its
// artifact. Jobs that never produced one get a failure result carrying
// the job error.
func (d *Dispatcher) result(ctx context.Context, job *jobs.Job, logger *slog.Logger) *workflow.Result {
	var result *workflow.Result
	if job.Result != nil {
		var r workflow.Result
		if err := json.Unmarshal([]byte(*job.Result), &r); err != nil {
			logger.Warn("stored result unreadable", "error", err)
		} else {
			result = &r
		}
	}
	if result == nil {
		result = workflow.Failure(string(job.Status))
	}
	if result.Errors == nil {
		result.Errors = []string{}
	}
	if job.Error != nil && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, *job.Error)
	}

	key := result.Data.ArtifactKey
	if key != "" && len(result.Data.Artifact) == 0 && d.store != nil {
		data, err := d.store.Get(ctx, key)
		if err != nil {
			logger.Warn("artifact unavailable", "key", key, "error", err)
		} else {
			result.Data.Artifact = data
		}
	}
	return result
}
