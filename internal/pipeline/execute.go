package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/delivery"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/jobs"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/workflow"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/backoff"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/broker"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/storage"
)

var errCancelRequested = errors.New("cancellation requested")

// Runner executes one workflow run.
type Runner interface {
	Execute(ctx context.Context, run workflow.Run) (*workflow.Result, error)
}

// Executor drives jobs from the execution channel through the workflow
// engine to a terminal or retrying status.
type Executor struct {
	jobs   jobs.System
	runner Runner
	store  storage.System
	coord  *delivery.Coordinator
	retry  backoff.Strategy
	poll   time.Duration
	stale  time.Duration
	name   string
	logger *slog.Logger
	now    func() time.Time
}

// NewExecutor creates an Executor. store may be nil, in which case
// artifacts are not persisted.
func NewExecutor(js jobs.System, runner Runner, store storage.System, coord *delivery.Coordinator, cfg Config, logger *slog.Logger) *Executor {
	return &Executor{
		jobs:   js,
		runner: runner,
		store:  store,
		coord:  coord,
		retry:  cfg.RetryStrategy(),
		poll:   cfg.CancelPollDuration(),
		stale:  cfg.StaleAfterDuration(),
		name:   cfg.ArtifactName,
		logger: logger.With("stage", "execute"),
		now:    time.Now,
	}
}

// Handle is the job-execution channel handler.
func (e *Executor) Handle(ctx context.Context, env broker.Envelope) error {
	msg, err := delivery.Decode[ExecuteMessage](env)
	if err != nil {
		return err
	}
	return e.Execute(ctx, msg.JobID)
}

// Execute runs the job once. Redelivered messages for finished jobs only
// make sure the notification was queued. A processing job whose run still
// sends heartbeats is left alone and the message stays pending.
func (e *Executor) Execute(ctx context.Context, id uuid.UUID) error {
	logger := e.logger.With("job_id", id)
	settle := context.WithoutCancel(ctx)

	job, err := e.jobs.Find(ctx, id)
	if err != nil {
		return fmt.Errorf("find job: %w", err)
	}

	switch {
	case job.Status.Terminal():
		if job.NotifiedAt == nil {
			return e.notify(settle, job.ID)
		}
		logger.Info("job already finished", "status", job.Status)
		return nil
	case job.Status == jobs.StatusProcessing && !job.Stale(e.now(), e.stale):
		logger.Info("job is running in another slot")
		return fmt.Errorf("%w: job %s is processing", delivery.ErrInFlight, id)
	case job.Status == jobs.StatusProcessing:
		logger.Warn("job run went silent, retrying", "heartbeat_at", job.HeartbeatAt)
		job, err = e.jobs.Retry(settle, id, "", "run interrupted")
		if err != nil {
			return fmt.Errorf("retry interrupted job: %w", err)
		}
		return e.after(ctx, job, logger)
	}

	job, err = e.jobs.Start(ctx, id)
	if err != nil {
		return fmt.Errorf("start job: %w", err)
	}

	if job.CancelRequestedAt != nil {
		job, err = e.jobs.Cancel(settle, id, encodeResult(workflow.Failure("cancelled before start")))
		if err != nil {
			return fmt.Errorf("cancel job: %w", err)
		}
		return e.after(ctx, job, logger)
	}

	jobType := ""
	if job.JobType != nil {
		jobType = *job.JobType
	}
	payload, err := joinPayload(job)
	if err != nil {
		job, err = e.jobs.Fail(settle, id, encodeResult(workflow.Failure("stored payload unreadable")), err.Error())
		if err != nil {
			return fmt.Errorf("fail job: %w", err)
		}
		return e.after(ctx, job, logger)
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	stop := e.watch(runCtx, id, cancel, logger)

	result, runErr := e.runner.Execute(runCtx, workflow.Run{JobID: id, JobType: jobType, Payload: payload})
	stop()
	if result == nil {
		result = workflow.Failure("workflow produced no result")
	}

	e.storeArtifact(settle, id, result, logger)
	encoded := encodeResult(result)

	switch {
	case runErr == nil:
		job, err = e.jobs.Complete(settle, id, encoded)
	case errors.Is(runErr, workflow.ErrCancelled):
		job, err = e.jobs.Cancel(settle, id, encoded)
	case errors.Is(runErr, workflow.ErrSessionFailed):
		job, err = e.jobs.Retry(settle, id, encoded, runErr.Error())
	default:
		job, err = e.jobs.Fail(settle, id, encoded, runErr.Error())
	}
	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}

	logger.Info("job run finished", "status", job.Status, "completed_steps", result.Data.CompletedSteps)
	return e.after(ctx, job, logger)
}

// after queues the follow-up for job: a notification when terminal, a
// delayed re-run when retrying.
func (e *Executor) after(ctx context.Context, job *jobs.Job, logger *slog.Logger) error {
	settle := context.WithoutCancel(ctx)

	if job.Status.Terminal() {
		return e.notify(settle, job.ID)
	}
	if job.Status != jobs.StatusRetrying {
		return nil
	}

	delay := e.retry.Delay(job.RetryCount)
	logger.Info("job scheduled for retry", "attempt", job.RetryCount, "max_retries", jobs.MaxRetries, "delay", delay)
	if err := backoff.Sleep(ctx, delay); err != nil {
		logger.Warn("retry delay interrupted, requeueing now")
	}

	msg := ExecuteMessage{JobID: job.ID, Attempt: job.RetryCount}
	if _, err := e.coord.Enqueue(settle, delivery.ChannelExecution, job.ID.String(), msg); err != nil {
		return fmt.Errorf("requeue job: %w", err)
	}
	return nil
}

func (e *Executor) notify(ctx context.Context, id uuid.UUID) error {
	_, err := e.coord.Enqueue(ctx, delivery.ChannelNotifications, id.String(), NotifyMessage{JobID: id})
	if err != nil {
		return fmt.Errorf("queue notification: %w", err)
	}
	return nil
}

// watch sends the job heartbeat every poll until the returned stop is
// called, cancelling the run when an operator asks.
func (e *Executor) watch(ctx context.Context, id uuid.UUID, cancel context.CancelCauseFunc, logger *slog.Logger) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		if e.poll <= 0 {
			return
		}
		t := time.NewTicker(e.poll)
		defer t.Stop()

		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-t.C:
				requested, err := e.jobs.Heartbeat(ctx, id)
				if err != nil {
					logger.Warn("job heartbeat failed", "error", err)
					continue
				}
				if requested {
					logger.Info("cancellation requested")
					cancel(errCancelRequested)
					return
				}
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}

// storeArtifact uploads the run artifact and records its key on result.
func (e *Executor) storeArtifact(ctx context.Context, id uuid.UUID, result *workflow.Result, logger *slog.Logger) {
	if e.store == nil || len(result.Data.Artifact) == 0 {
		return
	}
	key := e.store.Key(id.String(), e.name)
	if err := e.store.Put(ctx, key, result.Data.Artifact, "image/png"); err != nil {
		logger.Warn("artifact upload failed", "error", err)
		result.Errors = append(result.Errors, "store artifact: "+err.Error())
		return
	}
	result.Data.ArtifactKey = key
}

// encodeResult serializes result for the jobs table. Artifact bytes are
// left out once the artifact has a storage key.
func encodeResult(result *workflow.Result) string {
	stored := *result
	if stored.Data.ArtifactKey != "" {
		stored.Data.Artifact = nil
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return `{"success":false,"message":"result could not be encoded","errors":[],"data":{"steps":[]}}`
	}
	return string(data)
}
