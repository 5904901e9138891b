// Package workflow runs a fixed, ordered plan of automation steps for one
// job against a single session. A failing step is recorded and the run
// moves on to the next one.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/extractor"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/backoff"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/redact"
)

// Run is one job handed to the engine.
type Run struct {
	JobID   uuid.UUID
	JobType string
	Payload *extractor.Payload
}

// ResultData is the structured part of a Result.
type ResultData struct {
	Steps          []StepRecord `json:"steps"`
	CompletedSteps int          `json:"completed_steps"`
	TotalSteps     int          `json:"total_steps"`
	Artifact       []byte       `json:"artifact,omitempty"`
	ArtifactKey    string       `json:"artifact_key,omitempty"`
}

// Result is produced once per run.
type Result struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Errors  []string   `json:"errors"`
	Data    ResultData `json:"data"`
}

// Failure builds the Result reported for a run that never reached its steps.
func Failure(msg string, errs ...string) *Result {
	return &Result{
		Message: msg,
		Errors:  append([]string{}, errs...),
		Data:    ResultData{Steps: []StepRecord{}},
	}
}

// Engine executes plans.
type Engine struct {
	registry *Registry
	plans    Plans
	sessions SessionFactory
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

func NewEngine(registry *Registry, plans Plans, sessions SessionFactory, cfg Config, logger *slog.Logger) *Engine {
	return &Engine{
		registry: registry,
		plans:    plans,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger.With("system", "workflow"),
		now:      time.Now,
	}
}

// HasPlan reports whether jobType has automation.
func (e *Engine) HasPlan(jobType string) bool {
	_, ok := e.plans.Lookup(jobType)
	return ok
}

// Execute runs the plan for run.JobType. The session is opened once and
// closed on every path. A session failure returns ErrSessionFailed with a
// failure Result. Cancellation stops the step loop, still captures the
// artifact, and returns the partial Result with ErrCancelled.
func (e *Engine) Execute(ctx context.Context, run Run) (*Result, error) {
	plan, ok := e.plans.Lookup(run.JobType)
	if !ok {
		return Failure(fmt.Sprintf("no automation for job type %q", run.JobType)),
			fmt.Errorf("%w: %s", ErrNoPlan, run.JobType)
	}

	var secrets []string
	if run.Payload != nil {
		secrets = run.Payload.Secrets()
	}
	redactor := redact.New(secrets...)

	logger := e.logger.With("job_id", run.JobID, "job_type", run.JobType)

	if err := ctx.Err(); err != nil {
		return Failure("cancelled before start"), fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	session, err := e.sessions.Open(ctx, run.JobID)
	if err != nil {
		msg := redactor.Error(err)
		logger.Error("session open failed", "error", msg)
		return Failure("automation session could not be opened", msg),
			fmt.Errorf("%w: %s", ErrSessionFailed, msg)
	}
	defer e.close(ctx, session, logger)

	result := &Result{
		Errors: []string{},
		Data: ResultData{
			Steps:      make([]StepRecord, len(plan)),
			TotalSteps: len(plan),
		},
	}
	for i, spec := range plan {
		result.Data.Steps[i] = newRecord(spec)
	}

	cancelled := false
	for i, spec := range plan {
		if ctx.Err() != nil {
			cancelled = true
			break
		}

		rec := &result.Data.Steps[i]
		e.runStep(ctx, session, StepInput{JobID: run.JobID, Step: spec, Payload: run.Payload}, rec, redactor)

		if rec.State == StepCompleted {
			result.Data.CompletedSteps++
		} else {
			result.Errors = append(result.Errors, fmt.Sprintf("step %d (%s): %s", rec.Number, rec.Action, rec.Error))
		}
		logger.Info("step finished", "step", rec.Number, "action", rec.Action, "state", rec.State)

		if i < len(plan)-1 {
			if err := backoff.Sleep(ctx, e.cfg.PacingDuration()); err != nil {
				cancelled = true
				break
			}
		}
	}

	if ctx.Err() != nil {
		cancelled = true
	}

	artifact, err := e.capture(ctx, session)
	if err != nil {
		result.Errors = append(result.Errors, "capture artifact: "+redactor.Error(err))
		logger.Warn("artifact capture failed", "error", redactor.Error(err))
	}
	result.Data.Artifact = artifact

	if cancelled {
		result.Message = fmt.Sprintf("cancelled after %d of %d steps", countRun(result.Data.Steps), len(plan))
		logger.Info("workflow cancelled", "completed_steps", result.Data.CompletedSteps)
		return result, fmt.Errorf("%w: %w", ErrCancelled, context.Cause(ctx))
	}

	result.Success = true
	result.Message = fmt.Sprintf("completed %d of %d steps", result.Data.CompletedSteps, len(plan))
	logger.Info("workflow finished", "completed_steps", result.Data.CompletedSteps, "total_steps", len(plan))
	return result, nil
}

func (e *Engine) runStep(ctx context.Context, session Session, in StepInput, rec *StepRecord, redactor *redact.Redactor) {
	rec.State = StepRunning

	outcome, err := e.invoke(ctx, session, in)
	now := e.now().UTC()
	rec.CompletedAt = &now

	switch {
	case err != nil:
		rec.State = StepFailed
		rec.Error = redactor.Error(err)
	case !outcome.Success:
		rec.State = StepFailed
		rec.Error = redactor.String(outcome.Message)
		if rec.Error == "" {
			rec.Error = "step reported failure"
		}
	default:
		rec.State = StepCompleted
		rec.Completed = true
		rec.Message = redactor.String(outcome.Message)
	}
}

func (e *Engine) invoke(ctx context.Context, session Session, in StepInput) (out Outcome, err error) {
	exec, ok := e.registry.Lookup(in.Step.Action)
	if !ok {
		return Outcome{}, fmt.Errorf("no executor registered for action %q", in.Step.Action)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("step panicked: %v", r)
		}
	}()

	stepCtx, cancel := withTimeout(ctx, e.cfg.StepTimeoutDuration())
	defer cancel()

	return exec.Execute(stepCtx, session, in)
}

func (e *Engine) capture(ctx context.Context, session Session) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("screenshot panicked: %v", r)
		}
	}()

	captureCtx, cancel := withTimeout(context.WithoutCancel(ctx), e.cfg.CaptureTimeoutDuration())
	defer cancel()

	return session.Screenshot(captureCtx)
}

func (e *Engine) close(ctx context.Context, session Session, logger *slog.Logger) {
	closeCtx, cancel := withTimeout(context.WithoutCancel(ctx), e.cfg.CaptureTimeoutDuration())
	defer cancel()

	if err := session.Close(closeCtx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("session close failed", "error", err)
	}
}

// withTimeout leaves ctx unbounded when d is not positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func countRun(steps []StepRecord) int {
	n := 0
	for _, s := range steps {
		if s.State != StepNotStarted {
			n++
		}
	}
	return n
}
