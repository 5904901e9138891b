package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/extractor"
)

// Action identifies a step executor in the Registry.
type Action string

// StepState is the per-step state machine.
type StepState string

const (
	StepNotStarted StepState = "not_started"
	StepRunning    StepState = "running"
	StepCompleted  StepState = "completed"
	StepFailed     StepState = "failed"
)

// StepSpec is one entry of a fixed plan.
type StepSpec struct {
	Number      int    `json:"number"`
	Description string `json:"description"`
	Action      Action `json:"action"`
}

// StepRecord is the recorded outcome of one planned step. It leaves
// not_started exactly once.
type StepRecord struct {
	Number      int        `json:"number"`
	Description string     `json:"description"`
	Action      Action     `json:"action"`
	Completed   bool       `json:"completed"`
	State       StepState  `json:"state"`
	Message     string     `json:"message,omitempty"`
	Error       string     `json:"error,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func newRecord(spec StepSpec) StepRecord {
	return StepRecord{
		Number:      spec.Number,
		Description: spec.Description,
		Action:      spec.Action,
		State:       StepNotStarted,
	}
}

// StepInput is what an executor sees of the run.
type StepInput struct {
	JobID   uuid.UUID
	Step    StepSpec
	Payload *extractor.Payload
}

// Outcome is an executor's report. Success false marks the step failed
// with Message as its error.
type Outcome struct {
	Success bool
	Message string
}

// Succeeded returns a successful Outcome.
func Succeeded(msg string) Outcome {
	return Outcome{Success: true, Message: msg}
}

// Skipped returns an Outcome for a step that had nothing to do.
func Skipped(msg string) Outcome {
	return Outcome{Success: true, Message: "skipped: " + msg}
}

// StepExecutor performs one action against the run's session.
type StepExecutor interface {
	Execute(ctx context.Context, s Session, in StepInput) (Outcome, error)
}

// StepFunc adapts a function to StepExecutor.
type StepFunc func(ctx context.Context, s Session, in StepInput) (Outcome, error)

func (f StepFunc) Execute(ctx context.Context, s Session, in StepInput) (Outcome, error) {
	return f(ctx, s, in)
}
