package jobs

import (
	"fmt"
	"slices"
)

// Status is a job's lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
	StatusRetrying   Status = "retrying"
)

// MaxRetries caps RetryCount.
const MaxRetries = 5

var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing},
	StatusProcessing: {StatusCompleted, StatusFailed, StatusCancelled, StatusRetrying},
	StatusRetrying:   {StatusProcessing},
}

// Statuses lists every status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusPending, StatusProcessing, StatusRetrying, StatusCompleted, StatusFailed, StatusCancelled}
}

// ParseStatus validates s as a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !slices.Contains(Statuses(), st) {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalid, s)
	}
	return st, nil
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// CanTransition reports whether from → to is an edge of the lifecycle graph.
func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}
