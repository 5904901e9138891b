package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/extractor"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/redact"
)

// Column limits enforced by the jobs table.
const (
	MaxSubjectLen  = 255
	MaxSenderLen   = 500
	MaxMetadataLen = 1000
)

// Job is one inbound request tracked from ingestion to notification.
type Job struct {
	ID                uuid.UUID  `json:"id"`
	Subject           string     `json:"subject"`
	Sender            string     `json:"sender"`
	Body              string     `json:"body"`
	Status            Status     `json:"status"`
	JobType           *string    `json:"job_type,omitempty"`
	Credentials       *string    `json:"-"`
	JobCard           *string    `json:"job_card,omitempty"`
	Result            *string    `json:"result,omitempty"`
	Error             *string    `json:"error,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	StartedAt         *time.Time `json:"started_at,omitempty"`
	HeartbeatAt       *time.Time `json:"heartbeat_at,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	RetryCount        int        `json:"retry_count"`
	Priority          int        `json:"priority"`
	Metadata          *string    `json:"metadata,omitempty"`
	CancelRequestedAt *time.Time `json:"cancel_requested_at,omitempty"`
	NotifiedAt        *time.Time `json:"notified_at,omitempty"`
}

// Redacted returns a copy of j for API responses. Passwords held in the
// credentials column and inline password assignments are masked in the
// body and error text.
func (j *Job) Redacted() *Job {
	c := *j
	r := redact.New(j.secrets()...)
	c.Body = r.String(j.Body)
	if j.Error != nil {
		e := r.String(*j.Error)
		c.Error = &e
	}
	return &c
}

func (j *Job) secrets() []string {
	if j.Credentials == nil {
		return nil
	}
	var p extractor.Payload
	if err := json.Unmarshal([]byte(*j.Credentials), &p); err != nil {
		return nil
	}
	return p.Secrets()
}

func (j *Job) move(to Status) error {
	if !CanTransition(j.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, to)
	}
	j.Status = to
	return nil
}

// Begin moves a pending or retrying job to processing.
func (j *Job) Begin(now time.Time) error {
	if err := j.move(StatusProcessing); err != nil {
		return err
	}
	j.StartedAt = &now
	j.HeartbeatAt = &now
	return nil
}

// Stale reports whether a processing job has shown no sign of life for
// longer than after. Only stale runs are treated as abandoned.
func (j *Job) Stale(now time.Time, after time.Duration) bool {
	last := j.CreatedAt
	switch {
	case j.HeartbeatAt != nil:
		last = *j.HeartbeatAt
	case j.StartedAt != nil:
		last = *j.StartedAt
	}
	return now.Sub(last) > after
}

// Complete records a successful run.
func (j *Job) Complete(result string, now time.Time) error {
	return j.finish(StatusCompleted, result, "", now)
}

// Fail records a failed run.
func (j *Job) Fail(result, reason string, now time.Time) error {
	return j.finish(StatusFailed, result, reason, now)
}

// Cancel records an operator-cancelled run.
func (j *Job) Cancel(result string, now time.Time) error {
	return j.finish(StatusCancelled, result, "", now)
}

// Retry schedules another attempt, keeping result as the last run's
// outcome. A job that already used MaxRetries attempts fails with result
// instead and RetryCount stays at the cap.
func (j *Job) Retry(result, reason string, now time.Time) error {
	if j.Status != StatusProcessing {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, StatusRetrying)
	}
	if j.RetryCount >= MaxRetries {
		return j.Fail(result, fmt.Sprintf("%s (retry limit %d reached)", reason, MaxRetries), now)
	}
	if err := j.move(StatusRetrying); err != nil {
		return err
	}
	j.RetryCount++
	if result != "" {
		j.Result = &result
	}
	j.Error = optional(reason)
	return nil
}

func (j *Job) finish(to Status, result, reason string, now time.Time) error {
	if err := j.move(to); err != nil {
		return err
	}
	j.CompletedAt = &now
	if result != "" {
		j.Result = &result
	}
	j.Error = optional(reason)
	return nil
}

// CreateCommand holds the fields of a new job.
type CreateCommand struct {
	ID          uuid.UUID
	Subject     string
	Sender      string
	Body        string
	JobType     *string
	Credentials *string
	JobCard     *string
	Metadata    *string
	Priority    int
}

// Validate checks required fields and column limits.
func (c *CreateCommand) Validate() error {
	switch {
	case c.ID == uuid.Nil:
		return fmt.Errorf("%w: id required", ErrInvalid)
	case c.Subject == "":
		return fmt.Errorf("%w: subject required", ErrInvalid)
	case c.Sender == "":
		return fmt.Errorf("%w: sender required", ErrInvalid)
	case c.Body == "":
		return fmt.Errorf("%w: body required", ErrInvalid)
	case len([]rune(c.Subject)) > MaxSubjectLen:
		return fmt.Errorf("%w: subject exceeds %d characters", ErrInvalid, MaxSubjectLen)
	case len([]rune(c.Sender)) > MaxSenderLen:
		return fmt.Errorf("%w: sender exceeds %d characters", ErrInvalid, MaxSenderLen)
	case c.Metadata != nil && len([]rune(*c.Metadata)) > MaxMetadataLen:
		return fmt.Errorf("%w: metadata exceeds %d characters", ErrInvalid, MaxMetadataLen)
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
