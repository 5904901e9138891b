package workflow

import (
	"context"

	"github.com/google/uuid"
)

// Session is the job-scoped automation context. It is driven by one run
// at a time and is not safe for concurrent use.
type Session interface {
	Navigate(ctx context.Context, target string) error
	Fill(ctx context.Context, field, value string) error
	Click(ctx context.Context, target string) error
	// Screenshot captures the current view as PNG bytes.
	Screenshot(ctx context.Context) ([]byte, error)
	Close(ctx context.Context) error
}

// SessionFactory opens one Session per run.
type SessionFactory interface {
	Open(ctx context.Context, jobID uuid.UUID) (Session, error)
}

// SessionFactoryFunc adapts a function to SessionFactory.
type SessionFactoryFunc func(ctx context.Context, jobID uuid.UUID) (Session, error)

func (f SessionFactoryFunc) Open(ctx context.Context, jobID uuid.UUID) (Session, error) {
	return f(ctx, jobID)
}
