package pipeline_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/jobs"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/notify"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/workflow"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/lifecycle"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/storage"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memJobs is a jobs.System over a map, applying the same Job transitions
// the database repository does.
type memJobs struct {
	jobs.System

	mu   sync.Mutex
	rows map[uuid.UUID]*jobs.Job
}

func newMemJobs() *memJobs {
	return &memJobs{rows: make(map[uuid.UUID]*jobs.Job)}
}

func (m *memJobs) put(j *jobs.Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *j
	m.rows[j.ID] = &c
}

func (m *memJobs) get(id uuid.UUID) *jobs.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *m.rows[id]
	return &c
}

func (m *memJobs) Create(_ context.Context, cmd jobs.CreateCommand) (*jobs.Job, bool, error) {
	if err := cmd.Validate(); err != nil {
		return nil, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if j, ok := m.rows[cmd.ID]; ok {
		c := *j
		return &c, false, nil
	}
	j := &jobs.Job{
		ID:          cmd.ID,
		Subject:     cmd.Subject,
		Sender:      cmd.Sender,
		Body:        cmd.Body,
		Status:      jobs.StatusPending,
		JobType:     cmd.JobType,
		Credentials: cmd.Credentials,
		JobCard:     cmd.JobCard,
		Metadata:    cmd.Metadata,
		Priority:    5,
		CreatedAt:   time.Now().UTC(),
	}
	m.rows[j.ID] = j
	c := *j
	return &c, true, nil
}

func (m *memJobs) Find(_ context.Context, id uuid.UUID) (*jobs.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.rows[id]
	if !ok {
		return nil, jobs.ErrNotFound
	}
	c := *j
	return &c, nil
}

func (m *memJobs) transition(id uuid.UUID, fn func(*jobs.Job, time.Time) error) (*jobs.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.rows[id]
	if !ok {
		return nil, jobs.ErrNotFound
	}
	c := *j
	if err := fn(&c, time.Now().UTC()); err != nil {
		return nil, err
	}
	m.rows[id] = &c
	out := c
	return &out, nil
}

func (m *memJobs) Start(_ context.Context, id uuid.UUID) (*jobs.Job, error) {
	return m.transition(id, func(j *jobs.Job, now time.Time) error { return j.Begin(now) })
}

func (m *memJobs) Complete(_ context.Context, id uuid.UUID, result string) (*jobs.Job, error) {
	return m.transition(id, func(j *jobs.Job, now time.Time) error { return j.Complete(result, now) })
}

func (m *memJobs) Fail(_ context.Context, id uuid.UUID, result, reason string) (*jobs.Job, error) {
	return m.transition(id, func(j *jobs.Job, now time.Time) error { return j.Fail(result, reason, now) })
}

func (m *memJobs) Cancel(_ context.Context, id uuid.UUID, result string) (*jobs.Job, error) {
	return m.transition(id, func(j *jobs.Job, now time.Time) error { return j.Cancel(result, now) })
}

func (m *memJobs) Retry(_ context.Context, id uuid.UUID, result, reason string) (*jobs.Job, error) {
	return m.transition(id, func(j *jobs.Job, now time.Time) error { return j.Retry(result, reason, now) })
}

func (m *memJobs) RequestCancel(_ context.Context, id uuid.UUID) (*jobs.Job, error) {
	return m.transition(id, func(j *jobs.Job, now time.Time) error {
		if j.CancelRequestedAt == nil {
			j.CancelRequestedAt = &now
		}
		return nil
	})
}

func (m *memJobs) Heartbeat(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.rows[id]
	if !ok {
		return false, jobs.ErrNotFound
	}
	now := time.Now().UTC()
	j.HeartbeatAt = &now
	return j.CancelRequestedAt != nil, nil
}

func (m *memJobs) MarkNotified(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.rows[id]
	if !ok {
		return false, jobs.ErrNotFound
	}
	if j.NotifiedAt != nil {
		return false, nil
	}
	now := time.Now().UTC()
	j.NotifiedAt = &now
	return true, nil
}

// memStore is a storage.System over a map.
type memStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{blobs: make(map[string][]byte)}
}

func (s *memStore) Start(*lifecycle.Coordinator) error { return nil }

func (s *memStore) Key(jobID, name string) string { return "jobs/" + jobID + "/" + name }

func (s *memStore) Put(_ context.Context, key string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[key]; !ok {
		return storage.ErrNotFound
	}
	delete(s.blobs, key)
	return nil
}

func (s *memStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[key]
	return ok, nil
}

// mockRunner is a pipeline.Runner backed by a function.
type mockRunner struct {
	executeFn func(ctx context.Context, run workflow.Run) (*workflow.Result, error)
	calls     int
}

func (m *mockRunner) Execute(ctx context.Context, run workflow.Run) (*workflow.Result, error) {
	m.calls++
	return m.executeFn(ctx, run)
}

// mockNotifier records events.
type mockNotifier struct {
	mu       sync.Mutex
	events   []notify.Event
	notifyFn func() error
}

func (m *mockNotifier) Notify(_ context.Context, ev notify.Event) error {
	if m.notifyFn != nil {
		if err := m.notifyFn(); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}
