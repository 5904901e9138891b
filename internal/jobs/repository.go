package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/pagination"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/query"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/repository"
)

var errMap = repository.ErrorMap{NotFound: ErrNotFound, Duplicate: ErrDuplicate, Invalid: ErrInvalid}

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
	now        func() time.Time
}

// New returns the PostgreSQL-backed job System.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "jobs"),
		pagination: pagination,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Job, bool, error) {
	if err := cmd.Validate(); err != nil {
		return nil, false, err
	}
	if cmd.Priority == 0 {
		cmd.Priority = 5
	}

	q := `
		INSERT INTO jobs(id, subject, sender, body, status, job_type, credentials, job_card, metadata, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
		RETURNING ` + returning

	args := []any{
		cmd.ID,
		cmd.Subject,
		cmd.Sender,
		cmd.Body,
		StatusPending,
		cmd.JobType,
		cmd.Credentials,
		cmd.JobCard,
		cmd.Metadata,
		cmd.Priority,
	}

	j, err := repository.QueryOne(ctx, r.db, q, args, scanJob)
	if errors.Is(err, sql.ErrNoRows) {
		existing, err := r.Find(ctx, cmd.ID)
		if err != nil {
			return nil, false, err
		}
		r.logger.Info("job already ingested", "job_id", cmd.ID, "status", existing.Status)
		return existing, false, nil
	}
	if err != nil {
		return nil, false, errMap.Map(err)
	}

	r.logger.Info("job created", "job_id", j.ID, "job_type", deref(j.JobType))
	return &j, true, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Job, error) {
	q := "SELECT " + projection.Columns() + " FROM " + projection.From() + " WHERE j.id = $1"

	j, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanJob)
	if err != nil {
		return nil, errMap.Map(err)
	}
	return &j, nil
}

func (r *repo) List(ctx context.Context, w pagination.Window, f Filters) (*pagination.Result[Job], error) {
	w.Normalize(r.pagination)

	qb := f.Apply(query.NewBuilder(projection, defaultSort))

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.QueryInt(ctx, r.db, countSQL, countArgs...)
	if err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}

	pageSQL, pageArgs := qb.BuildWindow(w.Limit, w.Offset)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanJob)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}

	result := pagination.NewResult(items, total, w)
	return &result, nil
}

func (r *repo) Start(ctx context.Context, id uuid.UUID) (*Job, error) {
	return r.transition(ctx, id, func(j *Job, now time.Time) error {
		return j.Begin(now)
	})
}

func (r *repo) Complete(ctx context.Context, id uuid.UUID, result string) (*Job, error) {
	return r.transition(ctx, id, func(j *Job, now time.Time) error {
		return j.Complete(result, now)
	})
}

func (r *repo) Fail(ctx context.Context, id uuid.UUID, result, reason string) (*Job, error) {
	return r.transition(ctx, id, func(j *Job, now time.Time) error {
		return j.Fail(result, reason, now)
	})
}

func (r *repo) Cancel(ctx context.Context, id uuid.UUID, result string) (*Job, error) {
	return r.transition(ctx, id, func(j *Job, now time.Time) error {
		return j.Cancel(result, now)
	})
}

func (r *repo) Retry(ctx context.Context, id uuid.UUID, result, reason string) (*Job, error) {
	return r.transition(ctx, id, func(j *Job, now time.Time) error {
		return j.Retry(result, reason, now)
	})
}

func (r *repo) RequestCancel(ctx context.Context, id uuid.UUID) (*Job, error) {
	q := `
		UPDATE jobs SET cancel_requested_at = COALESCE(cancel_requested_at, $2)
		WHERE id = $1 AND status NOT IN ($3, $4, $5)
		RETURNING ` + returning

	args := []any{id, r.now(), StatusCompleted, StatusFailed, StatusCancelled}

	j, err := repository.QueryOne(ctx, r.db, q, args, scanJob)
	if errors.Is(err, sql.ErrNoRows) {
		if _, findErr := r.Find(ctx, id); findErr != nil {
			return nil, findErr
		}
		return nil, ErrTerminal
	}
	if err != nil {
		return nil, errMap.Map(err)
	}

	r.logger.Info("job cancel requested", "job_id", id, "status", j.Status)
	return &j, nil
}

func (r *repo) Heartbeat(ctx context.Context, id uuid.UUID) (bool, error) {
	var requested bool
	err := r.db.QueryRowContext(ctx,
		"UPDATE jobs SET heartbeat_at = $2 WHERE id = $1 RETURNING cancel_requested_at IS NOT NULL",
		id, r.now(),
	).Scan(&requested)
	if err != nil {
		return false, errMap.Map(err)
	}
	return requested, nil
}

func (r *repo) MarkNotified(ctx context.Context, id uuid.UUID) (bool, error) {
	err := repository.ExecExpectOne(ctx, r.db,
		"UPDATE jobs SET notified_at = $2 WHERE id = $1 AND notified_at IS NULL",
		id, r.now(),
	)
	if errors.Is(err, sql.ErrNoRows) {
		if _, findErr := r.Find(ctx, id); findErr != nil {
			return false, findErr
		}
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("mark job notified: %w", err)
	}
	return true, nil
}

// transition loads the job under a row lock, applies fn and writes the
// mutable columns back.
func (r *repo) transition(ctx context.Context, id uuid.UUID, fn func(*Job, time.Time) error) (*Job, error) {
	selectSQL := "SELECT " + projection.Columns() + " FROM " + projection.From() + " WHERE j.id = $1 FOR UPDATE"

	updateSQL := `
		UPDATE jobs SET status = $2, result = $3, error = $4, started_at = $5, completed_at = $6,
			retry_count = $7, heartbeat_at = $8
		WHERE id = $1
		RETURNING ` + returning

	j, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Job, error) {
		j, err := repository.QueryOne(ctx, tx, selectSQL, []any{id}, scanJob)
		if err != nil {
			return Job{}, err
		}

		from := j.Status
		if err := fn(&j, r.now()); err != nil {
			return Job{}, err
		}

		updated, err := repository.QueryOne(ctx, tx, updateSQL, []any{
			j.ID, j.Status, j.Result, j.Error, j.StartedAt, j.CompletedAt, j.RetryCount, j.HeartbeatAt,
		}, scanJob)
		if err != nil {
			return Job{}, err
		}

		r.logger.Info("job transitioned",
			"job_id", id,
			"from", from,
			"to", updated.Status,
			"retry_count", updated.RetryCount,
		)
		return updated, nil
	})
	if err != nil {
		return nil, errMap.Map(err)
	}
	return &j, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
