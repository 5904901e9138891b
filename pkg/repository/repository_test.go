package repository_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/repository"
)

var (
	errNotFound  = errors.New("job not found")
	errDuplicate = errors.New("job already exists")
	errInvalid   = errors.New("invalid job")
)

func TestErrorMap(t *testing.T) {
	m := repository.ErrorMap{NotFound: errNotFound, Duplicate: errDuplicate, Invalid: errInvalid}
	other := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, errNotFound},
		{"wrapped no rows", fmt.Errorf("find job: %w", sql.ErrNoRows), errNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, errDuplicate},
		{"check violation", &pgconn.PgError{Code: "23514", ConstraintName: "jobs_retry_count_check"}, errInvalid},
		{"other", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Map(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("Map(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorMapNil(t *testing.T) {
	if got := (repository.ErrorMap{NotFound: errNotFound}).Map(nil); got != nil {
		t.Errorf("Map(nil) = %v, want nil", got)
	}
}

func TestErrorMapUnsetPassesThrough(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23514"}
	got := repository.MapError(pgErr, errNotFound, errDuplicate)
	if got != pgErr {
		t.Errorf("check violation without Invalid should pass through, got %v", got)
	}
}

func TestMapErrorForeignKeyPassesThrough(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23503"}
	if got := repository.MapError(pgErr, errNotFound, errDuplicate); got != pgErr {
		t.Errorf("MapError(23503) = %v, want passthrough", got)
	}
}
