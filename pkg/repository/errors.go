package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// ErrorMap names the domain errors that database failures translate to.
// A nil field leaves the matching database error unchanged.
type ErrorMap struct {
	NotFound  error
	Duplicate error
	Invalid   error
}

// Map translates err: sql.ErrNoRows to NotFound, a unique violation to
// Duplicate and a check constraint violation to Invalid. The constraint
// name is kept in the wrapped message for Invalid.
func (m ErrorMap) Map(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) && m.NotFound != nil {
		return m.NotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation && m.Duplicate != nil:
			return m.Duplicate
		case pgErr.Code == pgCheckViolation && m.Invalid != nil:
			return errors.Join(m.Invalid, errors.New(pgErr.ConstraintName))
		}
	}

	return err
}

// MapError is shorthand for ErrorMap{NotFound: notFoundErr, Duplicate: duplicateErr}.Map(err).
func MapError(err error, notFoundErr, duplicateErr error) error {
	return ErrorMap{NotFound: notFoundErr, Duplicate: duplicateErr}.Map(err)
}
