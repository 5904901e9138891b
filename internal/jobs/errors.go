package jobs

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("job not found")
	ErrDuplicate         = errors.New("job already exists")
	ErrInvalid           = errors.New("invalid job")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrTerminal          = errors.New("job already finished")
)

// MapHTTPStatus maps job errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrTerminal):
		return http.StatusConflict
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
