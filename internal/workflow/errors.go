package workflow

import "errors"

var (
	ErrNoPlan        = errors.New("no workflow plan for job type")
	ErrSessionFailed = errors.New("automation session failed")
	ErrCancelled     = errors.New("workflow cancelled")
	ErrDuplicateStep = errors.New("step action already registered")
	ErrInvalidPlan   = errors.New("invalid workflow plan")
)
