package domain

import "errors"

var (
	// ErrValidation marks malformed input: bad time ranges, missing reasons,
	// sub-threshold timer durations.
	ErrValidation = errors.New("validation error")

	// ErrConflict marks a uniqueness violation such as a second active timer.
	ErrConflict = errors.New("conflict")

	// ErrPermission marks an actor whose role or assignment does not allow the operation.
	ErrPermission = errors.New("permission denied")

	// ErrNotFound marks a missing task, timesheet or timer session.
	ErrNotFound = errors.New("not found")

	// ErrState marks a transition that is illegal from the current status,
	// or an edit against a locked timesheet.
	ErrState = errors.New("invalid state")
)

// ErrorKind names an error class for transport layers.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindConflict   ErrorKind = "conflict"
	KindPermission ErrorKind = "permission"
	KindNotFound   ErrorKind = "not_found"
	KindState      ErrorKind = "state"
	KindInternal   ErrorKind = "internal"
)

// KindOf classifies err by the sentinel it wraps.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrPermission):
		return KindPermission
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrState):
		return KindState
	default:
		return KindInternal
	}
}
