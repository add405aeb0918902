package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInvalidStatus     = errors.New("unknown incident status")
	ErrIncidentNotFound  = errors.New("incident not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// InvalidTransitionError carries the conflicting statuses so callers can
// render a meaningful message. It unwraps to ErrInvalidTransition for
// errors.Is discrimination.
type InvalidTransitionError struct {
	Current   string
	Requested string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.Current, e.Requested)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
