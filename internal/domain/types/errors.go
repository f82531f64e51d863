package types

import (
	"errors"
	"fmt"
)

var (
	ErrSubmission         = errors.New("ride submission failed")
	ErrLookup             = errors.New("ride lookup failed")
	ErrAcceptanceConflict = errors.New("ride was already taken by another driver")
	ErrTransitionRejected = errors.New("status transition rejected")
	ErrTransport          = errors.New("push channel failure")
	ErrPermissionDenied   = errors.New("location permission denied")
	ErrLocationTimeout    = errors.New("location unavailable")

	ErrRideNotFound          = errors.New("ride not found")
	ErrRideCannotBeCancelled = errors.New("ride cannot be cancelled")
	ErrDriverNotFound        = errors.New("driver not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrNotDriver             = errors.New("session does not belong to a driver")
	ErrSessionClosed         = errors.New("driver session is closed")
	ErrDatabaseFailed        = errors.New("database operation failed")
)

// SubmissionError carries the store's message for a rejected booking.
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	return e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

func (e *SubmissionError) Is(target error) bool {
	return target == ErrSubmission
}

// NewSubmissionError keeps msg verbatim so the requester sees what the store said.
func NewSubmissionError(msg string, err error) *SubmissionError {
	return &SubmissionError{Message: msg, Err: err}
}

// LookupError is returned when a ride status query finds nothing or fails.
type LookupError struct {
	RideID  string
	Message string
	Err     error
}

func (e *LookupError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("ride %s not found", e.RideID)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

func (e *LookupError) Is(target error) bool {
	return target == ErrLookup
}

// NotFound reports whether the lookup failed for lack of a matching ride
// rather than a store failure.
func (e *LookupError) NotFound() bool {
	return e.Err == nil || errors.Is(e.Err, ErrRideNotFound)
}
