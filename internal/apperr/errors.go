// Package apperr defines the error taxonomy shared across the gateway:
// what is recoverable by the candidate, what kills a session, and what is
// merely "nothing here yet".
package apperr

import "errors"

// ValidationError reports invalid candidate input (blank answer). The
// candidate corrects and retries; no session state changes.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewValidation creates a ValidationError.
func NewValidation(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

// RemoteError reports a failed platform call (non-2xx or transport failure).
// The affected item stays unsubmitted; the candidate may retry manually.
type RemoteError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "platform request failed"
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// SessionLoadError reports a failed initial fetch of items or time budget.
// Fatal to the session: the flow must be closed and the candidate informed.
type SessionLoadError struct {
	Err error
}

func (e *SessionLoadError) Error() string {
	return "session load failed: " + e.Err.Error()
}

func (e *SessionLoadError) Unwrap() error {
	return e.Err
}

// ErrNotFound signals that no matching resource (typically an active
// session) exists. Reported, not fatal to the surrounding application.
var ErrNotFound = errors.New("not found")

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsRemote reports whether err is a RemoteError.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

// IsSessionLoad reports whether err is a SessionLoadError.
func IsSessionLoad(err error) bool {
	var se *SessionLoadError
	return errors.As(err, &se)
}
