package apperrors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrPersistence         = errors.New("persistence failure")
	ErrNoActiveSession     = errors.New("no active session")
	ErrActiveSessionExists = errors.New("active session already exists")
)

// Retryable reports whether err came from the store rather than from the
// caller, so repeating the same request may succeed.
func Retryable(err error) bool {
	return errors.Is(err, ErrPersistence)
}
