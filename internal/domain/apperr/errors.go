// Package apperr defines the error taxonomy shared by every operation of
// the back-office. Each sentinel marks a distinct caller-visible category so
// the transport layer can translate without inspecting messages.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when an input payload is malformed or out
	// of bounds. Always caller-correctable.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced application does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when an operation is attempted from a
	// status or step that does not permit it.
	ErrInvalidState = errors.New("invalid state")

	// ErrAuthorization is returned when the actor's role set does not
	// include a role authorized for the current step.
	ErrAuthorization = errors.New("not authorized")

	// ErrConflict is returned when a concurrent modification is detected at
	// the store boundary (lost compare-and-set).
	ErrConflict = errors.New("concurrent modification")
)

// Validationf wraps ErrValidation with a formatted detail message.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf wraps ErrNotFound with a formatted detail message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// InvalidStatef wraps ErrInvalidState with a formatted detail message.
func InvalidStatef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

// Authorizationf wraps ErrAuthorization with a formatted detail message.
func Authorizationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrAuthorization, fmt.Sprintf(format, args...))
}

// Conflictf wraps ErrConflict with a formatted detail message.
func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}
