// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyContent is returned when required text is empty after trimming.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrTextTooLong is returned when card text exceeds the configured length limit.
	ErrTextTooLong = errors.New("text exceeds maximum length")

	// ErrInvalidID is returned when an ID is empty or malformed.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidScore is returned when a score falls outside 0-100.
	ErrInvalidScore = errors.New("score must be between 0 and 100")
)

// ValidationError describes a single field that failed validation.
// It always matches ErrValidation via errors.Is, as well as the wrapped cause.
type ValidationError struct {
	Field   string // The offending field (e.g. "front", "name")
	Message string // Human readable description
	Err     error  // Specific cause such as ErrEmptyContent
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Unwrap returns the specific cause.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports ErrValidation as a match so callers can classify the error
// without knowing the specific cause.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
