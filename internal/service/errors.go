package service

import (
	"fmt"

	"github.com/phrazzld/memorygame/internal/domain"
	"github.com/phrazzld/memorygame/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in ServiceError with the failing operation
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrCardSetNotFound indicates an operation referenced a card set id that does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrCardSetNotFound = fmt.Errorf("card set %w", store.ErrNotFound)

	// ErrCardNotFound indicates a card id does not exist in the referenced set.
	ErrCardNotFound = fmt.Errorf("card %w", store.ErrNotFound)

	// ErrSessionNotFound indicates a game session does not exist or has expired.
	ErrSessionNotFound = fmt.Errorf("game session %w", store.ErrNotFound)

	// ErrUnsupportedFormat indicates an import file whose format cannot be handled.
	// API layer should map this to HTTP 400 Bad Request.
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported file format", domain.ErrValidation)

	// ErrEmptyCardSet indicates a game was requested for a set without cards.
	ErrEmptyCardSet = fmt.Errorf("%w: card set has no cards", domain.ErrValidation)

	// ErrNoActiveSet indicates that no card set is currently selected.
	ErrNoActiveSet = fmt.Errorf("active card set %w", store.ErrNotFound)
)

// ServiceError wraps errors from the services with additional context.
// This allows consumers to differentiate between different types of service errors
// using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "add_cards", "import")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
