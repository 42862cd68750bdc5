package parser

import (
	"errors"
	"fmt"
)

// Parser errors
var (
	// ErrParse is the base error for all parsing failures.
	ErrParse = errors.New("parse error")

	// ErrInvalidPattern indicates a pattern that does not compile.
	ErrInvalidPattern = fmt.Errorf("%w: invalid pattern", ErrParse)

	// ErrNoCaptureGroup indicates a pattern with nothing to extract.
	ErrNoCaptureGroup = fmt.Errorf("%w: pattern has no capture group", ErrParse)

	// ErrNoCards indicates that content produced zero usable front/back pairs.
	ErrNoCards = fmt.Errorf("%w: no cards found", ErrParse)

	// ErrInvalidJSON indicates malformed JSON card content.
	ErrInvalidJSON = fmt.Errorf("%w: invalid JSON", ErrParse)
)

// ParseError describes a parsing failure with context.
type ParseError struct {
	Field   string // Which input failed, e.g. "frontRegex"
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface for ParseError.
func (e *ParseError) Error() string {
	prefix := "parse error"
	if e.Field != "" {
		prefix = fmt.Sprintf("parse error in %s", e.Field)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the wrapped error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports ErrParse as a match.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// NewParseError creates a new ParseError.
func NewParseError(field, message string, err error) *ParseError {
	return &ParseError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
