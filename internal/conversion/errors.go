package conversion

import (
	"errors"
	"fmt"
)

// Common errors returned by the conversion package
var (
	// ErrConversionFailed is the base error for every conversion failure.
	ErrConversionFailed = errors.New("document conversion failed")

	// ErrUnexpectedStatus is returned when the service answers with a non-2xx status.
	ErrUnexpectedStatus = fmt.Errorf("%w: unexpected status", ErrConversionFailed)

	// ErrEmptyResult is returned when the service returns no text.
	ErrEmptyResult = fmt.Errorf("%w: empty result", ErrConversionFailed)

	// ErrResponseTooLarge is returned when the converted text exceeds the
	// client's size limit.
	ErrResponseTooLarge = fmt.Errorf("%w: response too large", ErrConversionFailed)

	// ErrInvalidResponse is returned when the response body cannot be decoded.
	ErrInvalidResponse = fmt.Errorf("%w: invalid response", ErrConversionFailed)

	// ErrTransport is returned for network failures and timeouts.
	ErrTransport = fmt.Errorf("%w: transport error", ErrConversionFailed)

	// ErrInvalidConfig is returned when the converter configuration is invalid.
	ErrInvalidConfig = errors.New("invalid converter configuration")
)

// Error carries context about a failed conversion.
type Error struct {
	Filename   string // The document being converted
	StatusCode int    // HTTP status, zero when no response was received
	Message    string // Error message
	Err        error  // Underlying error, always wrapping ErrConversionFailed
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("convert %q: %s", e.Filename, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a conversion Error.
func NewError(filename string, statusCode int, message string, err error) *Error {
	return &Error{
		Filename:   filename,
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}
