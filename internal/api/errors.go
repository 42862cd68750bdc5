package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/memorygame/internal/api/shared"
	"github.com/phrazzld/memorygame/internal/conversion"
	"github.com/phrazzld/memorygame/internal/domain"
	"github.com/phrazzld/memorygame/internal/domain/game"
	"github.com/phrazzld/memorygame/internal/parser"
	"github.com/phrazzld/memorygame/internal/service"
	"github.com/phrazzld/memorygame/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes so that
// internal error types never reach clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Unsupported uploads
	case errors.Is(err, service.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Content that could not be turned into cards
	case errors.Is(err, parser.ErrParse):
		return http.StatusUnprocessableEntity

	// Game actions that do not fit the session's state
	case errors.Is(err, game.ErrNotInRound),
		errors.Is(err, game.ErrRoundNotComplete),
		errors.Is(err, game.ErrSessionComplete):
		return http.StatusConflict

	// Remote document conversion
	case errors.Is(err, conversion.ErrConversionFailed):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-facing message for err that does not
// leak internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *domain.ValidationError
	var parseErr *parser.ParseError

	switch {
	case errors.Is(err, service.ErrCardSetNotFound):
		return "Card set not found"
	case errors.Is(err, service.ErrCardNotFound):
		return "Card not found"
	case errors.Is(err, service.ErrSessionNotFound):
		return "Game session not found"
	case errors.Is(err, service.ErrNoActiveSet):
		return "No active card set"
	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, service.ErrUnsupportedFormat):
		return "Unsupported file format; upload a text, JSON or DOCX file"
	case errors.Is(err, service.ErrEmptyCardSet):
		return "The card set has no cards to play"
	case errors.As(err, &validationErr):
		return validationMessage(validationErr)

	case errors.Is(err, parser.ErrInvalidPattern):
		return "Invalid regular expression"
	case errors.Is(err, parser.ErrNoCaptureGroup):
		return "Each pattern needs a capture group"
	case errors.Is(err, parser.ErrInvalidJSON):
		return "The JSON file is not a list of cards"
	case errors.Is(err, parser.ErrNoCards):
		return "No cards found"
	case errors.As(err, &parseErr):
		return "The content could not be parsed"

	case errors.Is(err, game.ErrNotInRound):
		return "The round is complete; continue or stop the game"
	case errors.Is(err, game.ErrRoundNotComplete):
		return "The current round is still in progress"
	case errors.Is(err, game.ErrSessionComplete):
		return "The game is already over"

	case errors.Is(err, conversion.ErrConversionFailed):
		return "Failed to convert document"

	case errors.Is(err, store.ErrStorage):
		return "Failed to save card sets"

	default:
		return "An unexpected error occurred"
	}
}

// validationMessage renders a domain validation error. Its messages are
// written for users and carry no internal details.
func validationMessage(err *domain.ValidationError) string {
	if err.Field == "" || strings.Contains(err.Message, err.Field) {
		return err.Message
	}
	return fmt.Sprintf("%s %s", err.Field, err.Message)
}

// HandleAPIError maps err to a status code and safe message and writes the
// error response. fallback, when non-empty, replaces the message of 500s.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	var validationErr *domain.ValidationError
	var parseErr *parser.ParseError
	switch {
	case errors.As(err, &validationErr) && validationErr.Field != "":
		opts = append(opts, shared.WithField(validationErr.Field))
	case errors.As(err, &parseErr) && parseErr.Field != "":
		opts = append(opts, shared.WithField(parseErr.Field))
	}
	if errors.Is(err, conversion.ErrInvalidConfig) {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// HandleValidationError writes a 400 response for a request body that
// failed struct validation.
func HandleValidationError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
}

// SanitizeValidationError turns validator errors into a short user-friendly message.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "Validation error"
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag())))
	}
	return strings.Join(msgs, "; ")
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "gte", "lte":
		return "out of range"
	case "dive":
		return "invalid item"
	default:
		return "validation failed"
	}
}
