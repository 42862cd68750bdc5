package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/memorygame/internal/api/shared"
	"github.com/phrazzld/memorygame/internal/domain"
)

// maxIDLength bounds IDs accepted from clients. Stored IDs are not
// required to be UUIDs: collections written by earlier clients carry IDs
// such as "set_1700000000000".
const maxIDLength = 200

// normalizeID trims a client-supplied ID and rejects blank or overlong values.
// Unknown IDs are left for the services to report as not found.
func normalizeID(field, raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", domain.NewValidationError(field, "is required", domain.ErrInvalidID)
	}
	if utf8.RuneCountInString(id) > maxIDLength {
		return "", domain.NewValidationError(field, "is too long", domain.ErrInvalidID)
	}
	return id, nil
}

// getPathID extracts an entity ID from the URL path parameters.
//
// Returns:
//   - (id, nil): the parameter is present and not blank
//   - ("", *domain.ValidationError): the parameter is missing, blank or too long
func getPathID(r *http.Request, paramName string) (string, error) {
	return normalizeID(paramName, chi.URLParam(r, paramName))
}

// handlePathID extracts a path ID and writes a 400 response when it is
// missing or malformed. The boolean reports whether the handler may continue.
func handlePathID(w http.ResponseWriter, r *http.Request, paramName string, log *slog.Logger) (string, bool) {
	id, err := getPathID(r, paramName)
	if err != nil {
		log.Warn("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return "", false
	}
	return id, true
}

// decodeAndValidate decodes the JSON body into req and validates it,
// writing a 400 response on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := shared.DecodeJSON(w, r, req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			shared.RespondWithErrorAndLog(w, r, http.StatusRequestEntityTooLarge, "Request body too large", err)
			return false
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}

	if err := shared.ValidateRequest(req); err != nil {
		HandleValidationError(w, r, err)
		return false
	}
	return true
}
