package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/phrazzld/memorygame/internal/api/shared"
	"github.com/phrazzld/memorygame/internal/parser"
	"github.com/phrazzld/memorygame/internal/platform/logger"
	"github.com/phrazzld/memorygame/internal/service"
)

// DefaultMaxUploadBytes caps uploaded import files.
const DefaultMaxUploadBytes = 10 << 20

// Multipart form fields read by the import endpoints.
const (
	formFieldFile    = "file"
	formFieldOptions = "options"
)

// ImportHandler handles file import, text parsing and backup restore requests.
type ImportHandler struct {
	imports        service.ImportService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewImportHandler creates a new ImportHandler. A non-positive
// maxUploadBytes selects DefaultMaxUploadBytes.
func NewImportHandler(imports service.ImportService, maxUploadBytes int64, logger *slog.Logger) *ImportHandler {
	if imports == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("imports cannot be nil for ImportHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ImportHandler")
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}

	return &ImportHandler{
		imports:        imports,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "import_handler")),
	}
}

// ImportFile handles POST /api/sets/{id}/import.
//
// The request is multipart/form-data with the upload in "file" and optional
// parser options as JSON in "options". With ?preview=true the extracted
// pairs are returned without being added to the set.
func (h *ImportHandler) ImportFile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	setID, ok := handlePathID(w, r, "id", log)
	if !ok {
		return
	}

	preview, err := parseBoolQuery(r, "preview")
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid preview flag", err, shared.WithField("preview"))
		return
	}

	file, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	opts, ok := readOptions(w, r)
	if !ok {
		return
	}

	if preview {
		drafts, err := h.imports.Preview(r.Context(), file, opts)
		if err != nil {
			HandleAPIError(w, r, err, "Failed to read file")
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, ImportResponse{
			Count:   len(drafts),
			Preview: draftsToResponse(drafts),
		})
		return
	}

	cards, err := h.imports.Import(r.Context(), setID, file, opts)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to import file")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, ImportResponse{
		SetID: setID,
		Count: len(cards),
		Cards: cardsToResponse(cards),
	})
}

// RestoreSet handles POST /api/sets/restore, creating a new set from an
// uploaded export file.
func (h *ImportHandler) RestoreSet(w http.ResponseWriter, r *http.Request) {
	file, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	set, err := h.imports.Restore(r.Context(), file)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to restore card set")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, cardSetToResponse(set))
}

// ParseText handles POST /api/parse.
func (h *ImportHandler) ParseText(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	opts := parser.DefaultOptions()
	if req.Options != nil {
		opts = req.Options.Normalized()
	}

	drafts, err := h.imports.ParseText(r.Context(), req.Content, opts)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to parse text")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ImportResponse{
		Count:   len(drafts),
		Preview: draftsToResponse(drafts),
	})
}

// readUpload reads the "file" part of a multipart request, writing an error
// response when it is missing or too large.
func (h *ImportHandler) readUpload(w http.ResponseWriter, r *http.Request) (service.ImportFile, bool) {
	if r.ContentLength > h.maxUploadBytes {
		shared.RespondWithError(w, r, http.StatusRequestEntityTooLarge, "File too large")
		return service.ImportFile{}, false
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			shared.RespondWithErrorAndLog(w, r, http.StatusRequestEntityTooLarge, "File too large", err)
			return service.ImportFile{}, false
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Expected a multipart form upload", err)
		return service.ImportFile{}, false
	}

	part, header, err := r.FormFile(formFieldFile)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "A file is required", err, shared.WithField(formFieldFile))
		return service.ImportFile{}, false
	}
	defer func() { _ = part.Close() }()

	data, err := io.ReadAll(part)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Failed to read uploaded file", err)
		return service.ImportFile{}, false
	}

	return service.ImportFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, true
}

// readOptions decodes parser options from the "options" form field over the
// defaults. A missing field selects the defaults.
func readOptions(w http.ResponseWriter, r *http.Request) (parser.Options, bool) {
	opts := parser.DefaultOptions()

	raw := r.FormValue(formFieldOptions)
	if raw == "" {
		return opts, true
	}
	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid parser options", err, shared.WithField(formFieldOptions))
		return parser.Options{}, false
	}
	return opts.Normalized(), true
}

func parseBoolQuery(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}
