// Package docconvert implements conversion.Converter against a remote HTTP
// document-to-text service.
//
// Each conversion is a single multipart PUT to "<endpoint>?format=txt" carrying
// the file in the "file" field and a bearer token. A 2xx response body is the
// extracted text, either raw or as a JSON object with a "text" field.
package docconvert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/phrazzld/memorygame/internal/config"
	"github.com/phrazzld/memorygame/internal/conversion"
	"github.com/phrazzld/memorygame/internal/platform/logger"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds a single conversion request.
	DefaultTimeout = 30 * time.Second

	// maxResponseBytes caps the size of a converted document.
	maxResponseBytes = 10 << 20

	// maxErrorBodyBytes caps how much of an error body is kept for logging.
	maxErrorBodyBytes = 512
)

// Client converts documents through the remote service.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger

	maxResponseBytes int64
}

var _ conversion.Converter = (*Client)(nil)

// Options configures a Client.
type Options struct {
	// Endpoint is the conversion URL; "format=txt" is added to its query.
	Endpoint string
	// AccessToken is sent as a bearer token.
	AccessToken string
	// Timeout for each request (default: 30 seconds).
	Timeout time.Duration
	// RateLimit throttles outgoing requests (default: unlimited).
	RateLimit rate.Limit
	// HTTPClient allows a custom HTTP client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// OptionsFromConfig maps application configuration to client options.
func OptionsFromConfig(cfg config.ConversionConfig) Options {
	opts := Options{
		Endpoint:    cfg.Endpoint,
		AccessToken: cfg.AccessToken,
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
	if cfg.RequestsPerMinute > 0 {
		opts.RateLimit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}
	return opts
}

// NewClient creates a new conversion client.
func NewClient(opts Options, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if strings.TrimSpace(opts.Endpoint) == "" {
		return nil, fmt.Errorf("%w: endpoint cannot be empty", conversion.ErrInvalidConfig)
	}
	u, err := url.Parse(opts.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: endpoint must be an absolute URL", conversion.ErrInvalidConfig)
	}

	if opts.AccessToken == "" {
		return nil, fmt.Errorf("%w: access token cannot be empty", conversion.ErrInvalidConfig)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = rate.Inf
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	q := u.Query()
	q.Set("format", "txt")
	u.RawQuery = q.Encode()

	return &Client{
		endpoint:   u.String(),
		token:      opts.AccessToken,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(opts.RateLimit, 1),
		logger:     logger.With(slog.String("component", "docconvert")),

		maxResponseBytes: maxResponseBytes,
	}, nil
}

// ConvertToText implements conversion.Converter.
func (c *Client) ConvertToText(ctx context.Context, filename string, data []byte) (string, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	// Waiting for the limiter is not a retry: the request is still sent once.
	if err := c.limiter.Wait(ctx); err != nil {
		return "", conversion.NewError(filename, 0, "rate limiter wait aborted", fmt.Errorf("%w: %w", conversion.ErrTransport, err))
	}

	body, contentType, err := multipartBody(filename, data)
	if err != nil {
		return "", conversion.NewError(filename, 0, "failed to build request body", fmt.Errorf("%w: %w", conversion.ErrConversionFailed, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.endpoint, body)
	if err != nil {
		return "", conversion.NewError(filename, 0, "failed to create request", fmt.Errorf("%w: %w", conversion.ErrConversionFailed, err))
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	log.Debug("sending document for conversion",
		slog.String("filename", filename),
		slog.Int("size_bytes", len(data)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("document conversion request failed",
			slog.String("filename", filename),
			slog.String("error", err.Error()))
		return "", conversion.NewError(filename, 0, "request failed", fmt.Errorf("%w: %w", conversion.ErrTransport, err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		log.Warn("document conversion rejected",
			slog.String("filename", filename),
			slog.Int("status_code", resp.StatusCode),
			slog.String("body", string(snippet)))
		return "", conversion.NewError(filename, resp.StatusCode, "service returned an error", conversion.ErrUnexpectedStatus)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes+1))
	if err != nil {
		return "", conversion.NewError(filename, resp.StatusCode, "failed to read response", fmt.Errorf("%w: %w", conversion.ErrTransport, err))
	}
	if int64(len(raw)) > c.maxResponseBytes {
		log.Warn("converted document too large",
			slog.String("filename", filename),
			slog.Int64("limit_bytes", c.maxResponseBytes))
		return "", conversion.NewError(filename, resp.StatusCode,
			fmt.Sprintf("response exceeds %d bytes", c.maxResponseBytes), conversion.ErrResponseTooLarge)
	}

	text, err := extractText(resp.Header.Get("Content-Type"), raw)
	if err != nil {
		return "", conversion.NewError(filename, resp.StatusCode, "malformed response", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", conversion.NewError(filename, resp.StatusCode, "service returned no text", conversion.ErrEmptyResult)
	}

	log.Info("document converted",
		slog.String("filename", filename),
		slog.Int("text_length", len(text)),
		slog.Duration("duration", time.Since(start)))

	return text, nil
}

// multipartBody encodes data as the "file" field of a multipart form.
func multipartBody(filename string, data []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}

// textResponse is the JSON shape some services use for the converted text.
type textResponse struct {
	Text *string `json:"text"`
}

// extractText returns the converted text from a response body. JSON bodies
// must carry a string "text" field; anything else is used verbatim.
func extractText(contentType string, raw []byte) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType != "application/json" {
		return string(raw), nil
	}

	var resp textResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("%w: %w", conversion.ErrInvalidResponse, err)
	}
	if resp.Text == nil {
		return "", fmt.Errorf("%w: missing text field", conversion.ErrInvalidResponse)
	}
	return *resp.Text, nil
}
