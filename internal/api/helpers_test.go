package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/memorygame/internal/api/middleware"
	"github.com/phrazzld/memorygame/internal/domain/game"
	"github.com/phrazzld/memorygame/internal/service"
	"github.com/phrazzld/memorygame/internal/store"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// inOrder keeps every shuffle in input order.
type inOrder struct{}

func (inOrder) IntN(n int) int { return n - 1 }

type stubConverter struct {
	text  string
	err   error
	calls int
}

func (c *stubConverter) ConvertToText(ctx context.Context, filename string, data []byte) (string, error) {
	c.calls++
	return c.text, c.err
}

type testServer struct {
	t         *testing.T
	server    *httptest.Server
	cardSets  service.CardSetService
	converter *stubConverter
}

type serverOption func(*Handlers)

func withImportLimiter(l *rate.Limiter) serverOption {
	return func(h *Handlers) { h.ImportLimiter = l }
}

// newTestServer wires the real services over an in-memory blob store.
func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	return newTestServerWithBlobs(t, store.NewMemoryBlobStore(), opts...)
}

// newTestServerWithBlobs wires the real services over blobs, loading
// whatever collection they already hold.
func newTestServerWithBlobs(t *testing.T, blobs store.BlobStore, opts ...serverOption) *testServer {
	t.Helper()

	log := testLogger()
	repo, err := store.NewCardSetRepository(blobs, store.DefaultCardSetsKey, log)
	require.NoError(t, err)

	cardSets, err := service.NewCardSetService(repo, 80, log)
	require.NoError(t, err)
	require.NoError(t, cardSets.Load(context.Background()))

	converter := &stubConverter{}
	imports, err := service.NewImportService(cardSets, converter, log)
	require.NoError(t, err)

	games, err := service.NewGameService(cardSets, game.Params{MinReviewCards: 3, Source: inOrder{}}, 0, log)
	require.NoError(t, err)

	h := Handlers{
		CardSets: NewCardSetHandler(cardSets, log),
		Imports:  NewImportHandler(imports, 1<<16, log),
		Games:    NewGameHandler(games, log),
		Health:   NewHealthHandler(nil, "memory", log),
	}
	for _, opt := range opts {
		opt(&h)
	}

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(log))
	RegisterRoutes(r, h)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testServer{t: t, server: srv, cardSets: cardSets, converter: converter}
}

func (s *testServer) do(method, path string, body interface{}) *http.Response {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(s.t, err)
			reader = bytes.NewReader(data)
		}
	}

	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(s.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.server.Client().Do(req)
	require.NoError(s.t, err)
	s.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// upload posts a multipart form with one file part and optional extra fields.
func (s *testServer) upload(path, filename, contentType string, data []byte, fields map[string]string) *http.Response {
	s.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(header)
	require.NoError(s.t, err)
	_, err = part.Write(data)
	require.NoError(s.t, err)

	for k, v := range fields {
		require.NoError(s.t, mw.WriteField(k, v))
	}
	require.NoError(s.t, mw.Close())

	resp, err := s.server.Client().Post(s.server.URL+path, mw.FormDataContentType(), &buf)
	require.NoError(s.t, err)
	s.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// createSet creates a set with the given front/back pairs through the API.
func (s *testServer) createSet(name string, pairs ...string) CardSetResponse {
	s.t.Helper()

	resp := s.do(http.MethodPost, "/api/sets", CardSetNameRequest{Name: name})
	require.Equal(s.t, http.StatusCreated, resp.StatusCode)
	var set CardSetResponse
	decodeBody(s.t, resp, &set)

	if len(pairs) > 0 {
		req := AddCardsRequest{}
		for i := 0; i+1 < len(pairs); i += 2 {
			req.Cards = append(req.Cards, CardRequest{Front: pairs[i], Back: pairs[i+1]})
		}
		resp = s.do(http.MethodPost, "/api/sets/"+set.ID+"/cards", req)
		require.Equal(s.t, http.StatusCreated, resp.StatusCode)
	}
	return set
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func decodeError(t *testing.T, resp *http.Response) errorBody {
	t.Helper()
	var body errorBody
	decodeBody(t, resp, &body)
	return body
}

// errorBody mirrors shared.ErrorResponse for decoding in tests.
type errorBody struct {
	Error   string `json:"error"`
	Field   string `json:"field"`
	TraceID string `json:"trace_id"`
}
