package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/phrazzld/memorygame/internal/conversion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const qaText = "Question: What is 2+2?\nAnswer: 4\nQuestion: Capital of Italy?\nAnswer: Rome\n"

func TestImportHandler_TextFile(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	set := s.createSet("Imported")

	resp := s.upload("/api/sets/"+set.ID+"/import", "cards.txt", "text/plain", []byte(qaText), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result ImportResponse
	decodeBody(t, resp, &result)
	assert.Equal(t, 2, result.Count)
	require.Len(t, result.Cards, 2)
	assert.Equal(t, "What is 2+2?", result.Cards[0].Front)
	assert.Equal(t, "Rome", result.Cards[1].Back)
}

func TestImportHandler_PreviewDoesNotAddCards(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	set := s.createSet("Preview")

	options := `{"useRegex":false,"frontPrefix":"Q: ","backPrefix":"A: "}`
	resp := s.upload("/api/sets/"+set.ID+"/import?preview=true", "cards.txt", "", []byte("Q: one\nA: uno\n"),
		map[string]string{"options": options})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result ImportResponse
	decodeBody(t, resp, &result)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, []DraftResponse{{Front: "one", Back: "uno"}}, result.Preview)

	resp = s.do(http.MethodGet, "/api/sets/"+set.ID, nil)
	var got CardSetResponse
	decodeBody(t, resp, &got)
	assert.Empty(t, got.Cards)
}

func TestImportHandler_Errors(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	set := s.createSet("Errors")
	path := "/api/sets/" + set.ID + "/import"

	tests := []struct {
		name        string
		path        string
		filename    string
		contentType string
		data        string
		fields      map[string]string
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "no pairs",
			filename:    "notes.txt",
			data:        "just some notes",
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "No cards found",
		},
		{
			name:        "invalid regex",
			filename:    "cards.txt",
			data:        qaText,
			fields:      map[string]string{"options": `{"useRegex":true,"frontRegex":"(","backRegex":"(.+)"}`},
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "Invalid regular expression",
		},
		{
			name:        "malformed options",
			filename:    "cards.txt",
			data:        qaText,
			fields:      map[string]string{"options": `{"useRegex":`},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid parser options",
		},
		{
			name:        "malformed JSON cards",
			filename:    "cards.json",
			data:        `{"front":"a"}`,
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "The JSON file is not a list of cards",
		},
		{
			name:        "unsupported format",
			filename:    "cards.pdf",
			contentType: "application/pdf",
			data:        "%PDF-1.4 binary",
			wantStatus:  http.StatusUnsupportedMediaType,
		},
		{
			name:       "bad preview flag",
			path:       path + "?preview=maybe",
			filename:   "cards.txt",
			data:       qaText,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:        "unknown set",
			path:        "/api/sets/6f1c1e1a-1111-4222-8333-944455556666/import",
			filename:    "cards.txt",
			data:        qaText,
			wantStatus:  http.StatusNotFound,
			wantMessage: "Card set not found",
		},
		{
			name:        "over length",
			filename:    "cards.json",
			data:        `{"cards":[{"front":"` + strings.Repeat("y", 81) + `","back":"b"}]}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "no cards were added",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.path
			if p == "" {
				p = path
			}
			resp := s.upload(p, tc.filename, tc.contentType, []byte(tc.data), tc.fields)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)

			body := decodeError(t, resp)
			if tc.wantMessage != "" {
				assert.Contains(t, body.Error, tc.wantMessage)
			}
		})
	}
}

func TestImportHandler_MissingFile(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	set := s.createSet("Deck")

	resp := s.do(http.MethodPost, "/api/sets/"+set.ID+"/import", `{"not":"multipart"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestImportHandler_FileTooLarge(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	set := s.createSet("Deck")

	big := strings.Repeat("Question: q\nAnswer: a\n", 5000)
	resp := s.upload("/api/sets/"+set.ID+"/import", "big.txt", "text/plain", []byte(big), nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestImportHandler_Docx(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	set := s.createSet("Docx")

	s.converter.text = "Question: converted\nAnswer: text"
	resp := s.upload("/api/sets/"+set.ID+"/import", "notes.docx", conversion.DocxContentType, []byte("PK\x03\x04"), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, s.converter.calls)

	s.converter.err = conversion.NewError("notes.docx", http.StatusInternalServerError, "service failed", conversion.ErrUnexpectedStatus)
	resp = s.upload("/api/sets/"+set.ID+"/import", "notes.docx", conversion.DocxContentType, []byte("PK\x03\x04"), nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "Failed to convert document", decodeError(t, resp).Error)
	assert.Equal(t, 2, s.converter.calls, "conversion is attempted once per upload")
}

func TestImportHandler_RateLimited(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, withImportLimiter(rate.NewLimiter(rate.Limit(0.001), 1)))
	set := s.createSet("Limited")
	path := "/api/sets/" + set.ID + "/import"

	resp := s.upload(path, "cards.txt", "text/plain", []byte(qaText), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.upload(path, "cards.txt", "text/plain", []byte(qaText), nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}

func TestImportHandler_ParseText(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	resp := s.do(http.MethodPost, "/api/parse", ParseRequest{Content: qaText})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result ImportResponse
	decodeBody(t, resp, &result)
	assert.Equal(t, 2, result.Count)

	resp = s.do(http.MethodPost, "/api/parse", `{"content":"Term :: Definition","options":{"useRegex":true,"frontRegex":"^(.+) ::","backRegex":":: (.+)$"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &result)
	assert.Equal(t, []DraftResponse{{Front: "Term", Back: "Definition"}}, result.Preview)

	resp = s.do(http.MethodPost, "/api/parse", ParseRequest{Content: "nothing"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestImportHandler_Restore(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	backup := "Card Set: Restored Deck\nCreated: 2024-01-01 00:00:00 UTC\nLast Modified: 2024-01-01 00:00:00 UTC\n\nCards:\n\nCard 1:\nQuestion: a\nAnswer: b\n"

	resp := s.upload("/api/sets/restore", "backup.txt", "text/plain", []byte(backup), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var set CardSetResponse
	decodeBody(t, resp, &set)
	assert.Equal(t, "Restored Deck", set.Name)
	assert.Equal(t, 1, set.CardCount)

	resp = s.upload("/api/sets/restore", "backup.txt", "text/plain", []byte("not an export"), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestMapErrorToStatusCode_Conversion(t *testing.T) {
	t.Parallel()

	err := conversion.NewError("x.docx", 0, "dial failed", conversion.ErrTransport)
	assert.Equal(t, http.StatusBadGateway, MapErrorToStatusCode(err))
}
