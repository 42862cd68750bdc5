package api

import (
	"net/http"
	"testing"

	"github.com/phrazzld/memorygame/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func answer(t *testing.T, s *testServer, gameID string, correct bool) (*http.Response, service.GameView) {
	t.Helper()

	resp := s.do(http.MethodPost, "/api/games/"+gameID+"/answers", AnswerRequest{Correct: &correct})
	var view service.GameView
	if resp.StatusCode == http.StatusOK {
		decodeBody(t, resp, &view)
	}
	return resp, view
}

func TestGameHandler_FullGame(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	set := s.createSet("Game", "A", "a", "B", "b")

	resp := s.do(http.MethodPost, "/api/games", StartGameRequest{SetID: set.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var view service.GameView
	decodeBody(t, resp, &view)
	assert.Equal(t, "Game", view.SetName)
	assert.Equal(t, 2, view.Total)
	require.NotNil(t, view.Current)
	assert.Equal(t, "A", view.Current.Front)

	resp, view = answer(t, s, view.ID, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, view = answer(t, s, view.ID, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 50, view.RoundScore)
	require.Len(t, view.Struggling, 1)
	assert.Equal(t, "B", view.Struggling[0].Front)

	resp, _ = answer(t, s, view.ID, true)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/games/"+view.ID+"/continue", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &view)
	assert.Equal(t, 2, view.Round)

	resp = s.do(http.MethodPost, "/api/games/"+view.ID+"/continue", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/games/"+view.ID+"/stop", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &view)
	assert.True(t, view.Stopped)
	require.NotNil(t, view.FinalScore)
	assert.True(t, view.NewBestScore)

	resp = s.do(http.MethodGet, "/api/sets/"+set.ID, nil)
	var got CardSetResponse
	decodeBody(t, resp, &got)
	assert.Equal(t, *view.FinalScore, got.BestScore)

	resp = s.do(http.MethodPost, "/api/games/"+view.ID+"/restart", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &view)
	assert.Equal(t, 1, view.Round)
	assert.False(t, view.Stopped)

	resp = s.do(http.MethodDelete, "/api/games/"+view.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/games/"+view.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Game session not found", decodeError(t, resp).Error)
}

func TestGameHandler_StartErrors(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	empty := s.createSet("Empty")

	resp := s.do(http.MethodPost, "/api/games", StartGameRequest{SetID: empty.ID})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "The card set has no cards to play", decodeError(t, resp).Error)

	resp = s.do(http.MethodPost, "/api/games", StartGameRequest{SetID: "6f1c1e1a-1111-4222-8333-944455556666"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/games", StartGameRequest{SetID: "nope"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/games", StartGameRequest{SetID: "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "setId", decodeError(t, resp).Field)
}

func TestGameHandler_AnswerRequiresCorrectField(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	set := s.createSet("Game", "A", "a")

	resp := s.do(http.MethodPost, "/api/games", StartGameRequest{SetID: set.ID})
	var view service.GameView
	decodeBody(t, resp, &view)

	resp = s.do(http.MethodPost, "/api/games/"+view.ID+"/answers", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid Correct: required field", decodeError(t, resp).Error)

	resp, view = answer(t, s, view.ID, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, view.RoundScore)
}
