package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"ctchen222/tictactoe-engine/internal/api/service"
	"ctchen222/tictactoe-engine/internal/dependencies/mocks"
	"ctchen222/tictactoe-engine/internal/game"
	"ctchen222/tictactoe-engine/internal/repository"
	"ctchen222/tictactoe-engine/pkg/proto"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Extras  json.RawMessage `json:"extras"`
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewSessionRepository()
	svc := service.NewSessionService(repo, service.Options{
		ThinkDelay: 0,
		Random:     mocks.NewMockRandom(),
		Logger:     slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})
	t.Cleanup(func() {
		// Close whatever the test left behind so no computer goroutine outlives it.
		_, _ = svc.SweepIdle(context.Background(), -1)
	})

	sc := NewSessionController(svc)
	r := gin.New()
	api := r.Group("/api/sessions")
	api.POST("", sc.Create)
	api.GET("/:id", sc.Get)
	api.POST("/:id/moves", sc.Move)
	api.POST("/:id/rounds", sc.NewRound)
	api.PUT("/:id/mode", sc.SetMode)
	api.DELETE("/:id", sc.Delete)
	return r
}

func doRequest(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func decodeState(t *testing.T, env envelope) proto.SessionState {
	t.Helper()
	var state proto.SessionState
	require.NoError(t, json.Unmarshal(env.Extras, &state))
	return state
}

func createSession(t *testing.T, r http.Handler, body string) proto.SessionState {
	t.Helper()
	w, env := doRequest(t, r, http.MethodPost, "/api/sessions", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeState(t, env)
}

func TestSessionController_Create(t *testing.T) {
	r := setupRouter(t)

	// Given: no body
	// When: creating a session
	w, env := doRequest(t, r, http.MethodPost, "/api/sessions", "")

	// Then: a fresh human-vs-human session is returned
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, http.StatusCreated, env.Code)
	state := decodeState(t, env)
	assert.NotEmpty(t, state.ID)
	assert.Equal(t, "pvp", state.Mode)
	assert.Equal(t, game.PlayerX, state.Next)
	assert.Equal(t, "Player X's turn", state.Message)
	assert.Equal(t, game.Board{}, state.Board)
}

func TestSessionController_Create_InvalidBody(t *testing.T) {
	r := setupRouter(t)

	w, env := doRequest(t, r, http.MethodPost, "/api/sessions", `{"mode":"online"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Contains(t, string(env.Extras), "mode must be one of")
}

func TestSessionController_Move(t *testing.T) {
	r := setupRouter(t)
	state := createSession(t, r, "")
	path := "/api/sessions/" + state.ID + "/moves"

	// When: X plays cell 0
	w, env := doRequest(t, r, http.MethodPost, path, `{"index":0}`)

	// Then: the board shows X and it is O's turn
	require.Equal(t, http.StatusOK, w.Code)
	state = decodeState(t, env)
	assert.Equal(t, game.PlayerX, state.Board[0])
	assert.Equal(t, game.PlayerO, state.Next)

	// When: O plays the same cell
	w, _ = doRequest(t, r, http.MethodPost, path, `{"index":0}`)
	// Then: it conflicts
	assert.Equal(t, http.StatusConflict, w.Code)

	// When: the index is out of range or missing
	w, _ = doRequest(t, r, http.MethodPost, path, `{"index":9}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = doRequest(t, r, http.MethodPost, path, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionController_WinThenNewRound(t *testing.T) {
	r := setupRouter(t)
	state := createSession(t, r, "")
	path := "/api/sessions/" + state.ID

	// Given: X takes the top row
	for _, idx := range []string{"0", "3", "1", "4", "2"} {
		w, env := doRequest(t, r, http.MethodPost, path+"/moves", `{"index":`+idx+`}`)
		require.Equal(t, http.StatusOK, w.Code)
		state = decodeState(t, env)
	}
	assert.Equal(t, game.Won, state.Status)
	assert.Equal(t, "Player X wins!", state.Message)
	assert.Equal(t, 1, state.Scores.X)

	// When: playing on a finished board
	w, _ := doRequest(t, r, http.MethodPost, path+"/moves", `{"index":8}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	// When: starting a new round
	w, env := doRequest(t, r, http.MethodPost, path+"/rounds", "")
	require.Equal(t, http.StatusOK, w.Code)
	state = decodeState(t, env)

	// Then: the board is empty and the score is kept
	assert.Equal(t, game.Board{}, state.Board)
	assert.Equal(t, game.PlayerX, state.Next)
	assert.Equal(t, 2, state.Round)
	assert.Equal(t, 1, state.Scores.X)
}

func TestSessionController_SetMode(t *testing.T) {
	r := setupRouter(t)
	state := createSession(t, r, "")
	path := "/api/sessions/" + state.ID + "/mode"

	w, env := doRequest(t, r, http.MethodPut, path, `{"mode":"pvc","difficulty":"hard"}`)
	require.Equal(t, http.StatusOK, w.Code)
	state = decodeState(t, env)
	assert.Equal(t, "pvc", state.Mode)
	assert.Equal(t, "hard", state.Difficulty)

	w, _ = doRequest(t, r, http.MethodPut, path, `{"difficulty":"hard"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionController_Delete(t *testing.T) {
	r := setupRouter(t)
	state := createSession(t, r, "")
	path := "/api/sessions/" + state.ID

	w, _ := doRequest(t, r, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := doRequest(t, r, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
}

func TestSessionController_UnknownSession(t *testing.T) {
	r := setupRouter(t)

	w, _ := doRequest(t, r, http.MethodGet, "/api/sessions/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = doRequest(t, r, http.MethodPost, "/api/sessions/nope/moves", `{"index":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = doRequest(t, r, http.MethodPost, "/api/sessions/nope/rounds", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
