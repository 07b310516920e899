package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SoarinFerret/FocusWarden/internal/service"
	"github.com/SoarinFerret/FocusWarden/internal/session"
	"github.com/SoarinFerret/FocusWarden/internal/state"
	"github.com/SoarinFerret/FocusWarden/internal/strategy"
)

const userHeader = "X-Remote-User"

func newTestHandler(t *testing.T) *Handler {
	m, err := state.NewManager(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return NewHandler(service.New(m, strategy.DefaultOptions(), nil), userHeader)
}

func do(t *testing.T, h http.Handler, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if user != "" {
		req.Header.Set(userHeader, user)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func snapshot(t *testing.T, w *httptest.ResponseRecorder) service.Snapshot {
	t.Helper()
	var snap service.Snapshot
	require.NoError(t, json.NewDecoder(w.Body).Decode(&snap))
	return snap
}

func TestHandler_Check(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, http.MethodGet, "/api/session/check", "alice", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
	var resp checkResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)

	w = do(t, h, http.MethodGet, "/api/session/check", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_EchoesRequestID(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/session/check", nil)
	req.Header.Set(userHeader, "alice")
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestHandler_PomodoroFlow(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, http.MethodPost, "/api/session/start", "alice", `{"strategy":"pomodoro","customGoal":"essay","targetDuration":30}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	snap := snapshot(t, w)
	assert.Equal(t, session.StatusRunning, snap.Status)
	assert.Equal(t, 30, *snap.TargetDuration)
	base := "/api/session/" + snap.ID

	w = do(t, h, http.MethodPost, base+"/pause", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	snap = snapshot(t, w)
	assert.Equal(t, session.StatusPaused, snap.Status)
	assert.Equal(t, 1, *snap.PauseCount)

	w = do(t, h, http.MethodPost, base+"/resume", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, session.StatusRunning, snapshot(t, w).Status)

	w = do(t, h, http.MethodPost, base+"/end", "alice", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var e errorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&e))
	assert.Equal(t, "actualDuration", e.Field)

	w = do(t, h, http.MethodPost, base+"/end", "bob", `{"actualDuration":30}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, h, http.MethodPost, base+"/end", "alice", `{"actualDuration":30}`)
	require.Equal(t, http.StatusOK, w.Code)
	snap = snapshot(t, w)
	assert.Equal(t, session.StatusCompleted, snap.Status)
	assert.Equal(t, 30, *snap.ActualDuration)
	assert.Equal(t, 5, *snap.BreakDuration)

	w = do(t, h, http.MethodPost, base+"/break", "alice", `{"breakTaken":4}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, *snapshot(t, w).BreakTaken)

	w = do(t, h, http.MethodPost, base+"/continue", "alice", "")
	require.Equal(t, http.StatusCreated, w.Code)
	next := snapshot(t, w)
	assert.NotEqual(t, snap.ID, next.ID)
	assert.Equal(t, "essay", next.CustomGoal)

	w = do(t, h, http.MethodGet, "/api/session/active", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, next.ID, snapshot(t, w).ID)

	w = do(t, h, http.MethodGet, "/api/session/today", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []service.Snapshot
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	assert.Len(t, list, 2)
}

func TestHandler_ErrorStatuses(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, http.MethodPost, "/api/session/start", "alice", `{"strategy":"flowtime"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	id := snapshot(t, w).ID

	tests := []struct {
		name   string
		method string
		path   string
		user   string
		body   string
		want   int
	}{
		{"no identity", http.MethodGet, "/api/session/" + id, "", "", http.StatusUnauthorized},
		{"unknown id", http.MethodGet, "/api/session/nope", "alice", "", http.StatusNotFound},
		{"foreign session", http.MethodGet, "/api/session/" + id, "bob", "", http.StatusForbidden},
		{"pause flowtime", http.MethodPost, "/api/session/" + id + "/pause", "alice", "", http.StatusConflict},
		{"break on flowtime", http.MethodPost, "/api/session/" + id + "/break", "alice", `{"breakTaken":3}`, http.StatusConflict},
		{"break without value", http.MethodPost, "/api/session/" + id + "/break", "alice", `{}`, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/api/session/start", "alice", `{"strategy":`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/session/start", "alice", `{"strategy":"pomodoro","color":"red"}`, http.StatusBadRequest},
		{"unknown strategy", http.MethodPost, "/api/session/start", "alice", `{"strategy":"nap"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.user, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestHandler_DiscardedInterrupt(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, http.MethodPost, "/api/session/start", "alice", `{"strategy":"free_session"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	id := snapshot(t, w).ID

	w = do(t, h, http.MethodPost, "/api/session/"+id+"/interrupt", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, snapshot(t, w).Discarded)

	w = do(t, h, http.MethodGet, "/api/session/"+id, "alice", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, StatusFor(session.Unsupported("pause", session.StrategyFree)))
	assert.Equal(t, http.StatusNotFound, StatusFor(fmt.Errorf("x: %w", session.ErrNotFound)))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("disk on fire")))
}
