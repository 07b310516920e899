// Package api serves the session operations over HTTP. The caller's identity
// comes from a header set by an authenticating proxy in front of the daemon.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/SoarinFerret/FocusWarden/internal/service"
	"github.com/SoarinFerret/FocusWarden/internal/session"
)

const requestIDHeader = "X-Request-ID"

// Sessions is the operation surface the handler exposes.
type Sessions interface {
	Check(ctx context.Context, user string) error
	Start(ctx context.Context, user string, req service.StartRequest) (service.Snapshot, error)
	Pause(ctx context.Context, user, id string) (service.Snapshot, error)
	Resume(ctx context.Context, user, id string) (service.Snapshot, error)
	End(ctx context.Context, user, id string, actual *int) (service.Snapshot, error)
	Interrupt(ctx context.Context, user, id string, actual *int) (service.Snapshot, error)
	Continue(ctx context.Context, user, id string) (service.Snapshot, error)
	Get(ctx context.Context, user, id string) (service.Snapshot, error)
	Active(ctx context.Context, user string) (service.Snapshot, error)
	Today(ctx context.Context, user string) ([]service.Snapshot, error)
	RecordBreak(ctx context.Context, user, id string, minutes int) (service.Snapshot, error)
}

// Handler routes /api/session/... to a Sessions implementation.
type Handler struct {
	sessions   Sessions
	userHeader string
	mux        *http.ServeMux
}

func NewHandler(sessions Sessions, userHeader string) *Handler {
	h := &Handler{sessions: sessions, userHeader: userHeader, mux: http.NewServeMux()}
	h.mux.HandleFunc("GET /api/session/check", h.handleCheck)
	h.mux.HandleFunc("GET /api/session/today", h.handleToday)
	h.mux.HandleFunc("GET /api/session/active", h.handleActive)
	h.mux.HandleFunc("POST /api/session/start", h.handleStart)
	h.mux.HandleFunc("GET /api/session/{id}", h.handleGet)
	h.mux.HandleFunc("POST /api/session/{id}/pause", h.handlePause)
	h.mux.HandleFunc("POST /api/session/{id}/resume", h.handleResume)
	h.mux.HandleFunc("POST /api/session/{id}/end", h.handleEnd)
	h.mux.HandleFunc("POST /api/session/{id}/interrupt", h.handleInterrupt)
	h.mux.HandleFunc("POST /api/session/{id}/continue", h.handleContinue)
	h.mux.HandleFunc("POST /api/session/{id}/break", h.handleBreak)
	return h
}

// ServeHTTP tags every request with an ID and logs its outcome.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(requestIDHeader)
	if id == "" {
		id = uuid.New().String()
	}
	w.Header().Set(requestIDHeader, id)
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	h.mux.ServeHTTP(rec, r)
	log.Printf("[%s] %s %s %s -> %d", id, r.Method, r.URL.Path, h.user(r), rec.status)
}

func (h *Handler) user(r *http.Request) string {
	return r.Header.Get(h.userHeader)
}

type durationRequest struct {
	ActualDuration *int `json:"actualDuration"`
}

type breakRequest struct {
	BreakTaken *int `json:"breakTaken"`
}

type checkResponse struct {
	Status string `json:"status"`
	User   string `json:"user"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	user := h.user(r)
	if err := h.sessions.Check(r.Context(), user); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, checkResponse{Status: "ok", User: user})
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	list, err := h.sessions.Today(r.Context(), h.user(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleActive(w http.ResponseWriter, r *http.Request) {
	h.reply(w)(h.sessions.Active(r.Context(), h.user(r)))
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req service.StartRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.sessions.Start(r.Context(), h.user(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	h.reply(w)(h.sessions.Get(r.Context(), h.user(r), r.PathValue("id")))
}

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	h.reply(w)(h.sessions.Pause(r.Context(), h.user(r), r.PathValue("id")))
}

func (h *Handler) handleResume(w http.ResponseWriter, r *http.Request) {
	h.reply(w)(h.sessions.Resume(r.Context(), h.user(r), r.PathValue("id")))
}

func (h *Handler) handleEnd(w http.ResponseWriter, r *http.Request) {
	var req durationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	h.reply(w)(h.sessions.End(r.Context(), h.user(r), r.PathValue("id"), req.ActualDuration))
}

func (h *Handler) handleInterrupt(w http.ResponseWriter, r *http.Request) {
	var req durationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	h.reply(w)(h.sessions.Interrupt(r.Context(), h.user(r), r.PathValue("id"), req.ActualDuration))
}

func (h *Handler) handleContinue(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sessions.Continue(r.Context(), h.user(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *Handler) handleBreak(w http.ResponseWriter, r *http.Request) {
	var req breakRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.BreakTaken == nil {
		writeError(w, session.NewValidationError("breakTaken", "required"))
		return
	}
	h.reply(w)(h.sessions.RecordBreak(r.Context(), h.user(r), r.PathValue("id"), *req.BreakTaken))
}

// reply writes a single-snapshot result.
func (h *Handler) reply(w http.ResponseWriter) func(service.Snapshot, error) {
	return func(snap service.Snapshot, err error) {
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// decode reads an optional JSON body. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return session.NewValidationError("body", err.Error())
	}
	return nil
}

// StatusFor maps the error taxonomy to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrStrategyMismatch), errors.Is(err, session.ErrUnsupported):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	resp := errorResponse{Error: err.Error()}
	var verr *session.ValidationError
	if errors.As(err, &verr) {
		resp.Field = verr.Field
	}
	if status == http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
		resp.Error = "internal error"
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
