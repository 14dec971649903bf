// Package api exposes HTTP handlers for session logging and live tracking.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"example.com/motionlog/internal/auth"
	"example.com/motionlog/internal/domain"
	"example.com/motionlog/internal/events"
	"example.com/motionlog/internal/live"
	"example.com/motionlog/internal/pagination"
	"example.com/motionlog/internal/sensor"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	maxSampleBatch   = 500
)

// Option configures optional Handler behaviour.
type Option func(*Handler)

// WithPushSource enables POST /v1/live/samples, feeding samples into source.
func WithPushSource(source *sensor.PushSource) Option {
	return func(h *Handler) {
		h.samples = source
	}
}

// WithLocation sets the zone used for list date labels.
func WithLocation(loc *time.Location) Option {
	return func(h *Handler) {
		h.loc = loc
	}
}

// WithoutScopes disables scope checks, for deployments running without auth.
func WithoutScopes() Option {
	return func(h *Handler) {
		h.skipScopes = true
	}
}

// Handler coordinates HTTP requests with the session service and the live session.
type Handler struct {
	service    *domain.Service
	live       *live.Session
	samples    *sensor.PushSource
	loc        *time.Location
	skipScopes bool
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, liveSession *live.Session, opts ...Option) *Handler {
	h := &Handler{
		service: service,
		live:    liveSession,
		loc:     time.Local,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/sessions", h.sessions)
	mux.HandleFunc("/v1/icons/resolve", h.resolveIcon)
	mux.HandleFunc("/v1/live", h.liveSnapshot)
	mux.HandleFunc("/v1/live/start", h.liveControl(h.live.Start))
	mux.HandleFunc("/v1/live/pause", h.liveControl(h.live.Pause))
	mux.HandleFunc("/v1/live/toggle", h.liveControl(h.live.Toggle))
	mux.HandleFunc("/v1/live/restore", h.liveControl(h.live.Restore))
	mux.HandleFunc("/v1/live/suspend", h.liveControl(func() (live.Snapshot, error) { return h.live.Suspend(), nil }))
	mux.HandleFunc("/v1/live/finish", h.liveFinish)
	mux.HandleFunc("/v1/live/samples", h.liveSamples)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) sessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createSession(w, r)
	case http.MethodGet:
		h.listSessions(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	if !h.requireScope(w, r, auth.ScopeSessionsWrite) {
		return
	}

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	session, err := h.service.LogManual(r.Context(), domain.ManualEntryInput{
		Name:     req.Name,
		Duration: string(req.Duration),
	})
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, ValidationProblem{
				Type:   "validation_failed",
				Detail: verr.Error(),
				Fields: verr.Fields,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, h.toSessionView(*session))
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	if !h.requireScope(w, r, auth.ScopeSessionsRead) {
		return
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > maxListLimit {
				parsed = maxListLimit
			}
			limit = parsed
		}
	}

	cursor, err := pagination.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	sessions, next, err := h.service.ListSessions(r.Context(), cursor, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]SessionView, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, h.toSessionView(s))
	}
	writeJSON(w, http.StatusOK, ListSessionsResponse{
		Items:      items,
		NextCursor: pagination.EncodeCursor(next),
	})
}

func (h *Handler) resolveIcon(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.requireScope(w, r, auth.ScopeSessionsRead) {
		return
	}
	name := r.URL.Query().Get("name")
	writeJSON(w, http.StatusOK, IconResponse{Name: name, Icon: string(domain.ResolveIcon(name))})
}

func (h *Handler) liveSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.requireScope(w, r, auth.ScopeSessionsRead) {
		return
	}
	writeJSON(w, http.StatusOK, h.toLiveView(h.live.Snapshot()))
}

func (h *Handler) liveControl(action func() (live.Snapshot, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
			return
		}
		if !h.requireScope(w, r, auth.ScopeSessionsWrite) {
			return
		}

		snap, err := action()
		if err != nil {
			writeLiveError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, h.toLiveView(snap))
	}
}

func (h *Handler) liveFinish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.requireScope(w, r, auth.ScopeSessionsWrite) {
		return
	}

	var req FinishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	summary, err := h.live.Finish(r.Context(), req.Name)
	if err != nil {
		writeLiveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toSummaryView(*summary))
}

func (h *Handler) liveSamples(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.requireScope(w, r, auth.ScopeSessionsWrite) {
		return
	}
	if h.samples == nil {
		writeError(w, http.StatusConflict, "samples_not_accepted", "sensor samples are not accepted over HTTP in this mode")
		return
	}

	var batch []events.SampleMessage
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if len(batch) > maxSampleBatch {
		writeError(w, http.StatusBadRequest, "validation_failed", "too many samples in one batch")
		return
	}

	delivered := 0
	for _, msg := range batch {
		if h.samples.Publish(sensor.FromMessage(msg)) {
			delivered++
		}
	}
	writeJSON(w, http.StatusAccepted, SamplesResponse{
		Received:  len(batch),
		Delivered: delivered,
		Live:      h.toLiveView(h.live.Snapshot()),
	})
}

func (h *Handler) requireScope(w http.ResponseWriter, r *http.Request, scope string) bool {
	if h.skipScopes {
		return true
	}
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return false
	}
	if claims.HasScope(scope) {
		return true
	}
	// Write access implies read access.
	if scope == auth.ScopeSessionsRead && claims.HasScope(auth.ScopeSessionsWrite) {
		return true
	}
	writeError(w, http.StatusForbidden, "forbidden", "scope "+scope+" required")
	return false
}

func writeLiveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, live.ErrSensorUnavailable):
		writeError(w, http.StatusConflict, "sensor_unavailable", err.Error())
	case errors.Is(err, live.ErrNotStarted):
		writeError(w, http.StatusConflict, "not_started", err.Error())
	case errors.Is(err, live.ErrSessionFinished):
		writeError(w, http.StatusConflict, "session_finished", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// TextField accepts either a JSON string or a JSON number and keeps its raw text,
// so numeric validation happens in one place.
type TextField string

// UnmarshalJSON implements json.Unmarshaler.
func (t *TextField) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*t = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = TextField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = TextField(n.String())
	return nil
}
