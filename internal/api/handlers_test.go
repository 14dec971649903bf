package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/motionlog/internal/auth"
	"example.com/motionlog/internal/domain"
	"example.com/motionlog/internal/live"
	"example.com/motionlog/internal/sensor"
)

type stepClock struct {
	now time.Duration
}

func (c *stepClock) Now() time.Duration { return c.now }

type fixture struct {
	handler *Handler
	mux     *http.ServeMux
	source  *sensor.PushSource
	clock   *stepClock
	log     *domain.SessionLog
}

func newFixture(t *testing.T, source sensor.Source, opts ...Option) *fixture {
	t.Helper()
	sessions := domain.NewSessionLog()
	svc := domain.NewService(sessions, domain.WithClock(func() time.Time {
		return time.Date(2025, time.June, 3, 18, 45, 0, 0, time.UTC)
	}))
	clock := &stepClock{}
	liveSession := live.NewSession(source, svc, live.WithClock(clock), live.WithLogger(log.New(io.Discard, "", 0)))

	opts = append([]Option{WithLocation(time.UTC)}, opts...)
	if push, ok := source.(*sensor.PushSource); ok {
		opts = append(opts, WithPushSource(push))
	}
	h := NewHandler(svc, liveSession, opts...)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	f := &fixture{handler: h, mux: mux, clock: clock, log: sessions}
	f.source, _ = source.(*sensor.PushSource)
	return f
}

func (f *fixture) do(t *testing.T, method, target string, body interface{}, scopes ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if scopes != nil {
		set := make(map[string]struct{}, len(scopes))
		for _, s := range scopes {
			set[s] = struct{}{}
		}
		req = req.WithContext(auth.WithClaims(req.Context(), &auth.Claims{
			Subject:   "tester",
			Scopes:    set,
			ExpiresAt: time.Now().Add(time.Hour),
		}))
	}
	rr := httptest.NewRecorder()
	f.mux.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestCreateSessionRejectsEmptyName(t *testing.T) {
	f := newFixture(t, sensor.NewPushSource())

	rr := f.do(t, http.MethodPost, "/v1/sessions", map[string]string{"name": "", "duration": "10"}, auth.ScopeSessionsWrite)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	problem := decode[ValidationProblem](t, rr)
	require.Equal(t, "validation_failed", problem.Type)
	require.Equal(t, map[string]string{"name": domain.MsgRequired}, problem.Fields)
	require.Equal(t, 0, f.log.Len())
}

func TestCreateSessionReportsBothFieldErrors(t *testing.T) {
	f := newFixture(t, sensor.NewPushSource())

	rr := f.do(t, http.MethodPost, "/v1/sessions", map[string]string{"name": " ", "duration": "abc"}, auth.ScopeSessionsWrite)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	problem := decode[ValidationProblem](t, rr)
	require.Equal(t, domain.MsgRequired, problem.Fields["name"])
	require.Equal(t, domain.MsgInvalidNumber, problem.Fields["duration"])
}

func TestCreateAndListSessions(t *testing.T) {
	f := newFixture(t, sensor.NewPushSource())

	rr := f.do(t, http.MethodPost, "/v1/sessions", map[string]interface{}{"name": "Yoga", "duration": 30}, auth.ScopeSessionsWrite)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[SessionView](t, rr)
	require.Equal(t, 30, created.DurationMin)
	require.Equal(t, "30 min", created.DurationLabel)
	require.Equal(t, "yoga", created.Icon)
	require.Equal(t, "03/06/2025 18:45", created.DateTime)

	rr = f.do(t, http.MethodPost, "/v1/sessions", map[string]string{"name": "zumba", "duration": "45"}, auth.ScopeSessionsWrite)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = f.do(t, http.MethodGet, "/v1/sessions?limit=1", nil, auth.ScopeSessionsRead)
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode[ListSessionsResponse](t, rr)
	require.Len(t, page.Items, 1)
	require.Equal(t, "zumba", page.Items[0].Name)
	require.Equal(t, "default", page.Items[0].Icon)
	require.NotEmpty(t, page.NextCursor)

	rr = f.do(t, http.MethodGet, "/v1/sessions?limit=1&cursor="+page.NextCursor, nil, auth.ScopeSessionsWrite)
	require.Equal(t, http.StatusOK, rr.Code)
	page = decode[ListSessionsResponse](t, rr)
	require.Len(t, page.Items, 1)
	require.Equal(t, created.SessionID, page.Items[0].SessionID)
	require.Empty(t, page.NextCursor)
}

func TestListSessionsRejectsBadCursor(t *testing.T) {
	f := newFixture(t, sensor.NewPushSource())
	rr := f.do(t, http.MethodGet, "/v1/sessions?cursor=***", nil, auth.ScopeSessionsRead)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestScopesAreEnforced(t *testing.T) {
	f := newFixture(t, sensor.NewPushSource())

	rr := f.do(t, http.MethodGet, "/v1/sessions", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = f.do(t, http.MethodPost, "/v1/sessions", map[string]string{"name": "run", "duration": "5"}, auth.ScopeSessionsRead)
	require.Equal(t, http.StatusForbidden, rr.Code)

	open := newFixture(t, sensor.NewPushSource(), WithoutScopes())
	rr = open.do(t, http.MethodGet, "/v1/sessions", nil)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestResolveIcon(t *testing.T) {
	f := newFixture(t, sensor.NewPushSource())
	rr := f.do(t, http.MethodGet, "/v1/icons/resolve?name=%20%20SPINNING%20", nil, auth.ScopeSessionsRead)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "bike", decode[IconResponse](t, rr).Icon)
}

func TestLiveFlow(t *testing.T) {
	f := newFixture(t, sensor.NewPushSource())
	w := auth.ScopeSessionsWrite

	rr := f.do(t, http.MethodPost, "/v1/live/pause", nil, w)
	require.Equal(t, http.StatusConflict, rr.Code)

	rr = f.do(t, http.MethodPost, "/v1/live/start", nil, w)
	require.Equal(t, http.StatusOK, rr.Code)
	view := decode[LiveView](t, rr)
	require.Equal(t, "running", view.State)
	require.Equal(t, live.StatusTrackingStarted, view.Status)
	require.True(t, view.Listening)

	rr = f.do(t, http.MethodPost, "/v1/live/samples", []map[string]interface{}{
		{"x": 0, "y": 0, "z": 9.8},
		{"sensor": "gyroscope", "x": 0, "y": 0, "z": 40},
		{"x": 0, "y": 0, "z": 11.5},
	}, w)
	require.Equal(t, http.StatusAccepted, rr.Code)
	samples := decode[SamplesResponse](t, rr)
	require.Equal(t, 3, samples.Received)
	require.Equal(t, 3, samples.Delivered)
	require.NotNil(t, samples.Live.Motion)
	require.Equal(t, "running", samples.Live.Motion.Category)
	require.Equal(t, "Running", samples.Live.Status)

	f.clock.now = 5 * time.Minute
	rr = f.do(t, http.MethodPost, "/v1/live/toggle", nil, w)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "paused", decode[LiveView](t, rr).State)

	f.clock.now = 20 * time.Minute
	rr = f.do(t, http.MethodPost, "/v1/live/toggle", nil, w)
	require.Equal(t, "running", decode[LiveView](t, rr).State)

	f.clock.now = 35 * time.Minute
	rr = f.do(t, http.MethodPost, "/v1/live/finish", map[string]string{"name": "Caminar"}, w)
	require.Equal(t, http.StatusOK, rr.Code)
	summary := decode[SummaryView](t, rr)
	require.Equal(t, 20, summary.DurationMin)
	require.Equal(t, "Duration: 20 min\nSession finished", summary.Message)
	require.NotNil(t, summary.Session)
	require.Equal(t, "walk", summary.Session.Icon)
	require.Equal(t, "live", summary.Session.Source)

	require.Equal(t, 1, f.log.Len())

	rr = f.do(t, http.MethodPost, "/v1/live/pause", nil, w)
	require.Equal(t, http.StatusConflict, rr.Code)
	require.Equal(t, "session_finished", decode[map[string]string](t, rr)["type"])

	rr = f.do(t, http.MethodGet, "/v1/live", nil, auth.ScopeSessionsRead)
	view = decode[LiveView](t, rr)
	require.Equal(t, "finished", view.State)
	require.Equal(t, "00:20:00", view.ElapsedText)
	require.NotNil(t, view.Summary)
}

func TestLiveSessionsCanRepeat(t *testing.T) {
	f := newFixture(t, sensor.NewPushSource())
	w := auth.ScopeSessionsWrite

	rr := f.do(t, http.MethodPost, "/v1/live/start", nil, w)
	require.Equal(t, http.StatusOK, rr.Code)
	f.clock.now = 2 * time.Minute
	rr = f.do(t, http.MethodPost, "/v1/live/finish", map[string]string{"name": "run"}, w)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(t, http.MethodPost, "/v1/live/start", nil, w)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	view := decode[LiveView](t, rr)
	require.Equal(t, "running", view.State)
	require.Equal(t, "00:00:00", view.ElapsedText)
	require.Nil(t, view.Summary)

	rr = f.do(t, http.MethodPost, "/v1/live/samples", []map[string]float64{{"z": 9.8}}, w)
	require.Equal(t, http.StatusAccepted, rr.Code)
	samples := decode[SamplesResponse](t, rr)
	require.Equal(t, 1, samples.Delivered)
	require.Equal(t, "no_movement", samples.Live.Motion.Category)

	f.clock.now = 9 * time.Minute
	rr = f.do(t, http.MethodPost, "/v1/live/finish", nil, w)
	require.Equal(t, http.StatusOK, rr.Code)
	summary := decode[SummaryView](t, rr)
	require.Equal(t, 7, summary.DurationMin)
	require.Equal(t, domain.DefaultLiveName, summary.Session.Name)

	rr = f.do(t, http.MethodGet, "/v1/sessions", nil, auth.ScopeSessionsRead)
	page := decode[ListSessionsResponse](t, rr)
	require.Len(t, page.Items, 2)
	for _, item := range page.Items {
		require.Equal(t, "live", item.Source)
	}
	require.Equal(t, 7, page.Items[0].DurationMin)
	require.Equal(t, "run", page.Items[1].Name)
}

func TestLiveWithoutSensor(t *testing.T) {
	f := newFixture(t, sensor.Unavailable{})

	rr := f.do(t, http.MethodGet, "/v1/live", nil, auth.ScopeSessionsRead)
	view := decode[LiveView](t, rr)
	require.False(t, view.SensorAvailable)
	require.Equal(t, live.StatusNoSensor, view.Status)

	rr = f.do(t, http.MethodPost, "/v1/live/start", nil, auth.ScopeSessionsWrite)
	require.Equal(t, http.StatusConflict, rr.Code)
	require.Equal(t, "sensor_unavailable", decode[map[string]string](t, rr)["type"])

	rr = f.do(t, http.MethodPost, "/v1/live/samples", []map[string]float64{{"z": 9.8}}, auth.ScopeSessionsWrite)
	require.Equal(t, http.StatusConflict, rr.Code)
}

func TestLiveSuspendRestore(t *testing.T) {
	f := newFixture(t, sensor.NewPushSource())
	w := auth.ScopeSessionsWrite

	f.do(t, http.MethodPost, "/v1/live/start", nil, w)
	rr := f.do(t, http.MethodPost, "/v1/live/suspend", nil, w)
	require.Equal(t, http.StatusOK, rr.Code)
	require.False(t, decode[LiveView](t, rr).Listening)

	rr = f.do(t, http.MethodPost, "/v1/live/samples", []map[string]float64{{"z": 30}}, w)
	require.Equal(t, 0, decode[SamplesResponse](t, rr).Delivered)

	rr = f.do(t, http.MethodPost, "/v1/live/restore", nil, w)
	require.True(t, decode[LiveView](t, rr).Listening)
}

func TestTextFieldAcceptsStringsAndNumbers(t *testing.T) {
	var req CreateSessionRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"a","duration":12}`), &req))
	require.Equal(t, TextField("12"), req.Duration)
	require.NoError(t, json.Unmarshal([]byte(`{"name":"a","duration":"x1"}`), &req))
	require.Equal(t, TextField("x1"), req.Duration)
	require.NoError(t, json.Unmarshal([]byte(`{"name":"a","duration":null}`), &req))
	require.Equal(t, TextField(""), req.Duration)
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, sensor.NewPushSource())
	rr := f.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rr.Code)
}
