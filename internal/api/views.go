package api

import (
	"fmt"

	"example.com/motionlog/internal/domain"
	"example.com/motionlog/internal/live"
)

// listDateLayout renders timestamps as dd/MM/yyyy HH:mm.
const listDateLayout = "02/01/2006 15:04"

// CreateSessionRequest is the payload for POST /v1/sessions.
type CreateSessionRequest struct {
	Name     string    `json:"name"`
	Duration TextField `json:"duration"`
}

// FinishRequest is the optional payload for POST /v1/live/finish.
type FinishRequest struct {
	Name string `json:"name"`
}

// ValidationProblem reports per-field rejection reasons.
type ValidationProblem struct {
	Type   string            `json:"type"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

// SessionView is one row of the session list.
type SessionView struct {
	SessionID     string `json:"session_id"`
	Name          string `json:"name"`
	DurationMin   int    `json:"duration_min"`
	DurationLabel string `json:"duration_label"`
	Timestamp     int64  `json:"timestamp"`
	DateTime      string `json:"date_time"`
	Icon          string `json:"icon"`
	Source        string `json:"source"`
}

// ListSessionsResponse packages list results.
type ListSessionsResponse struct {
	Items      []SessionView `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// IconResponse is returned by the icon resolver endpoint.
type IconResponse struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// MotionView describes the latest classified sample.
type MotionView struct {
	Category  string  `json:"category"`
	Label     string  `json:"label"`
	Icon      string  `json:"icon"`
	Intensity float64 `json:"intensity"`
	Magnitude float64 `json:"magnitude"`
}

// SummaryView describes a finished live session.
type SummaryView struct {
	DurationMin int          `json:"duration_min"`
	ElapsedMS   int64        `json:"elapsed_ms"`
	Message     string       `json:"message"`
	Session     *SessionView `json:"session,omitempty"`
}

// LiveView is the state of the live tracking screen.
type LiveView struct {
	State           string       `json:"state"`
	ElapsedMS       int64        `json:"elapsed_ms"`
	ElapsedText     string       `json:"elapsed_text"`
	Status          string       `json:"status"`
	Icon            string       `json:"icon"`
	Motion          *MotionView  `json:"motion,omitempty"`
	SensorAvailable bool         `json:"sensor_available"`
	Listening       bool         `json:"listening"`
	Summary         *SummaryView `json:"summary,omitempty"`
}

// SamplesResponse acknowledges a pushed sample batch.
type SamplesResponse struct {
	Received  int      `json:"received"`
	Delivered int      `json:"delivered"`
	Live      LiveView `json:"live"`
}

func (h *Handler) toSessionView(s domain.ActivitySession) SessionView {
	return SessionView{
		SessionID:     s.ID,
		Name:          s.Name,
		DurationMin:   s.DurationMin,
		DurationLabel: fmt.Sprintf("%d min", s.DurationMin),
		Timestamp:     s.TimestampMillis(),
		DateTime:      s.Timestamp.In(h.loc).Format(listDateLayout),
		Icon:          string(s.Icon),
		Source:        string(s.Source),
	}
}

func (h *Handler) toSummaryView(s live.Summary) SummaryView {
	view := SummaryView{
		DurationMin: s.DurationMin,
		ElapsedMS:   s.Elapsed.Milliseconds(),
		Message:     s.Message,
	}
	if s.Session != nil {
		sv := h.toSessionView(*s.Session)
		view.Session = &sv
	}
	return view
}

func (h *Handler) toLiveView(s live.Snapshot) LiveView {
	view := LiveView{
		State:           s.State.String(),
		ElapsedMS:       s.Elapsed.Milliseconds(),
		ElapsedText:     s.ElapsedText,
		Status:          s.Status,
		Icon:            string(s.Icon),
		SensorAvailable: s.SensorAvailable,
		Listening:       s.Listening,
	}
	if s.Motion != nil {
		view.Motion = &MotionView{
			Category:  s.Motion.Category.Key(),
			Label:     s.Motion.Category.String(),
			Icon:      string(s.Motion.Category.Icon()),
			Intensity: s.Motion.Intensity,
			Magnitude: s.Motion.Magnitude,
		}
	}
	if s.Summary != nil {
		sum := h.toSummaryView(*s.Summary)
		view.Summary = &sum
	}
	return view
}
