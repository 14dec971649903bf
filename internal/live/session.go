// Package live implements the live tracking session: a pause-aware timer and a naive
// accelerometer motion classifier driven by one start/pause/finish control surface.
package live

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"example.com/motionlog/internal/domain"
	"example.com/motionlog/internal/observability"
	"example.com/motionlog/internal/sensor"
)

var (
	// ErrSensorUnavailable is returned by Start when the device has no accelerometer.
	ErrSensorUnavailable = errors.New("no accelerometer available")
	// ErrNotStarted is returned when pausing or finishing a session that never started.
	ErrNotStarted = errors.New("live session not started")
	// ErrSessionFinished is returned when pausing or finishing a session that already finished.
	ErrSessionFinished = errors.New("live session already finished")
)

// Recorder stores finished live sessions. It is called with the session lock held and
// must not call back into the Session.
type Recorder interface {
	RecordLive(ctx context.Context, name string, durationMin int) (*domain.ActivitySession, error)
}

// Summary describes a finished session.
type Summary struct {
	DurationMin int
	Elapsed     time.Duration
	Message     string
	Session     *domain.ActivitySession
}

// Snapshot is a read-only view of the session.
type Snapshot struct {
	State           TimerState
	Elapsed         time.Duration
	ElapsedText     string
	Status          string
	Icon            domain.Icon
	Motion          *Reading
	SensorAvailable bool
	Listening       bool
	Summary         *Summary
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the monotonic clock.
func WithClock(clock Clock) Option {
	return func(s *Session) {
		s.clock = clock
	}
}

// WithDisplay attaches a display surface.
func WithDisplay(display Display) Option {
	return func(s *Session) {
		s.display = display
	}
}

// WithLogger overrides the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// Session drives the timer and classifier from one control surface. Sensor callbacks
// and control calls are serialised on the session mutex.
type Session struct {
	mu         sync.Mutex
	timer      Timer
	classifier *Classifier
	source     sensor.Source
	recorder   Recorder
	clock      Clock
	display    Display
	logger     *log.Logger

	available  bool
	registered bool
	status     string
	icon       domain.Icon
	motion     *Reading
	summary    *Summary
}

// NewSession constructs a Session. A source without hardware leaves the session
// permanently unable to start.
func NewSession(source sensor.Source, recorder Recorder, opts ...Option) *Session {
	if source == nil {
		source = sensor.Unavailable{}
	}
	s := &Session{
		classifier: NewClassifier(),
		source:     source,
		recorder:   recorder,
		clock:      NewSystemClock(),
		display:    noopDisplay{},
		logger:     log.New(log.Writer(), "[live] ", log.LstdFlags|log.Lshortfile),
		status:     StatusIdle,
		icon:       domain.IconStanding,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.available = source.Available()
	if !s.available {
		s.logger.Printf("accelerometer unavailable; live tracking disabled")
		s.status = StatusNoSensor
	}
	observability.RecordLiveState(s.timer.State().String())
	s.pushLocked()
	return s
}

// Start begins tracking, or resumes it after a pause. Starting a running session is a
// no-op. Starting a finished session begins a new one with a fresh timer and classifier;
// the previous summary stays visible until then.
func (s *Session) Start() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.startLocked()
	return s.snapshotLocked(), err
}

// Pause stops tracking and freezes elapsed time. Pausing a paused session is a no-op.
func (s *Session) Pause() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.pauseLocked()
	return s.snapshotLocked(), err
}

// Toggle pauses a running session and starts any other.
func (s *Session) Toggle() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.timer.State() == TimerRunning {
		err = s.pauseLocked()
	} else {
		err = s.startLocked()
	}
	return s.snapshotLocked(), err
}

// Finish stops tracking and records the session under name. The session is recorded
// before it is marked finished: when the recorder fails, tracking carries on and Finish
// can be retried.
func (s *Session) Finish(ctx context.Context, name string) (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.timer.State() {
	case TimerIdle:
		return nil, ErrNotStarted
	case TimerFinished:
		return nil, ErrSessionFinished
	}

	now := s.clock.Now()
	finished := s.timer
	finished.Finish(now)
	elapsed := finished.Elapsed(now)
	minutes := WholeMinutes(elapsed)

	var recorded *domain.ActivitySession
	if s.recorder != nil {
		session, err := s.recorder.RecordLive(ctx, name, minutes)
		if err != nil {
			s.logger.Printf("record live session failed (elapsed=%s): %v", FormatElapsed(elapsed), err)
			return nil, fmt.Errorf("record live session: %w", err)
		}
		recorded = session
	}

	s.unregisterLocked()
	s.timer = finished
	s.summary = &Summary{
		DurationMin: minutes,
		Elapsed:     elapsed,
		Message:     fmt.Sprintf("Duration: %d min\n%s", minutes, StatusSessionFinished),
		Session:     recorded,
	}
	s.status = StatusSessionFinished
	s.transitionLocked()

	summary := *s.summary
	return &summary, nil
}

// Suspend releases the sensor without touching the timer, e.g. when the client goes
// to the background.
func (s *Session) Suspend() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unregisterLocked()
	return s.snapshotLocked()
}

// Restore re-registers the sensor after Suspend if the timer is still running.
func (s *Session) Restore() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer.State() != TimerRunning || s.registered {
		return s.snapshotLocked(), nil
	}
	if err := s.registerLocked(); err != nil {
		return s.snapshotLocked(), err
	}
	return s.snapshotLocked(), nil
}

// HandleEvent is the sensor callback. Events are dropped unless the timer is running
// with the sensor registered, and non-accelerometer events are always dropped.
func (s *Session) HandleEvent(ev sensor.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer.State() != TimerRunning || !s.registered {
		observability.RecordIgnoredSample("inactive")
		return
	}
	if ev.Type != sensor.Accelerometer {
		observability.RecordIgnoredSample("foreign_sensor")
		return
	}

	reading := s.classifier.Observe(Sample{X: ev.Values[0], Y: ev.Values[1], Z: ev.Values[2]})
	s.motion = &reading
	s.status = reading.Category.String()
	s.icon = reading.Category.Icon()
	observability.RecordMotion(reading.Category.Key())
	s.pushLocked()
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) startLocked() error {
	if !s.available {
		return ErrSensorUnavailable
	}
	switch s.timer.State() {
	case TimerRunning:
		return nil
	case TimerFinished:
		s.resetLocked()
	}

	if err := s.registerLocked(); err != nil {
		return err
	}
	s.timer.Start(s.clock.Now())
	s.status = StatusTrackingStarted
	s.transitionLocked()
	return nil
}

func (s *Session) pauseLocked() error {
	switch s.timer.State() {
	case TimerIdle:
		return ErrNotStarted
	case TimerFinished:
		return ErrSessionFinished
	case TimerPaused:
		return nil
	}

	s.unregisterLocked()
	s.timer.Pause(s.clock.Now())
	s.status = StatusPaused
	s.transitionLocked()
	return nil
}

// resetLocked discards a finished session so a new one can start.
func (s *Session) resetLocked() {
	s.timer = Timer{}
	s.classifier = NewClassifier()
	s.motion = nil
	s.summary = nil
	s.icon = domain.IconStanding
	s.status = StatusIdle
}

func (s *Session) registerLocked() error {
	if s.registered {
		return nil
	}
	if err := s.source.Register(s.HandleEvent); err != nil {
		return fmt.Errorf("register sensor: %w", err)
	}
	s.registered = true
	return nil
}

func (s *Session) unregisterLocked() {
	if !s.registered {
		return
	}
	s.source.Unregister()
	s.registered = false
}

func (s *Session) transitionLocked() {
	state := s.timer.State()
	s.logger.Printf("live session %s (elapsed=%s)", state, FormatElapsed(s.timer.Elapsed(s.clock.Now())))
	observability.RecordLiveState(state.String())
	s.pushLocked()
}

func (s *Session) pushLocked() {
	u := Update{
		State:   s.timer.State(),
		Label:   s.status,
		Icon:    s.icon,
		Elapsed: s.timer.Elapsed(s.clock.Now()),
	}
	if s.motion != nil {
		m := *s.motion
		u.Motion = &m
	}
	s.display.Show(u)
}

func (s *Session) snapshotLocked() Snapshot {
	elapsed := s.timer.Elapsed(s.clock.Now())
	snap := Snapshot{
		State:           s.timer.State(),
		Elapsed:         elapsed,
		ElapsedText:     FormatElapsed(elapsed),
		Status:          s.status,
		Icon:            s.icon,
		SensorAvailable: s.available,
		Listening:       s.registered,
	}
	if s.motion != nil {
		m := *s.motion
		snap.Motion = &m
	}
	if s.summary != nil {
		sum := *s.summary
		snap.Summary = &sum
	}
	return snap
}
