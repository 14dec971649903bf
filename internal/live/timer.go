package live

import (
	"fmt"
	"time"
)

// TimerState enumerates the session timer states.
type TimerState int

const (
	TimerIdle TimerState = iota
	TimerRunning
	TimerPaused
	TimerFinished
)

func (s TimerState) String() string {
	switch s {
	case TimerIdle:
		return "idle"
	case TimerRunning:
		return "running"
	case TimerPaused:
		return "paused"
	case TimerFinished:
		return "finished"
	default:
		return fmt.Sprintf("TimerState(%d)", int(s))
	}
}

// Timer accumulates active time across start/pause/finish transitions. All instants
// are offsets on a monotonic Clock.
type Timer struct {
	state       TimerState
	base        time.Duration
	pauseOffset time.Duration
	final       time.Duration
}

// State returns the current state.
func (t *Timer) State() TimerState {
	return t.state
}

// Start begins or resumes counting. It is a no-op unless the timer is idle or paused.
func (t *Timer) Start(now time.Duration) TimerState {
	if t.state == TimerIdle || t.state == TimerPaused {
		t.base = now - t.pauseOffset
		t.state = TimerRunning
	}
	return t.state
}

// Pause freezes the elapsed time. It is a no-op unless the timer is running.
func (t *Timer) Pause(now time.Duration) TimerState {
	if t.state == TimerRunning {
		t.pauseOffset = t.running(now)
		t.state = TimerPaused
	}
	return t.state
}

// Finish fixes the elapsed time. It is a no-op unless the timer is running or paused.
func (t *Timer) Finish(now time.Duration) TimerState {
	switch t.state {
	case TimerRunning:
		t.final = t.running(now)
		t.state = TimerFinished
	case TimerPaused:
		t.final = t.pauseOffset
		t.state = TimerFinished
	}
	return t.state
}

// Elapsed reports active (non-paused) time as of now.
func (t *Timer) Elapsed(now time.Duration) time.Duration {
	switch t.state {
	case TimerRunning:
		return t.running(now)
	case TimerPaused:
		return t.pauseOffset
	case TimerFinished:
		return t.final
	default:
		return 0
	}
}

func (t *Timer) running(now time.Duration) time.Duration {
	if elapsed := now - t.base; elapsed > 0 {
		return elapsed
	}
	return 0
}

// WholeMinutes truncates an elapsed duration to whole minutes.
func WholeMinutes(elapsed time.Duration) int {
	if elapsed <= 0 {
		return 0
	}
	return int(elapsed.Milliseconds() / 60000)
}

// FormatElapsed renders elapsed time as HH:MM:SS.
func FormatElapsed(elapsed time.Duration) string {
	if elapsed < 0 {
		elapsed = 0
	}
	total := int64(elapsed / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total/60)%60, total%60)
}
