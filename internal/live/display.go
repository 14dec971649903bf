package live

import (
	"time"

	"example.com/motionlog/internal/domain"
)

// Status labels pushed to the display.
const (
	StatusIdle            = "Ready"
	StatusNoSensor        = "No accelerometer available"
	StatusTrackingStarted = "Tracking started"
	StatusPaused          = "Paused"
	StatusSessionFinished = "Session finished"
)

// Update is one fire-and-forget message for the display surface.
type Update struct {
	State   TimerState
	Label   string
	Icon    domain.Icon
	Motion  *Reading
	Elapsed time.Duration
}

// Display receives updates. Implementations must not call back into the Session.
type Display interface {
	Show(Update)
}

// DisplayFunc adapts a function to Display.
type DisplayFunc func(Update)

// Show implements Display.
func (f DisplayFunc) Show(u Update) { f(u) }

type noopDisplay struct{}

func (noopDisplay) Show(Update) {}
