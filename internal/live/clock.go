package live

import "time"

// Clock is a monotonic elapsed-time source immune to wall-clock adjustment.
type Clock interface {
	Now() time.Duration
}

// SystemClock measures time since its creation on the runtime's monotonic clock.
type SystemClock struct {
	origin time.Time
}

// NewSystemClock constructs a SystemClock anchored at the current instant.
func NewSystemClock() SystemClock {
	return SystemClock{origin: time.Now()}
}

// Now implements Clock.
func (c SystemClock) Now() time.Duration {
	return time.Since(c.origin)
}
