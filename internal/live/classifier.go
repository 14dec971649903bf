package live

import (
	"fmt"
	"math"

	"example.com/motionlog/internal/domain"
)

// StandardGravity seeds the previous magnitude before the first sample (m/s²).
const StandardGravity = 9.80665

// Intensity thresholds, lowest first.
const (
	WalkingThreshold = 0.5
	RunningThreshold = 1.5
	IntenseThreshold = 3.0
)

// MotionCategory is the classifier output.
type MotionCategory int

const (
	NoMovement MotionCategory = iota
	Walking
	Running
	Intense
)

// String returns the status label shown for the category.
func (c MotionCategory) String() string {
	switch c {
	case NoMovement:
		return "No movement"
	case Walking:
		return "Walking"
	case Running:
		return "Running"
	case Intense:
		return "Intense movement"
	default:
		return fmt.Sprintf("MotionCategory(%d)", int(c))
	}
}

// Key returns a stable machine-readable name.
func (c MotionCategory) Key() string {
	switch c {
	case NoMovement:
		return "no_movement"
	case Walking:
		return "walking"
	case Running:
		return "running"
	case Intense:
		return "intense"
	default:
		return "unknown"
	}
}

// Icon returns the icon displayed for the category.
func (c MotionCategory) Icon() domain.Icon {
	switch c {
	case Walking:
		return domain.IconWalk
	case Running:
		return domain.IconRun
	case Intense:
		return domain.IconBike
	default:
		return domain.IconStanding
	}
}

// Classify maps an intensity to a category. The first matching range wins.
func Classify(intensity float64) MotionCategory {
	switch {
	case intensity < WalkingThreshold:
		return NoMovement
	case intensity < RunningThreshold:
		return Walking
	case intensity < IntenseThreshold:
		return Running
	default:
		return Intense
	}
}

// Sample is one 3-axis acceleration reading.
type Sample struct {
	X, Y, Z float64
}

// Magnitude returns the Euclidean norm of the sample without overflowing on large axes.
func (s Sample) Magnitude() float64 {
	return math.Hypot(math.Hypot(s.X, s.Y), s.Z)
}

// Reading is the result of classifying one sample.
type Reading struct {
	Magnitude float64
	Intensity float64
	Category  MotionCategory
}

// Classifier keeps the previous magnitude so each sample yields an intensity delta.
type Classifier struct {
	prev float64
}

// NewClassifier constructs a Classifier seeded with standard gravity.
func NewClassifier() *Classifier {
	return &Classifier{prev: StandardGravity}
}

// Observe classifies s against the previous magnitude and then slides the window.
func (c *Classifier) Observe(s Sample) Reading {
	magnitude := s.Magnitude()
	intensity := math.Abs(magnitude - c.prev)
	c.prev = magnitude
	return Reading{
		Magnitude: magnitude,
		Intensity: intensity,
		Category:  Classify(intensity),
	}
}
