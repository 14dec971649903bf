// Package sensor delivers 3-axis sensor events to a single registered listener.
package sensor

import (
	"errors"
	"strings"
	"time"

	"example.com/motionlog/internal/events"
)

// Type identifies the sensor that produced an event.
type Type string

const (
	Accelerometer Type = "accelerometer"
	Gyroscope     Type = "gyroscope"
	Magnetometer  Type = "magnetometer"
)

var (
	// ErrUnavailable is returned when registering against a source with no hardware behind it.
	ErrUnavailable = errors.New("sensor unavailable")
	// ErrAlreadyRegistered is returned when a listener is already attached.
	ErrAlreadyRegistered = errors.New("sensor listener already registered")
)

// Event is one timestamped 3-axis reading.
type Event struct {
	Type      Type
	Values    [3]float64
	Timestamp time.Time
}

// Listener receives events while registered.
type Listener func(Event)

// Source is a push-driven sensor feed.
type Source interface {
	Available() bool
	Register(Listener) error
	Unregister()
}

// FromMessage converts a wire sample into an Event.
func FromMessage(msg events.SampleMessage) Event {
	typ := Type(strings.ToLower(strings.TrimSpace(msg.Sensor)))
	if typ == "" {
		typ = Accelerometer
	}
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return Event{
		Type:      typ,
		Values:    [3]float64{msg.X, msg.Y, msg.Z},
		Timestamp: ts,
	}
}

// Unavailable is a Source for devices without the sensor.
type Unavailable struct{}

// Available implements Source.
func (Unavailable) Available() bool { return false }

// Register implements Source.
func (Unavailable) Register(Listener) error { return ErrUnavailable }

// Unregister implements Source.
func (Unavailable) Unregister() {}
