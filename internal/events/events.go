// Package events defines the wire payloads exchanged over Kafka and the HTTP sample feed.
package events

import "time"

// EventSessionRecorded is the event_type header value for SessionRecorded.
const EventSessionRecorded = "session.recorded"

// SessionRecorded is emitted whenever a session is appended to the log.
type SessionRecorded struct {
	SessionID   string `json:"session_id"`
	Name        string `json:"name"`
	DurationMin int    `json:"duration_min"`
	Timestamp   int64  `json:"timestamp"`
	Icon        string `json:"icon"`
	Source      string `json:"source"`
}

// SampleMessage carries one raw sensor reading. An empty Sensor means accelerometer.
type SampleMessage struct {
	Sensor    string    `json:"sensor,omitempty"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Z         float64   `json:"z"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}
