package domain

import "time"

// Source records how a session entered the log.
type Source string

const (
	SourceManual Source = "manual"
	SourceLive   Source = "live"
)

// ActivitySession is the immutable record shown in the session list.
type ActivitySession struct {
	ID          string
	Name        string
	DurationMin int
	Timestamp   time.Time
	Icon        Icon
	Source      Source
}

// TimestampMillis returns the session timestamp as milliseconds since the epoch.
func (s ActivitySession) TimestampMillis() int64 {
	return s.Timestamp.UnixMilli()
}

// Cursor models the pagination position in the newest-first session list.
type Cursor struct {
	Timestamp time.Time
	ID        string
}
