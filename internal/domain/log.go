package domain

import "sync"

// SessionLog is the owned, append-only session list. New sessions go to the front;
// callers only read snapshots and subscribe to insert notifications.
type SessionLog struct {
	mu          sync.RWMutex
	sessions    []ActivitySession
	subscribers map[int]func(ActivitySession)
	nextSubID   int
}

// NewSessionLog constructs an empty SessionLog.
func NewSessionLog() *SessionLog {
	return &SessionLog{subscribers: make(map[int]func(ActivitySession))}
}

// Prepend inserts the session at the front and notifies subscribers.
func (l *SessionLog) Prepend(session ActivitySession) {
	l.mu.Lock()
	l.sessions = append([]ActivitySession{session}, l.sessions...)
	subs := make([]func(ActivitySession), 0, len(l.subscribers))
	for id := 0; id < l.nextSubID; id++ {
		if fn, ok := l.subscribers[id]; ok {
			subs = append(subs, fn)
		}
	}
	l.mu.Unlock()

	for _, fn := range subs {
		fn(session)
	}
}

// Subscribe registers fn for every future insert. The returned func removes it.
func (l *SessionLog) Subscribe(fn func(ActivitySession)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextSubID
	l.nextSubID++
	l.subscribers[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subscribers, id)
	}
}

// Len reports the number of sessions.
func (l *SessionLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.sessions)
}

// List returns a copy of all sessions, newest first.
func (l *SessionLog) List() []ActivitySession {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]ActivitySession, len(l.sessions))
	copy(out, l.sessions)
	return out
}

// Page returns up to limit sessions following cursor, plus the cursor for the next page.
func (l *SessionLog) Page(cursor *Cursor, limit int) ([]ActivitySession, *Cursor) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	start := 0
	if cursor != nil {
		start = l.indexAfter(*cursor)
	}
	if limit <= 0 {
		limit = len(l.sessions)
	}
	end := start + limit
	if end > len(l.sessions) {
		end = len(l.sessions)
	}

	out := make([]ActivitySession, end-start)
	copy(out, l.sessions[start:end])

	if end >= len(l.sessions) || len(out) == 0 {
		return out, nil
	}
	last := out[len(out)-1]
	return out, &Cursor{Timestamp: last.Timestamp, ID: last.ID}
}

// indexAfter locates the first position after the cursor. Cursors naming a session
// that is no longer known fall back to timestamp ordering.
func (l *SessionLog) indexAfter(c Cursor) int {
	for i, s := range l.sessions {
		if s.ID == c.ID {
			return i + 1
		}
	}
	for i, s := range l.sessions {
		if s.Timestamp.Before(c.Timestamp) {
			return i
		}
	}
	return len(l.sessions)
}
