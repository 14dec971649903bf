package sensor

import "sync"

// PushSource is an in-process Source fed by Publish.
type PushSource struct {
	mu       sync.Mutex
	listener Listener
}

// NewPushSource constructs a PushSource.
func NewPushSource() *PushSource {
	return &PushSource{}
}

// Available implements Source.
func (p *PushSource) Available() bool { return true }

// Register implements Source.
func (p *PushSource) Register(l Listener) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listener != nil {
		return ErrAlreadyRegistered
	}
	p.listener = l
	return nil
}

// Unregister implements Source.
func (p *PushSource) Unregister() {
	p.mu.Lock()
	p.listener = nil
	p.mu.Unlock()
}

// Publish hands ev to the registered listener and reports whether one was attached.
// The listener runs without the source lock held so it may call Unregister.
func (p *PushSource) Publish(ev Event) bool {
	p.mu.Lock()
	l := p.listener
	p.mu.Unlock()
	if l == nil {
		recordDropped(ev.Type)
		return false
	}
	recordDelivered(ev.Type)
	l(ev)
	return true
}
