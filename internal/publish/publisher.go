// Package publish announces recorded sessions on Kafka.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"example.com/motionlog/internal/domain"
	"example.com/motionlog/internal/events"
)

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
}

// Option configures optional behaviour for the SessionPublisher.
type Option func(*SessionPublisher)

// WithLogger overrides the logger used to report errors.
func WithLogger(logger *log.Logger) Option {
	return func(p *SessionPublisher) {
		p.logger = logger
	}
}

// WithDrainTimeout bounds how long Start keeps flushing queued events after shutdown.
func WithDrainTimeout(d time.Duration) Option {
	return func(p *SessionPublisher) {
		p.drainTimeout = d
	}
}

// SessionPublisher buffers sessions from the log and writes them to a topic from a
// single goroutine, so log subscribers never block on Kafka.
type SessionPublisher struct {
	writer           messageWriter
	topic            string
	queue            chan domain.ActivitySession
	logger           *log.Logger
	drainTimeout     time.Duration
	shutdownComplete chan struct{}
}

// NewSessionPublisher constructs a SessionPublisher with a queue of the given size.
func NewSessionPublisher(writer messageWriter, topic string, buffer int, opts ...Option) *SessionPublisher {
	if buffer <= 0 {
		buffer = 1
	}
	p := &SessionPublisher{
		writer:           writer,
		topic:            topic,
		queue:            make(chan domain.ActivitySession, buffer),
		logger:           log.New(log.Writer(), "[publish] ", log.LstdFlags|log.Lshortfile),
		drainTimeout:     5 * time.Second,
		shutdownComplete: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Attach subscribes the publisher to the log. The returned func detaches it.
func (p *SessionPublisher) Attach(sessions *domain.SessionLog) func() {
	return sessions.Subscribe(p.Enqueue)
}

// Enqueue queues a session without blocking; it drops the event when the queue is full.
func (p *SessionPublisher) Enqueue(session domain.ActivitySession) {
	select {
	case p.queue <- session:
	default:
		droppedCounter.Inc()
		p.logger.Printf("queue full, dropping session %s", session.ID)
	}
}

// Start drains the queue until ctx is cancelled. It should be called in a goroutine.
func (p *SessionPublisher) Start(ctx context.Context) {
	defer close(p.shutdownComplete)

	for {
		select {
		case <-ctx.Done():
			p.drain()
			return
		case session := <-p.queue:
			if err := p.publish(ctx, session); err != nil {
				p.logger.Printf("publish error (session=%s): %v", session.ID, err)
			}
		}
	}
}

// Wait blocks until Start returns.
func (p *SessionPublisher) Wait() {
	<-p.shutdownComplete
}

func (p *SessionPublisher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), p.drainTimeout)
	defer cancel()
	for {
		select {
		case session := <-p.queue:
			if err := p.publish(ctx, session); err != nil {
				p.logger.Printf("publish error during drain (session=%s): %v", session.ID, err)
			}
		default:
			return
		}
	}
}

func (p *SessionPublisher) publish(ctx context.Context, session domain.ActivitySession) error {
	msg, err := encodeSession(session)
	if err != nil {
		failedCounter.Inc()
		return err
	}

	start := time.Now()
	err = p.writer.WriteMessages(ctx, p.topic, msg)
	publishDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		failedCounter.Inc()
		return fmt.Errorf("write to %s: %w", p.topic, err)
	}
	deliveredCounter.Inc()
	return nil
}

func encodeSession(session domain.ActivitySession) (kafka.Message, error) {
	body, err := json.Marshal(events.SessionRecorded{
		SessionID:   session.ID,
		Name:        session.Name,
		DurationMin: session.DurationMin,
		Timestamp:   session.TimestampMillis(),
		Icon:        string(session.Icon),
		Source:      string(session.Source),
	})
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(session.ID),
		Value: body,
		Time:  session.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(events.EventSessionRecorded)},
			{Key: "source", Value: []byte(session.Source)},
		},
	}, nil
}
