package publish

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

const defaultBatchTimeout = 50 * time.Millisecond

// ProducerOption tunes the writers a KafkaProducer opens.
type ProducerOption func(*KafkaProducer)

// WithBatchTimeout caps how long a session event waits for a batch to fill.
func WithBatchTimeout(d time.Duration) ProducerOption {
	return func(p *KafkaProducer) {
		if d > 0 {
			p.batchTimeout = d
		}
	}
}

// WithoutTopicCreation requires session topics to be provisioned up front.
func WithoutTopicCreation() ProducerOption {
	return func(p *KafkaProducer) {
		p.autoCreate = false
	}
}

// KafkaProducer writes session events, opening one writer per topic on first use.
// Messages are partitioned by key, so every event for a session ID stays ordered.
type KafkaProducer struct {
	brokers      []string
	batchTimeout time.Duration
	autoCreate   bool

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafkaProducer creates a KafkaProducer for brokers.
func NewKafkaProducer(brokers []string, opts ...ProducerOption) *KafkaProducer {
	p := &KafkaProducer{
		brokers:      brokers,
		batchTimeout: defaultBatchTimeout,
		autoCreate:   true,
		writers:      make(map[string]*kafka.Writer),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WriteMessages implements messageWriter.
func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	return p.writer(topic).WriteMessages(ctx, msgs...)
}

func (p *KafkaProducer) writer(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.writers[topic]
	if !ok {
		w = &kafka.Writer{
			Addr:                   kafka.TCP(p.brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			BatchTimeout:           p.batchTimeout,
			AllowAutoTopicCreation: p.autoCreate,
		}
		p.writers[topic] = w
	}
	return w
}

// Close flushes and closes every writer opened so far.
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	writers := p.writers
	p.writers = make(map[string]*kafka.Writer)
	p.mu.Unlock()

	var errs []error
	for _, w := range writers {
		errs = append(errs, w.Close())
	}
	return errors.Join(errs...)
}
