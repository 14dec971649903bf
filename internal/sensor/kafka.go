package sensor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/segmentio/kafka-go"

	"example.com/motionlog/internal/events"
)

// Reader exposes the minimal kafka.Reader interface needed by KafkaSource.
type Reader interface {
	FetchMessage(context.Context) (kafka.Message, error)
	CommitMessages(context.Context, ...kafka.Message) error
	Close() error
}

// Option configures optional behaviour for the KafkaSource.
type Option func(*KafkaSource)

// WithLogger overrides the logger used to report errors.
func WithLogger(logger *log.Logger) Option {
	return func(k *KafkaSource) {
		k.logger = logger
	}
}

// KafkaSource reads JSON sample messages from a topic and forwards them to the
// registered listener. Messages arriving while nobody is registered are committed
// and dropped.
type KafkaSource struct {
	reader Reader
	logger *log.Logger

	mu       sync.Mutex
	listener Listener
}

// NewKafkaSource constructs a KafkaSource around reader.
func NewKafkaSource(reader Reader, opts ...Option) *KafkaSource {
	k := &KafkaSource{
		reader: reader,
		logger: log.New(log.Writer(), "[sensor] ", log.LstdFlags|log.Lshortfile),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Available implements Source.
func (k *KafkaSource) Available() bool { return k.reader != nil }

// Register implements Source.
func (k *KafkaSource) Register(l Listener) error {
	if k.reader == nil {
		return ErrUnavailable
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.listener != nil {
		return ErrAlreadyRegistered
	}
	k.listener = l
	return nil
}

// Unregister implements Source.
func (k *KafkaSource) Unregister() {
	k.mu.Lock()
	k.listener = nil
	k.mu.Unlock()
}

// Run starts a blocking loop that consumes sample messages until the context is cancelled.
func (k *KafkaSource) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := k.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			k.logger.Printf("fetch error: %v", err)
			continue
		}

		ev, decodeErr := decodeSample(msg)
		if decodeErr != nil {
			k.logger.Printf("decode error (topic=%s, partition=%d, offset=%d): %v", msg.Topic, msg.Partition, msg.Offset, decodeErr)
			recordDecodeError(msg.Topic)
		} else {
			k.deliver(ev)
		}

		if commitErr := k.reader.CommitMessages(ctx, msg); commitErr != nil {
			k.logger.Printf("commit error: %v", commitErr)
		}
	}
}

// Close releases the underlying reader.
func (k *KafkaSource) Close() error {
	if k.reader == nil {
		return nil
	}
	return k.reader.Close()
}

func (k *KafkaSource) deliver(ev Event) {
	k.mu.Lock()
	l := k.listener
	k.mu.Unlock()
	if l == nil {
		recordDropped(ev.Type)
		return
	}
	recordDelivered(ev.Type)
	l(ev)
}

func decodeSample(msg kafka.Message) (Event, error) {
	if len(msg.Value) == 0 {
		return Event{}, errors.New("empty payload")
	}
	var sample events.SampleMessage
	if err := json.Unmarshal(msg.Value, &sample); err != nil {
		return Event{}, fmt.Errorf("invalid sample payload: %w", err)
	}
	if sample.Timestamp.IsZero() {
		sample.Timestamp = msg.Time
	}
	return FromMessage(sample), nil
}
