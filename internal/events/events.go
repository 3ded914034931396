// Package events publishes holding and scrap changes to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Type names a change.
type Type string

const (
	HoldingAdded   Type = "HOLDING_ADDED"
	HoldingUpdated Type = "HOLDING_UPDATED"
	HoldingRemoved Type = "HOLDING_REMOVED"
	ScrapAdded     Type = "SCRAP_ADDED"
	ScrapRemoved   Type = "SCRAP_REMOVED"
)

// Event is one change notification.
type Event struct {
	Type       Type      `json:"type"`
	RecordID   string    `json:"recordId"`
	Ticker     string    `json:"ticker,omitempty"`
	Payload    any       `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// key is the partition key: the ticker when known, otherwise the record id.
func (e Event) key() string {
	if e.Ticker != "" {
		return e.Ticker
	}
	return e.RecordID
}

// Publisher sends change events. Publish never fails the caller.
type Publisher interface {
	Publish(ctx context.Context, e Event)
	Enabled() bool
	Close() error
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) {}
func (Noop) Enabled() bool                  { return false }
func (Noop) Close() error                   { return nil }

// MessageWriter is the subset of *kafka.Writer used here.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes JSON events to a topic.
type KafkaPublisher struct {
	writer MessageWriter
	now    func() time.Time
	log    zerolog.Logger
}

// NewKafkaWriter creates the writer for brokers and topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
}

// NewKafkaPublisher wraps w.
func NewKafkaPublisher(w MessageWriter, log zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, now: time.Now, log: log}
}

// Publish encodes and writes e. Failures are logged.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = p.now().UTC()
	}
	payload, err := json.Marshal(e)
	if err != nil {
		p.log.Error().Err(err).Str("type", string(e.Type)).Msg("encode event")
		return
	}

	msg := kafka.Message{
		Key:   []byte(e.key()),
		Value: payload,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Warn().Err(err).Str("type", string(e.Type)).Str("key", e.key()).Msg("publish event failed")
		return
	}
	p.log.Debug().Str("type", string(e.Type)).Str("key", e.key()).Msg("event published")
}

func (p *KafkaPublisher) Enabled() bool { return true }

// Close flushes pending messages.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
