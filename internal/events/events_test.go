package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &mockWriter{}
	p := NewKafkaPublisher(w, zerolog.Nop())
	p.now = func() time.Time { return time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) }

	p.Publish(context.Background(), Event{Type: HoldingAdded, RecordID: "page-1", Ticker: "AAPL"})
	p.Publish(context.Background(), Event{Type: ScrapRemoved, RecordID: "page-2"})

	require.Len(t, w.msgs, 2)
	assert.Equal(t, "AAPL", string(w.msgs[0].Key))
	assert.Equal(t, "page-2", string(w.msgs[1].Key), "record id is the key when no ticker is set")
	assert.Equal(t, "HOLDING_ADDED", string(w.msgs[0].Headers[0].Value))

	var decoded Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, HoldingAdded, decoded.Type)
	assert.Equal(t, 2026, decoded.OccurredAt.Year())
}

// TestKafkaPublisher_FailureIsSwallowed checks that a broker outage never
// reaches the caller.
//
// WHY: Events are a side channel. A holding write that succeeded in the
// data store must not be reported as failed because Kafka is down.
func TestKafkaPublisher_FailureIsSwallowed(t *testing.T) {
	w := &mockWriter{err: errors.New("broker unreachable")}
	p := NewKafkaPublisher(w, zerolog.Nop())

	assert.NotPanics(t, func() {
		p.Publish(context.Background(), Event{Type: HoldingRemoved, RecordID: "x"})
	})
	assert.Empty(t, w.msgs)
}

func TestKafkaPublisher_Close(t *testing.T) {
	w := &mockWriter{}
	p := NewKafkaPublisher(w, zerolog.Nop())
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
	assert.True(t, p.Enabled())
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	p.Publish(context.Background(), Event{Type: ScrapAdded})
	assert.False(t, p.Enabled())
	assert.NoError(t, p.Close())
}

func TestNewKafkaWriter(t *testing.T) {
	w := NewKafkaWriter([]string{"localhost:9092"}, "dashboard.changes")
	assert.Equal(t, "dashboard.changes", w.Topic)
	assert.Equal(t, "localhost:9092", w.Addr.String())
}
