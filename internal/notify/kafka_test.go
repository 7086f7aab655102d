package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

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

func TestKafkaNotifier_Send(t *testing.T) {
	w := &mockWriter{}
	n := &KafkaNotifier{writer: w}

	require.NoError(t, n.Send(context.Background(), testMessage()))
	require.Len(t, w.msgs, 1)

	record := w.msgs[0]
	assert.Equal(t, "ord-1", string(record.Key))
	require.Len(t, record.Headers, 1)
	assert.Equal(t, "event_type", record.Headers[0].Key)
	assert.Equal(t, "order_placed", string(record.Headers[0].Value))

	var got Message
	require.NoError(t, json.Unmarshal(record.Value, &got))
	assert.Equal(t, testMessage(), got)
}

func TestKafkaNotifier_WriteError(t *testing.T) {
	n := &KafkaNotifier{writer: &mockWriter{err: errors.New("leader not available")}}
	assert.ErrorContains(t, n.Send(context.Background(), testMessage()), "kafka write failed")
}

func TestKafkaNotifier_Close(t *testing.T) {
	w := &mockWriter{}
	n := &KafkaNotifier{writer: w}
	require.NoError(t, n.Close())
	assert.True(t, w.closed)
}

func TestNewKafkaNotifier_ConfiguresWriter(t *testing.T) {
	n := NewKafkaNotifier(DefaultKafkaTopic, "localhost:9092")
	w, ok := n.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, DefaultKafkaTopic, w.Topic)
	assert.True(t, w.AllowAutoTopicCreation)
}
