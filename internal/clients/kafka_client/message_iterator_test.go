package kafka_client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedReader struct {
	results []readResult
	calls   int
}

type readResult struct {
	msg *kafka.Message
	err error
}

func (r *scriptedReader) ReadMessage(timeout time.Duration) (*kafka.Message, error) {
	r.calls++
	if len(r.results) == 0 {
		return nil, kafka.NewError(kafka.ErrTimedOut, "timed out", false)
	}
	next := r.results[0]
	r.results = r.results[1:]
	return next.msg, next.err
}

func newTestIterator(ctx context.Context, r MessageReader) *KafkaMessageIterator {
	it := NewKafkaMessageIterator(ctx, r)
	it.retryDelay = 0
	return it
}

func TestIterator_ReturnsMessage(t *testing.T) {
	msg := &kafka.Message{Value: []byte("x")}
	reader := &scriptedReader{results: []readResult{{err: errors.New("transient")}, {msg: msg}}}

	got, err := newTestIterator(context.Background(), reader).Next()

	require.NoError(t, err)
	assert.Same(t, msg, got)
	assert.Equal(t, 2, reader.calls)
}

func TestIterator_TimeoutIsEmptyPoll(t *testing.T) {
	got, err := newTestIterator(context.Background(), &scriptedReader{}).Next()

	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestIterator_AllBrokersDown(t *testing.T) {
	reader := &scriptedReader{results: []readResult{{err: kafka.NewError(kafka.ErrAllBrokersDown, "down", false)}}}

	_, err := newTestIterator(context.Background(), reader).Next()

	assert.Error(t, err)
	assert.Equal(t, 1, reader.calls)
}

func TestIterator_GivesUpAfterRetries(t *testing.T) {
	results := make([]readResult, MAX_RETRIES)
	for i := range results {
		results[i] = readResult{err: errors.New("broken")}
	}
	reader := &scriptedReader{results: results}

	_, err := newTestIterator(context.Background(), reader).Next()

	assert.ErrorContains(t, err, "after retries")
	assert.Equal(t, MAX_RETRIES, reader.calls)
}

func TestIterator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestIterator(ctx, &scriptedReader{}).Next()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIterator_NilConsumer(t *testing.T) {
	_, err := NewKafkaMessageIterator(context.Background(), nil).Next()
	assert.Error(t, err)
}
