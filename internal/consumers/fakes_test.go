package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/nluflow/internal/models"
)

// fakeIterator hands out queued messages, then reports poll timeouts.
type fakeIterator struct {
	mu       sync.Mutex
	messages []*kafka.Message
}

func (f *fakeIterator) Next() (*kafka.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		time.Sleep(time.Millisecond)
		return nil, nil
	}
	msg := f.messages[0]
	f.messages = f.messages[1:]
	return msg, nil
}

type fakeCommitter struct {
	mu        sync.Mutex
	committed []*kafka.Message
}

func (f *fakeCommitter) Commit(msg *kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, msg)
	return nil
}

func (f *fakeCommitter) offsets() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int64, 0, len(f.committed))
	for _, msg := range f.committed {
		out = append(out, int64(msg.TopicPartition.Offset))
	}
	return out
}

func (f *fakeCommitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.committed)
}

type published struct {
	topic   string
	key     string
	payload any
}

// fakePublisher fails once per queued error in errs, then with err if set.
type fakePublisher struct {
	mu    sync.Mutex
	sent  []published
	errs  []error
	err   error
	calls int
}

func (f *fakePublisher) Publish(topic, key string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return err
	}
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{topic: topic, key: key, payload: payload})
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakePublisher) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, p := range f.sent {
		out = append(out, p.key)
	}
	return out
}

type fakeRemote struct {
	mu    sync.Mutex
	calls int
	errs  []error
}

func (f *fakeRemote) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalysisResults, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &models.AnalysisResults{Concepts: []models.ConceptsResult{{Text: "Go", Relevance: 1}}}, nil
}

func (f *fakeRemote) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeTable struct {
	mu      sync.Mutex
	batches [][]models.AnalyzedRecord
	errs    []error
}

func (f *fakeTable) BatchPutRecords(ctx context.Context, records []models.AnalyzedRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, records)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return err
	}
	return nil
}

type fakeHistory struct {
	mu      sync.Mutex
	records []models.AnalyzedRecord
	err     error
}

func (f *fakeHistory) InsertHistory(ctx context.Context, records []models.AnalyzedRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, records...)
	return nil
}

var errUnavailable = errors.New("connection reset")

func kafkaMessage(topic string, offset int64, key string, payload any) *kafka.Message {
	value, _ := json.Marshal(payload)
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Offset: kafka.Offset(offset)},
		Key:            []byte(key),
		Value:          value,
	}
}
