package utils

import (
	"fmt"
	"sort"
	"sync"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// MessageTracker remembers the highest offset seen on each partition until
// the work behind it is durable. Kafka commits are cumulative, so committing
// that one message per partition covers everything read before it.
type MessageTracker struct {
	mu     sync.Mutex
	latest map[string]*kafka.Message
}

func NewMessageTracker() *MessageTracker {
	return &MessageTracker{latest: make(map[string]*kafka.Message)}
}

func partitionKey(tp kafka.TopicPartition) string {
	topic := ""
	if tp.Topic != nil {
		topic = *tp.Topic
	}
	return fmt.Sprintf("%s/%d", topic, tp.Partition)
}

func (t *MessageTracker) Track(msg *kafka.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := partitionKey(msg.TopicPartition)
	if prev, ok := t.latest[key]; ok && prev.TopicPartition.Offset >= msg.TopicPartition.Offset {
		return
	}
	t.latest[key] = msg
}

// Pending reports how many partitions have uncommitted messages.
func (t *MessageTracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.latest)
}

// Release returns and forgets the highest tracked message of every
// partition, ordered by topic and partition.
func (t *MessageTracker) Release() []*kafka.Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	keys := make([]string, 0, len(t.latest))
	for k := range t.latest {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*kafka.Message, 0, len(keys))
	for _, k := range keys {
		out = append(out, t.latest[k])
	}
	t.latest = make(map[string]*kafka.Message)
	return out
}
