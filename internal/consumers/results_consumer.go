package consumers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/nluflow/internal/clients/kafka_client"
	"github.com/spacesedan/nluflow/internal/models"
	"github.com/spacesedan/nluflow/internal/utils"
)

const STORE_ATTEMPTS = 3

type RecordWriter interface {
	BatchPutRecords(ctx context.Context, records []models.AnalyzedRecord) error
}

type HistoryWriter interface {
	InsertHistory(ctx context.Context, records []models.AnalyzedRecord) error
}

// ResultsSink buffers analyzed records and stores them in batches. Offsets
// are committed only once a batch is stored.
type ResultsSink struct {
	table     RecordWriter
	history   HistoryWriter
	buffer    *utils.BatchBuffer[models.AnalyzedRecord]
	tracker   *utils.MessageTracker
	interval  time.Duration
	retryWait time.Duration
}

// NewResultsSink builds a sink. history may be nil.
func NewResultsSink(table RecordWriter, history HistoryWriter) *ResultsSink {
	return &ResultsSink{
		table:     table,
		history:   history,
		buffer:    utils.NewBatchBufferWithCapacity[models.AnalyzedRecord](utils.DYNAMODB_BATCH_SIZE),
		tracker:   utils.NewMessageTracker(),
		interval:  utils.BATCH_TIMEOUT,
		retryWait: time.Second,
	}
}

func (s *ResultsSink) Run(ctx context.Context, consumer *kafka.Consumer, _ ...*atomic.Bool) {
	s.consume(ctx,
		kafka_client.NewKafkaMessageIterator(ctx, consumer),
		// commits must still go through during the shutdown flush
		kafka_client.NewCommitHandler(context.WithoutCancel(ctx), consumer))
}

func (s *ResultsSink) consume(ctx context.Context, iterator messageSource, committer Committer) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Warn("[ResultsConsumer] Stopping consumer, flushing buffered records...")
			// the consumer context is done, so the final flush gets its own
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			s.Flush(flushCtx, committer)
			cancel()
			return
		case <-ticker.C:
			s.Flush(ctx, committer)
		default:
			msg, err := iterator.Next()
			if err != nil {
				if ctx.Err() == nil {
					utils.HandleConsumerError(err)
				}
				continue
			}
			if msg == nil {
				continue
			}

			// committed with the next stored batch, never ahead of it
			s.tracker.Track(msg)

			var record models.AnalyzedRecord
			if err := utils.DeserializeFromJSON(msg.Value, &record); err != nil || record.JobID == "" {
				slog.Error("[ResultsConsumer] Dropping undecodable record",
					slog.String("offset", msg.TopicPartition.Offset.String()))
				continue
			}

			if full := s.buffer.Add(record); full {
				s.Flush(ctx, committer)
			}
		}
	}
}

// Flush stores the buffered records and then commits the highest offset
// read on each partition. A batch that cannot be stored goes back into the
// buffer and nothing is committed, so offsets never move past unstored
// records.
func (s *ResultsSink) Flush(ctx context.Context, committer Committer) {
	if s.buffer.HasData() {
		s.buffer.LogBatchProcessing("analyzed_records")
		batch := latestPerJob(s.buffer.GetAndClear())

		if !s.store(ctx, "dynamodb", func() error { return s.table.BatchPutRecords(ctx, batch) }) {
			s.buffer.Requeue(batch)
			slog.Warn("[ResultsConsumer] Batch kept for the next flush",
				slog.Int("batch_size", len(batch)))
			return
		}
		if s.history != nil {
			// history is a secondary copy and never holds back the commit
			s.store(ctx, "postgres", func() error { return s.history.InsertHistory(ctx, batch) })
		}
	}

	for _, msg := range s.tracker.Release() {
		if err := committer.Commit(msg); err != nil {
			slog.Warn("[ResultsConsumer] Failed to commit offset",
				slog.String("offset", msg.TopicPartition.Offset.String()),
				slog.String("error", err.Error()))
		}
	}
}

// latestPerJob keeps the last record of each job, in the order those last
// records arrived. A BatchWriteItem request may not name a key twice.
func latestPerJob(batch []models.AnalyzedRecord) []models.AnalyzedRecord {
	last := make(map[string]int, len(batch))
	for i, record := range batch {
		last[record.JobID] = i
	}
	if len(last) == len(batch) {
		return batch
	}
	out := make([]models.AnalyzedRecord, 0, len(last))
	for i, record := range batch {
		if last[record.JobID] == i {
			out = append(out, record)
		}
	}
	return out
}

func (s *ResultsSink) store(ctx context.Context, target string, write func() error) bool {
	for i := 0; i < STORE_ATTEMPTS; i++ {
		err := write()
		if err == nil {
			return true
		}
		slog.Error("[ResultsConsumer] Failed to write results",
			slog.String("target", target),
			slog.String("error", err.Error()),
			slog.Int("attempt", i+1))

		select {
		case <-ctx.Done():
			return false
		case <-time.After(s.retryWait):
		}
	}
	return false
}
