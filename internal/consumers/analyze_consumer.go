package consumers

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/nluflow/internal/analysis"
	"github.com/spacesedan/nluflow/internal/cache"
	"github.com/spacesedan/nluflow/internal/clients/kafka_client"
	"github.com/spacesedan/nluflow/internal/models"
	"github.com/spacesedan/nluflow/internal/utils"
)

const (
	ANALYZE_ATTEMPTS    = 3
	HEALTH_WAIT_INITIAL = 2 * time.Second
	HEALTH_WAIT_MAX     = 30 * time.Second
	PUBLISH_WAIT_MAX    = 30 * time.Second
)

// Committer commits the offset of a processed message.
type Committer interface {
	Commit(msg *kafka.Message) error
}

// AnalyzeWorker turns analyze jobs into analyzed records.
type AnalyzeWorker struct {
	router     *analysis.Router
	cache      *cache.AnalysisCache
	publisher  kafka_client.Publisher
	retryWait  time.Duration
	healthWait time.Duration
	now        func() time.Time
}

// NewAnalyzeWorker builds a worker. cache may be nil.
func NewAnalyzeWorker(router *analysis.Router, c *cache.AnalysisCache, publisher kafka_client.Publisher) *AnalyzeWorker {
	return &AnalyzeWorker{
		router:     router,
		cache:      c,
		publisher:  publisher,
		retryWait:  2 * time.Second,
		healthWait: HEALTH_WAIT_INITIAL,
		now:        time.Now,
	}
}

// Run is the analyze-request consumer. While any health flag is false, jobs
// that need the remote service wait instead of failing.
func (w *AnalyzeWorker) Run(ctx context.Context, consumer *kafka.Consumer, health ...*atomic.Bool) {
	w.consume(ctx,
		kafka_client.NewKafkaMessageIterator(ctx, consumer),
		kafka_client.NewCommitHandler(ctx, consumer),
		health...)
}

type messageSource interface {
	Next() (*kafka.Message, error)
}

func (w *AnalyzeWorker) consume(ctx context.Context, iterator messageSource, committer Committer, health ...*atomic.Bool) {
	slog.Info("[AnalyzeConsumer] Listening for analyze requests")

	for {
		select {
		case <-ctx.Done():
			slog.Warn("[AnalyzeConsumer] Consumer shutting down...")
			return
		default:
		}

		msg, err := iterator.Next()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			utils.HandleConsumerError(err)
			continue
		}
		if msg == nil {
			continue
		}

		var job models.AnalyzeJob
		if err := utils.DeserializeFromJSON(msg.Value, &job); err != nil {
			slog.Error("[AnalyzeConsumer] Dropping undecodable job",
				slog.String("offset", msg.TopicPartition.Offset.String()))
			w.commit(committer, msg)
			continue
		}
		if job.JobID == "" && msg.Key != nil {
			job.JobID = string(msg.Key)
		}

		if w.router.NeedsRemote(job.Request) && !waitForHealth(ctx, health, w.healthWait) {
			return
		}

		record := w.Process(ctx, job)
		if ctx.Err() != nil {
			// leave the offset uncommitted so the job is redelivered
			return
		}

		if !w.publish(ctx, record) {
			return
		}
		w.commit(committer, msg)
	}
}

// Process answers one job. Failures are recorded on the returned record
// rather than returned, so every job yields exactly one record.
func (w *AnalyzeWorker) Process(ctx context.Context, job models.AnalyzeJob) models.AnalyzedRecord {
	record := models.AnalyzedRecord{
		JobID:    job.JobID,
		Features: job.Request.Features.Requested(),
		Source:   w.router.Source(job.Request.Features),
	}

	if w.cache != nil {
		if results, ok := w.cache.Get(ctx, job.Request); ok {
			slog.Debug("[AnalyzeConsumer] Cache hit", slog.String("job_id", job.JobID))
			record.Results = results
			record.Cached = true
			record.AnalyzedAt = w.now()
			return record
		}
	}

	var (
		results *models.AnalysisResults
		source  string
		err     error
	)
	for attempt := 1; attempt <= ANALYZE_ATTEMPTS; attempt++ {
		results, source, err = w.router.Analyze(ctx, job.Request)
		if err == nil || !retryable(err) || attempt == ANALYZE_ATTEMPTS {
			break
		}
		slog.Warn("[AnalyzeConsumer] Analysis failed, retrying...",
			slog.String("job_id", job.JobID),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			err = ctx.Err()
		case <-time.After(w.retryWait * time.Duration(attempt)):
			continue
		}
		break
	}

	record.AnalyzedAt = w.now()
	if err != nil {
		slog.Error("[AnalyzeConsumer] Analysis failed",
			slog.String("job_id", job.JobID),
			slog.String("error", err.Error()))
		record.Error = err.Error()
		return record
	}

	record.Results = results
	record.Source = source
	if w.cache != nil {
		if err := w.cache.Put(ctx, job.Request, results); err != nil {
			slog.Warn("[AnalyzeConsumer] Failed to cache results",
				slog.String("job_id", job.JobID),
				slog.String("error", err.Error()))
		}
	}
	return record
}

// publish retries with backoff until the record is out. No further message
// is read meanwhile, so a later commit can never pass an unpublished job. It
// returns false if ctx ends first.
func (w *AnalyzeWorker) publish(ctx context.Context, record models.AnalyzedRecord) bool {
	wait := w.retryWait
	for attempt := 1; ; attempt++ {
		err := w.publisher.Publish(kafka_client.KAFKA_TOPIC_ANALYZE_RESULTS, record.JobID, record)
		if err == nil {
			return true
		}
		slog.Error("[AnalyzeConsumer] Failed to publish analyzed record, retrying...",
			slog.String("job_id", record.JobID),
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}
		wait *= 2
		if wait > PUBLISH_WAIT_MAX {
			wait = PUBLISH_WAIT_MAX
		}
	}
}

func (w *AnalyzeWorker) commit(committer Committer, msg *kafka.Message) {
	if err := committer.Commit(msg); err != nil {
		slog.Warn("[AnalyzeConsumer] Failed to commit offset",
			slog.String("error", err.Error()))
	}
}

// retryable reports whether another attempt may succeed. Request errors and
// 4xx answers never will.
func retryable(err error) bool {
	var (
		validation  *models.ValidationError
		unsupported *models.UnsupportedFeatureError
		httpErr     *models.HTTPError
	)
	switch {
	case errors.Is(err, models.ErrNoFeatures),
		errors.Is(err, context.Canceled),
		errors.As(err, &validation),
		errors.As(err, &unsupported):
		return false
	case errors.As(err, &httpErr):
		return httpErr.Retryable()
	}
	return true
}

// waitForHealth blocks until every flag is true. It returns false if ctx
// ends first.
func waitForHealth(ctx context.Context, health []*atomic.Bool, wait time.Duration) bool {
	for !allHealthy(health) {
		slog.Warn("[AnalyzeConsumer] Waiting for NLU service to become healthy",
			slog.Duration("wait", wait))
		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}
		wait *= 2
		if wait > HEALTH_WAIT_MAX {
			wait = HEALTH_WAIT_MAX
		}
	}
	return true
}

func allHealthy(health []*atomic.Bool) bool {
	for _, h := range health {
		if h != nil && !h.Load() {
			return false
		}
	}
	return true
}
