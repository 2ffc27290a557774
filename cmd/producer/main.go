package main

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spacesedan/nluflow/config"
	"github.com/spacesedan/nluflow/internal/clients/kafka_client"
	"github.com/spacesedan/nluflow/internal/logging"
	"github.com/spacesedan/nluflow/internal/models"
)

// Reads analyze jobs, one JSON object per line, and publishes them on the
// analyze-request topic.
func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger(config.Load().LogLevel)

	if len(os.Args) < 2 {
		slog.Error("usage: producer <jobs.jsonl>")
		os.Exit(2)
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		slog.Error("[Producer] Failed to open jobs file", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer f.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := kafka_client.GetKafkaConfig()
	if err := kafka_client.InitProducer(cfg); err != nil {
		slog.Error("[Producer] Kafka init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer kafka_client.CloseProducer()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var published, skipped int
	for line := 1; scanner.Scan(); line++ {
		if ctx.Err() != nil {
			break
		}
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var job models.AnalyzeJob
		if err := json.Unmarshal(raw, &job); err != nil {
			slog.Warn("[Producer] Skipping malformed job",
				slog.Int("line", line),
				slog.String("error", err.Error()))
			skipped++
			continue
		}
		if err := job.Request.Validate(); err != nil {
			slog.Warn("[Producer] Skipping invalid job",
				slog.Int("line", line),
				slog.String("error", err.Error()))
			skipped++
			continue
		}
		if job.JobID == "" {
			job.JobID = uuid.NewString()
		}
		if job.SubmittedAt.IsZero() {
			job.SubmittedAt = time.Now().UTC()
		}

		if err := kafka_client.PublishToKafka(kafka_client.KAFKA_TOPIC_ANALYZE_REQUEST, job.JobID, job); err != nil {
			slog.Error("[Producer] Failed to publish job",
				slog.String("job_id", job.JobID),
				slog.String("error", err.Error()))
			skipped++
			continue
		}
		published++
	}
	if err := scanner.Err(); err != nil {
		slog.Error("[Producer] Failed to read jobs file", slog.String("error", err.Error()))
	}

	slog.Info("[Producer] Done",
		slog.Int("published", published),
		slog.Int("skipped", skipped))
}
