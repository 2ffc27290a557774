package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spacesedan/nluflow/config"
	"github.com/spacesedan/nluflow/internal/clients"
	"github.com/spacesedan/nluflow/internal/clients/kafka_client"
	"github.com/spacesedan/nluflow/internal/consumers"
	"github.com/spacesedan/nluflow/internal/db"
	"github.com/spacesedan/nluflow/internal/logging"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	appCfg := config.Load()
	logging.InitLogger(appCfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	table := db.NewResultsTable(clients.GetDynamoDBClient())

	var history consumers.HistoryWriter
	if appCfg.Postgres.Name != "" {
		pg, err := clients.GetPostgresClient(ctx, appCfg.Postgres.DSN())
		if err != nil {
			slog.Warn("[Main] PostgreSQL unavailable, history disabled",
				slog.String("error", err.Error()))
		} else {
			defer pg.Close()
			store := db.NewHistoryStore(pg.DB)
			if err := store.EnsureSchema(ctx); err != nil {
				slog.Error("[Main] Failed to prepare history table", slog.String("error", err.Error()))
				os.Exit(1)
			}
			history = store
		}
	}

	sink := consumers.NewResultsSink(table, history)
	kafka_client.RegisterConsumer(kafka_client.KAFKA_TOPIC_ANALYZE_RESULTS,
		consumers.WrapConsumer(sink.Run).Handler())

	cfg := kafka_client.GetKafkaConfig()
	cfg.Topic = kafka_client.KAFKA_TOPIC_ANALYZE_RESULTS
	cfg.GroupID = cfg.GroupID + "-results"

	if err := kafka_client.StartConsumer(ctx, cfg); err != nil {
		slog.Error("[Main] Failed to start results consumer",
			slog.String("error", err.Error()))
	}
}
