package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spacesedan/nluflow/config"
	"github.com/spacesedan/nluflow/internal/analysis"
	"github.com/spacesedan/nluflow/internal/cache"
	"github.com/spacesedan/nluflow/internal/clients"
	"github.com/spacesedan/nluflow/internal/clients/kafka_client"
	"github.com/spacesedan/nluflow/internal/consumers"
	"github.com/spacesedan/nluflow/internal/logging"
	"github.com/spacesedan/nluflow/internal/monitoring"
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

	cfg := kafka_client.GetKafkaConfig()
	cfg.Topic = kafka_client.KAFKA_TOPIC_ANALYZE_REQUEST

	for {
		err := kafka_client.InitProducer(cfg)
		if err == nil {
			break
		}

		slog.Warn("Kafka init failed, retrying...", slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
	defer kafka_client.CloseProducer()

	router, cleanup := analysis.NewRouterFromConfig(appCfg, false)
	defer cleanup()

	var remoteStore cache.RemoteStore
	if appCfg.Cache.ValkeyAddress != "" {
		vc, err := clients.NewValkeyClient(appCfg.Cache)
		if err != nil {
			slog.Warn("[Main] Valkey unavailable, caching in process only",
				slog.String("error", err.Error()))
		} else {
			defer vc.Close()
			remoteStore = vc
		}
	}

	analysisCache, err := cache.NewAnalysisCache(appCfg.Cache.LRUSize, remoteStore, appCfg.Cache.TTL)
	if err != nil {
		slog.Error("[Main] Failed to create analysis cache", slog.String("error", err.Error()))
		os.Exit(1)
	}

	nluHealthy := &atomic.Bool{}
	nluHealthy.Store(true)
	if appCfg.NLU.Enabled() {
		go monitoring.MonitorNLUHealth(ctx, clients.GetNLUClient(), nluHealthy)
	}

	worker := consumers.NewAnalyzeWorker(router, analysisCache, kafka_client.ProducerPublisher{})
	kafka_client.RegisterConsumer(kafka_client.KAFKA_TOPIC_ANALYZE_REQUEST,
		consumers.WrapConsumer(worker.Run).WithHealthCheck(nluHealthy).Handler())

	if err := kafka_client.StartConsumer(ctx, cfg); err != nil {
		slog.Error("[Main] Failed to start consumer",
			slog.String("error", err.Error()))
	}
}
