package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const HEALTHCHECK_TIMER = 15

// HealthChecker reports whether a dependency answers.
type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// MonitorNLUHealth probes checker right away and then every
// HEALTHCHECK_TIMER seconds, storing the outcome in healthy.
func MonitorNLUHealth(ctx context.Context, checker HealthChecker, healthy *atomic.Bool) {
	MonitorHealth(ctx, "NLU", checker, healthy, time.Second*HEALTHCHECK_TIMER)
}

func MonitorHealth(ctx context.Context, name string, checker HealthChecker, healthy *atomic.Bool, interval time.Duration) {
	probe := func() {
		probeCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()

		isHealthy := checker.HealthCheck(probeCtx)
		if was := healthy.Swap(isHealthy); was != isHealthy {
			slog.Info("[HealthCheck] Health changed",
				slog.String("service", name),
				slog.Bool("healthy", isHealthy))
		}
		if !isHealthy {
			slog.Warn("[HealthCheck] Service is unhealthy", slog.String("service", name))
		}
	}

	probe()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probe()
		}
	}
}
