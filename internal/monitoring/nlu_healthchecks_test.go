package monitoring

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type flappingChecker struct {
	calls atomic.Int32
}

func (c *flappingChecker) HealthCheck(ctx context.Context) bool {
	return c.calls.Add(1)%2 == 1
}

func TestMonitorHealth(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	checker := &flappingChecker{}
	var healthy atomic.Bool

	done := make(chan struct{})
	go func() {
		MonitorHealth(ctx, "test", checker, &healthy, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return checker.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
	assert.Equal(t, checker.calls.Load()%2 == 1, healthy.Load())
}
