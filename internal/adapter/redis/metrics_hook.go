package redis

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/adapter/metrics"
)

const backendName = "redis"

// MetricsHook records latency and failures of every Redis command.
// A cache miss (redis.Nil) is not a failure.
type MetricsHook struct {
	metrics *metrics.StoreMetrics
}

var _ goredis.Hook = (*MetricsHook)(nil)

func NewMetricsHook(m *metrics.StoreMetrics) *MetricsHook {
	return &MetricsHook{metrics: m}
}

func (h *MetricsHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		start := time.Now()
		conn, err := next(ctx, network, addr)
		h.metrics.Observe(backendName, "dial", time.Since(start).Seconds(), err != nil)
		return conn, err
	}
}

func (h *MetricsHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		failed := err != nil && !errors.Is(err, goredis.Nil)
		h.metrics.Observe(backendName, strings.ToLower(cmd.Name()), time.Since(start).Seconds(), failed)
		return err
	}
}

func (h *MetricsHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		failed := err != nil && !errors.Is(err, goredis.Nil)
		h.metrics.Observe(backendName, "pipeline", time.Since(start).Seconds(), failed)
		return err
	}
}
