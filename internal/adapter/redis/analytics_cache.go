package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/analytics"
	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/domain"
)

const (
	generationKey = "analytics:generation"
	resultPrefix  = "analytics:result:"
)

// AnalyticsCache stores analytics payloads as JSON strings with a TTL. The
// generation counter lives in its own key without expiry.
type AnalyticsCache struct {
	rdb goredis.Cmdable
	ttl time.Duration
}

var _ analytics.ResultCache = (*AnalyticsCache)(nil)

func NewAnalyticsCache(rdb goredis.Cmdable, ttl time.Duration) *AnalyticsCache {
	return &AnalyticsCache{rdb: rdb, ttl: ttl}
}

func (c *AnalyticsCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, generationKey).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cache generation: %w", err)
	}
	return gen, nil
}

func (c *AnalyticsCache) Get(ctx context.Context, key string) (*domain.AnalyticsResult, bool, error) {
	data, err := c.rdb.Get(ctx, resultPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached analytics: %w", err)
	}

	var result domain.AnalyticsResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached analytics: %w", err)
	}
	return &result, true, nil
}

func (c *AnalyticsCache) Set(ctx context.Context, key string, result *domain.AnalyticsResult) error {
	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode analytics: %w", err)
	}
	if err := c.rdb.Set(ctx, resultPrefix+key, encoded, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache analytics: %w", err)
	}
	return nil
}

func (c *AnalyticsCache) Bump(ctx context.Context) error {
	if err := c.rdb.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("failed to bump cache generation: %w", err)
	}
	return nil
}
