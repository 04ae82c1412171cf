package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/adapter/metrics"
	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/domain"
)

// sharedLookupTimeout bounds a computation once it no longer follows the
// cancellation of the request that started it.
const sharedLookupTimeout = 15 * time.Second

// ResultCache stores analytics payloads under versioned keys. Bumping the
// generation orphans every earlier entry, so a write never has to enumerate
// the games it affected.
type ResultCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, key string) (*domain.AnalyticsResult, bool, error)
	Set(ctx context.Context, key string, result *domain.AnalyticsResult) error
	Bump(ctx context.Context) error
}

// CachedAnalyzer decorates an Analyzer with a ResultCache. Cache failures are
// logged and the request falls through to the wrapped Analyzer.
type CachedAnalyzer struct {
	next    domain.Analyzer
	cache   ResultCache
	metrics *metrics.CacheMetrics
	group   singleflight.Group
}

func NewCachedAnalyzer(next domain.Analyzer, cache ResultCache, m *metrics.CacheMetrics) *CachedAnalyzer {
	return &CachedAnalyzer{next: next, cache: cache, metrics: m}
}

func (c *CachedAnalyzer) Aggregate(ctx context.Context, gameQuery string, now time.Time) (*domain.AnalyticsResult, error) {
	gen, err := c.cache.Generation(ctx)
	if err != nil {
		c.recordError("generation", err)
		return c.next.Aggregate(ctx, gameQuery, now)
	}

	key := CacheKey(gen, gameQuery, now)

	// Shared by every waiter on key; detached from the starting request.
	ch := c.group.DoChan(key, func() (any, error) {
		sharedCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLookupTimeout)
		defer cancel()
		return c.lookup(sharedCtx, key, gameQuery, now)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.AnalyticsResult), nil
	}
}

func (c *CachedAnalyzer) lookup(ctx context.Context, key, gameQuery string, now time.Time) (*domain.AnalyticsResult, error) {
	cached, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.recordError("get", err)
	}
	if ok {
		if c.metrics != nil {
			c.metrics.Hits.Inc()
		}
		return cached, nil
	}
	if c.metrics != nil {
		c.metrics.Misses.Inc()
	}

	result, err := c.next.Aggregate(ctx, gameQuery, now)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, result); err != nil {
		c.recordError("set", err)
	}
	return result, nil
}

// Invalidate drops every cached result. Called after a review is stored.
func (c *CachedAnalyzer) Invalidate(ctx context.Context) error {
	if err := c.cache.Bump(ctx); err != nil {
		c.recordError("bump", err)
		return fmt.Errorf("failed to invalidate analytics cache: %w", err)
	}
	if c.metrics != nil {
		c.metrics.Invalidations.Inc()
	}
	return nil
}

func (c *CachedAnalyzer) recordError(op string, err error) {
	slog.Warn("Analytics cache operation failed", "operation", op, "error", err)
	if c.metrics != nil {
		c.metrics.Errors.WithLabelValues(op).Inc()
	}
}

// CacheKey scopes a lookup to the cache generation, the case-folded game
// query and the calendar month, since the monthly window only moves when
// the month changes.
func CacheKey(gen int64, gameQuery string, now time.Time) string {
	return fmt.Sprintf("%d|%s|%s", gen, strings.ToLower(gameQuery), now.UTC().Format("2006-01"))
}
