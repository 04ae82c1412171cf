package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/adapter/metrics"
	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/domain"
)

// AnalyticsCache is an in-process analytics.ResultCache. It is only coherent
// for a single server instance; use the Redis cache when running several.
type AnalyticsCache struct {
	mu         sync.RWMutex
	entries    map[string]cacheEntry
	generation int64
	ttl        time.Duration
	clock      clockwork.Clock
	metrics    *metrics.CacheMetrics
}

type cacheEntry struct {
	result    domain.AnalyticsResult
	expiresAt time.Time
}

// NewAnalyticsCache creates a cache whose entries live for ttl. m may be nil.
func NewAnalyticsCache(ttl time.Duration, clock clockwork.Clock, m *metrics.CacheMetrics) *AnalyticsCache {
	return &AnalyticsCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		clock:   clock,
		metrics: m,
	}
}

func (c *AnalyticsCache) Generation(context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation, nil
}

// Get treats expired entries as misses; they are removed by EvictExpired.
func (c *AnalyticsCache) Get(_ context.Context, key string) (*domain.AnalyticsResult, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.clock.Now().After(entry.expiresAt) {
		return nil, false, nil
	}
	result := entry.result
	return &result, true, nil
}

func (c *AnalyticsCache) Set(_ context.Context, key string, result *domain.AnalyticsResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{result: *result, expiresAt: c.clock.Now().Add(c.ttl)}
	return nil
}

// Bump advances the generation and drops every entry, since none of them can
// be addressed again.
func (c *AnalyticsCache) Bump(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	clear(c.entries)
	return nil
}

func (c *AnalyticsCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// EvictExpired removes expired entries and returns how many were removed.
func (c *AnalyticsCache) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	evicted := 0
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}

// StartEvictionTimer evicts expired entries every interval until the
// returned stop func is called.
func (c *AnalyticsCache) StartEvictionTimer(interval time.Duration) func() {
	ticker := c.clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				evicted := c.EvictExpired()
				size := c.Size()
				if evicted > 0 {
					slog.Debug("Evicted expired analytics cache entries", "count", evicted, "remaining", size)
				}
				if c.metrics != nil {
					c.metrics.Evictions.Add(float64(evicted))
					c.metrics.Entries.Set(float64(size))
				}
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
