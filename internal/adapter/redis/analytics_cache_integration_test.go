package redis

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/analytics"
	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/domain"
)

func sampleResult() *domain.AnalyticsResult {
	return &domain.AnalyticsResult{
		TotalReviews: 4,
		Sentiment:    domain.SentimentBreakdown{Positive: 3, Negative: 1},
		MonthlyData: []domain.MonthlyPoint{
			{Month: "Oct"}, {Month: "Nov"}, {Month: "Dec"},
			{Month: "Jan"}, {Month: "Feb"}, {Month: "Mar", Positive: 3, Negative: 1},
		},
		RecentReviews: []domain.RecentReview{
			{Text: "Amazing world", Sentiment: domain.SentimentPositive, Confidence: 0.95},
		},
	}
}

func TestNewClient_Connects(t *testing.T) {
	client := setupTestClient(t)
	require.NoError(t, client.Ping(context.Background()).Err())
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient(context.Background(), "not-a-redis-url", nil)
	assert.Error(t, err)
}

func TestAnalyticsCache_RoundTrip(t *testing.T) {
	cache := NewAnalyticsCache(setupTestClient(t), time.Minute)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "0|elden|2025-03")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "0|elden|2025-03", sampleResult()))

	got, ok, err := cache.Get(ctx, "0|elden|2025-03")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleResult(), got)
}

func TestAnalyticsCache_Generation(t *testing.T) {
	cache := NewAnalyticsCache(setupTestClient(t), time.Minute)
	ctx := context.Background()

	gen, err := cache.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	require.NoError(t, cache.Bump(ctx))
	require.NoError(t, cache.Bump(ctx))

	gen, err = cache.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), gen)
}

func TestAnalyticsCache_TTL(t *testing.T) {
	client := setupTestClient(t)
	cache := NewAnalyticsCache(client, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", sampleResult()))

	ttl, err := client.TTL(ctx, resultPrefix+"k").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 30*time.Second)
}

func TestAnalyticsCache_WithCachedAnalyzer(t *testing.T) {
	cache := NewAnalyticsCache(setupTestClient(t), time.Minute)
	ctx := context.Background()
	now := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)

	var calls atomic.Int32
	next := analyzerFunc(func(context.Context, string, time.Time) (*domain.AnalyticsResult, error) {
		calls.Add(1)
		return sampleResult(), nil
	})
	cached := analytics.NewCachedAnalyzer(next, cache, nil)

	_, err := cached.Aggregate(ctx, "Elden", now)
	require.NoError(t, err)
	_, err = cached.Aggregate(ctx, "elden", now)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	require.NoError(t, cached.Invalidate(ctx))
	_, err = cached.Aggregate(ctx, "elden", now)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

type analyzerFunc func(ctx context.Context, gameQuery string, now time.Time) (*domain.AnalyticsResult, error)

func (f analyzerFunc) Aggregate(ctx context.Context, gameQuery string, now time.Time) (*domain.AnalyticsResult, error) {
	return f(ctx, gameQuery, now)
}
