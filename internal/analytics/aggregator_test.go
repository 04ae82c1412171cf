package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/domain"
)

// --- Mock implementations ---

type mockReviewRepo struct {
	countFn   func(ctx context.Context, gameQuery string) (domain.SentimentCounts, error)
	recentFn  func(ctx context.Context, gameQuery string, limit int) ([]domain.Review, error)
	monthlyFn func(ctx context.Context, gameQuery string, since time.Time) ([]domain.MonthlyCount, error)
}

func (m *mockReviewRepo) Insert(context.Context, domain.NewReview) (domain.Review, error) {
	return domain.Review{}, fmt.Errorf("not implemented")
}

func (m *mockReviewRepo) CountBySentiment(ctx context.Context, gameQuery string) (domain.SentimentCounts, error) {
	if m.countFn != nil {
		return m.countFn(ctx, gameQuery)
	}
	return domain.SentimentCounts{}, nil
}

func (m *mockReviewRepo) Recent(ctx context.Context, gameQuery string, limit int) ([]domain.Review, error) {
	if m.recentFn != nil {
		return m.recentFn(ctx, gameQuery, limit)
	}
	return nil, nil
}

func (m *mockReviewRepo) MonthlyCounts(ctx context.Context, gameQuery string, since time.Time) ([]domain.MonthlyCount, error) {
	if m.monthlyFn != nil {
		return m.monthlyFn(ctx, gameQuery, since)
	}
	return nil, nil
}

func (m *mockReviewRepo) Ping(context.Context) error { return nil }

var march2025 = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)

func TestAggregate_NoReviews(t *testing.T) {
	a := NewAggregator(&mockReviewRepo{})

	_, err := a.Aggregate(context.Background(), "Nonexistent Game XYZ", march2025)
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
}

func TestAggregate_CountsAndTotal(t *testing.T) {
	repo := &mockReviewRepo{
		countFn: func(_ context.Context, q string) (domain.SentimentCounts, error) {
			assert.Equal(t, "Elden Ring", q)
			return domain.SentimentCounts{domain.SentimentPositive: 3, domain.SentimentNegative: 1}, nil
		},
	}

	result, err := NewAggregator(repo).Aggregate(context.Background(), "Elden Ring", march2025)
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalReviews)
	assert.Equal(t, 3, result.Sentiment.Positive)
	assert.Equal(t, 1, result.Sentiment.Negative)
	assert.Equal(t, result.TotalReviews, result.Sentiment.Positive+result.Sentiment.Negative)
}

func TestAggregate_MonthlySeriesOrder(t *testing.T) {
	var gotSince time.Time
	repo := &mockReviewRepo{
		countFn: func(context.Context, string) (domain.SentimentCounts, error) {
			return domain.SentimentCounts{domain.SentimentPositive: 2}, nil
		},
		monthlyFn: func(_ context.Context, _ string, since time.Time) ([]domain.MonthlyCount, error) {
			gotSince = since
			return []domain.MonthlyCount{
				{Year: 2025, Month: time.March, Sentiment: domain.SentimentPositive, Count: 2},
			}, nil
		},
	}

	result, err := NewAggregator(repo).Aggregate(context.Background(), "Elden", march2025)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC), gotSince)

	require.Len(t, result.MonthlyData, WindowMonths)
	var months []string
	for _, p := range result.MonthlyData {
		months = append(months, p.Month)
	}
	assert.Equal(t, []string{"Oct", "Nov", "Dec", "Jan", "Feb", "Mar"}, months)
	assert.Equal(t, domain.MonthlyPoint{Month: "Mar", Positive: 2}, result.MonthlyData[5])
	assert.Equal(t, domain.MonthlyPoint{Month: "Oct"}, result.MonthlyData[0])
}

func TestAggregate_BucketsByYearAndMonth(t *testing.T) {
	repo := &mockReviewRepo{
		countFn: func(context.Context, string) (domain.SentimentCounts, error) {
			return domain.SentimentCounts{domain.SentimentNegative: 5}, nil
		},
		monthlyFn: func(context.Context, string, time.Time) ([]domain.MonthlyCount, error) {
			return []domain.MonthlyCount{
				{Year: 2024, Month: time.December, Sentiment: domain.SentimentNegative, Count: 4},
				// Same month number a year earlier; outside the window.
				{Year: 2023, Month: time.December, Sentiment: domain.SentimentNegative, Count: 1},
			}, nil
		},
	}

	result, err := NewAggregator(repo).Aggregate(context.Background(), "Halo", march2025)
	require.NoError(t, err)

	assert.Equal(t, domain.MonthlyPoint{Month: "Dec", Negative: 4}, result.MonthlyData[2])
}

func TestAggregate_RecentReviewsTruncated(t *testing.T) {
	long := strings.Repeat("é", 150)
	repo := &mockReviewRepo{
		countFn: func(context.Context, string) (domain.SentimentCounts, error) {
			return domain.SentimentCounts{domain.SentimentPositive: 2}, nil
		},
		recentFn: func(_ context.Context, _ string, limit int) ([]domain.Review, error) {
			assert.Equal(t, RecentLimit, limit)
			return []domain.Review{
				{ReviewText: long, Sentiment: domain.SentimentPositive, Confidence: 0.91},
				{ReviewText: "short and sweet", Sentiment: domain.SentimentPositive, Confidence: 0.7},
			}, nil
		},
	}

	result, err := NewAggregator(repo).Aggregate(context.Background(), "Celeste", march2025)
	require.NoError(t, err)

	require.Len(t, result.RecentReviews, 2)
	assert.Equal(t, strings.Repeat("é", 100)+"...", result.RecentReviews[0].Text)
	assert.InDelta(t, 0.91, result.RecentReviews[0].Confidence, 1e-9)
	assert.Equal(t, "short and sweet", result.RecentReviews[1].Text)
}

func TestAggregate_RepositoryError(t *testing.T) {
	dbErr := errors.New("disk I/O error")
	repo := &mockReviewRepo{
		countFn: func(context.Context, string) (domain.SentimentCounts, error) {
			return nil, dbErr
		},
	}

	_, err := NewAggregator(repo).Aggregate(context.Background(), "Doom", march2025)
	require.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, domain.ErrGameNotFound)
}

func TestTrailingMonths(t *testing.T) {
	tests := []struct {
		name  string
		now   time.Time
		first time.Time
		last  time.Time
	}{
		{
			name:  "mid year",
			now:   time.Date(2025, time.August, 31, 23, 59, 0, 0, time.UTC),
			first: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
			last:  time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "wraps year",
			now:   time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
			first: time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC),
			last:  time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "non-UTC input",
			now:   time.Date(2025, time.January, 1, 1, 0, 0, 0, time.FixedZone("CET", 3600)),
			first: time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
			last:  time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			months := TrailingMonths(tt.now, 6)
			require.Len(t, months, 6)
			assert.Equal(t, tt.first, months[0])
			assert.Equal(t, tt.last, months[5])
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "ab...", Truncate("abc", 2))
	assert.Equal(t, "", Truncate("", 100))
	assert.Len(t, []rune(Truncate(strings.Repeat("x", 500), PreviewLength)), PreviewLength+len(ellipsis))
}

func TestMonthName(t *testing.T) {
	assert.Equal(t, "Jan", MonthName(time.January))
	assert.Equal(t, "Sep", MonthName(time.September))
}
