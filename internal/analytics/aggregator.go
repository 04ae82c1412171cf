package analytics

import (
	"context"
	"fmt"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/domain"
)

const (
	RecentLimit   = 10
	PreviewLength = 100
	WindowMonths  = 6

	ellipsis = "..."
)

type Aggregator struct {
	reviews domain.ReviewRepository
}

func NewAggregator(reviews domain.ReviewRepository) *Aggregator {
	return &Aggregator{reviews: reviews}
}

func (a *Aggregator) Aggregate(ctx context.Context, gameQuery string, now time.Time) (*domain.AnalyticsResult, error) {
	counts, err := a.reviews.CountBySentiment(ctx, gameQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}
	if counts.Total() == 0 {
		return nil, domain.ErrGameNotFound
	}

	recent, err := a.reviews.Recent(ctx, gameQuery, RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent reviews: %w", err)
	}

	months := TrailingMonths(now, WindowMonths)
	rows, err := a.reviews.MonthlyCounts(ctx, gameQuery, months[0])
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly counts: %w", err)
	}

	positive := counts[domain.SentimentPositive]
	negative := counts[domain.SentimentNegative]

	return &domain.AnalyticsResult{
		TotalReviews: positive + negative,
		Sentiment: domain.SentimentBreakdown{
			Positive: positive,
			Negative: negative,
		},
		MonthlyData:   monthlySeries(months, rows),
		RecentReviews: previews(recent),
	}, nil
}

// TrailingMonths returns the first instant (UTC) of the n calendar months
// ending with now's month, oldest first.
func TrailingMonths(now time.Time, n int) []time.Time {
	now = now.UTC()
	months := make([]time.Time, 0, n)
	for i := range n {
		months = append(months, time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC))
	}
	slices.Reverse(months)
	return months
}

type monthKey struct {
	year  int
	month time.Month
}

// monthlySeries keys buckets by year and month, so a month number seen in two
// different years never merges into one bucket.
func monthlySeries(months []time.Time, rows []domain.MonthlyCount) []domain.MonthlyPoint {
	buckets := make(map[monthKey]*domain.SentimentBreakdown, len(months))
	for _, m := range months {
		buckets[monthKey{m.Year(), m.Month()}] = &domain.SentimentBreakdown{}
	}

	for _, row := range rows {
		b, ok := buckets[monthKey{row.Year, row.Month}]
		if !ok {
			continue
		}
		switch row.Sentiment {
		case domain.SentimentPositive:
			b.Positive += row.Count
		case domain.SentimentNegative:
			b.Negative += row.Count
		}
	}

	series := make([]domain.MonthlyPoint, 0, len(months))
	for _, m := range months {
		b := buckets[monthKey{m.Year(), m.Month()}]
		series = append(series, domain.MonthlyPoint{
			Month:    MonthName(m.Month()),
			Positive: b.Positive,
			Negative: b.Negative,
		})
	}
	return series
}

func previews(reviews []domain.Review) []domain.RecentReview {
	out := make([]domain.RecentReview, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, domain.RecentReview{
			Text:       Truncate(r.ReviewText, PreviewLength),
			Sentiment:  r.Sentiment,
			Confidence: r.Confidence,
		})
	}
	return out
}

// Truncate cuts s to limit characters and appends "..." when anything was cut.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + ellipsis
}

// MonthName is the three-letter English abbreviation, e.g. "Mar".
func MonthName(m time.Month) string {
	return m.String()[:3]
}
