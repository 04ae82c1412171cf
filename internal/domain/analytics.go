package domain

import (
	"context"
	"time"
)

// SentimentCounts holds grouped counts; labels with no rows are simply absent.
type SentimentCounts map[Sentiment]int

func (c SentimentCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// MonthlyCount is one (year, month, sentiment) group from the store.
type MonthlyCount struct {
	Year      int
	Month     time.Month
	Sentiment Sentiment
	Count     int
}

type SentimentBreakdown struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
}

type MonthlyPoint struct {
	Month    string `json:"month"`
	Positive int    `json:"positive"`
	Negative int    `json:"negative"`
}

type RecentReview struct {
	Text       string    `json:"text"`
	Sentiment  Sentiment `json:"sentiment"`
	Confidence float64   `json:"confidence"`
}

type AnalyticsResult struct {
	TotalReviews  int                `json:"totalReviews"`
	Sentiment     SentimentBreakdown `json:"sentiment"`
	MonthlyData   []MonthlyPoint     `json:"monthlyData"`
	RecentReviews []RecentReview     `json:"recentReviews"`
}

// Analyzer builds the analytics payload for games whose name contains gameQuery.
// Returns ErrGameNotFound when nothing matches.
type Analyzer interface {
	Aggregate(ctx context.Context, gameQuery string, now time.Time) (*AnalyticsResult, error)
}
