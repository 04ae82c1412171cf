package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
)

// Labels lists the stored sentiment values. Rows carrying anything else
// predate validation and are left out of analytics.
func Labels() []string {
	return []string{string(SentimentPositive), string(SentimentNegative)}
}

// DefaultGameName is stored when a prediction request names no game.
const DefaultGameName = "Unknown"

// MaxGameNameLength bounds game names in characters.
const MaxGameNameLength = 200

func ParseSentiment(s string) (Sentiment, error) {
	switch Sentiment(strings.ToLower(strings.TrimSpace(s))) {
	case SentimentPositive:
		return SentimentPositive, nil
	case SentimentNegative:
		return SentimentNegative, nil
	default:
		return "", fmt.Errorf("unknown sentiment %q", s)
	}
}

// Review is one stored prediction. Rows are append-only.
type Review struct {
	ID         int64
	GameName   string
	ReviewText string
	Sentiment  Sentiment
	Confidence float64
	CreatedAt  time.Time
}

// NewReview is the insert payload; ID and CreatedAt are assigned by the store.
type NewReview struct {
	GameName   string
	ReviewText string
	Sentiment  Sentiment
	Confidence float64
}

type ReviewRepository interface {
	Insert(ctx context.Context, review NewReview) (Review, error)
	CountBySentiment(ctx context.Context, gameQuery string) (SentimentCounts, error)
	Recent(ctx context.Context, gameQuery string, limit int) ([]Review, error)
	MonthlyCounts(ctx context.Context, gameQuery string, since time.Time) ([]MonthlyCount, error)
	Ping(ctx context.Context) error
}
