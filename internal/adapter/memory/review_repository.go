// Package memory provides a process-local ReviewRepository for development and tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/domain"
)

// ReviewRepo keeps reviews in a slice guarded by a RWMutex. Contents are lost
// on restart.
type ReviewRepo struct {
	clock   clockwork.Clock
	mu      sync.RWMutex
	reviews []domain.Review
	nextID  int64
}

var _ domain.ReviewRepository = (*ReviewRepo)(nil)

func NewReviewRepo(clock clockwork.Clock) *ReviewRepo {
	return &ReviewRepo{clock: clock}
}

func (r *ReviewRepo) Insert(_ context.Context, review domain.NewReview) (domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	stored := domain.Review{
		ID:         r.nextID,
		GameName:   review.GameName,
		ReviewText: review.ReviewText,
		Sentiment:  review.Sentiment,
		Confidence: review.Confidence,
		CreatedAt:  r.clock.Now().UTC().Truncate(time.Second),
	}
	r.reviews = append(r.reviews, stored)
	return stored, nil
}

func (r *ReviewRepo) CountBySentiment(_ context.Context, gameQuery string) (domain.SentimentCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := domain.SentimentCounts{}
	for _, rev := range r.matching(gameQuery) {
		counts[rev.Sentiment]++
	}
	return counts, nil
}

func (r *ReviewRepo) Recent(_ context.Context, gameQuery string, limit int) ([]domain.Review, error) {
	r.mu.RLock()
	matches := r.matching(gameQuery)
	r.mu.RUnlock()

	slices.SortFunc(matches, func(a, b domain.Review) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	if limit >= 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (r *ReviewRepo) MonthlyCounts(_ context.Context, gameQuery string, since time.Time) ([]domain.MonthlyCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type key struct {
		year      int
		month     time.Month
		sentiment domain.Sentiment
	}
	groups := make(map[key]int)
	for _, rev := range r.matching(gameQuery) {
		if rev.CreatedAt.Before(since) {
			continue
		}
		groups[key{rev.CreatedAt.Year(), rev.CreatedAt.Month(), rev.Sentiment}]++
	}

	out := make([]domain.MonthlyCount, 0, len(groups))
	for k, n := range groups {
		out = append(out, domain.MonthlyCount{Year: k.year, Month: k.month, Sentiment: k.sentiment, Count: n})
	}
	slices.SortFunc(out, func(a, b domain.MonthlyCount) int {
		return cmp.Or(
			cmp.Compare(a.Year, b.Year),
			cmp.Compare(a.Month, b.Month),
			cmp.Compare(a.Sentiment, b.Sentiment),
		)
	})
	return out, nil
}

func (r *ReviewRepo) Ping(context.Context) error { return nil }

// matching returns a copy of the labelled reviews whose game name contains
// query, ignoring case. Callers hold at least the read lock.
func (r *ReviewRepo) matching(query string) []domain.Review {
	q := strings.ToLower(query)
	labels := domain.Labels()
	var out []domain.Review
	for _, rev := range r.reviews {
		if !slices.Contains(labels, string(rev.Sentiment)) {
			continue
		}
		if strings.Contains(strings.ToLower(rev.GameName), q) {
			out = append(out, rev)
		}
	}
	return out
}
