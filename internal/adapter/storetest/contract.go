// Package storetest holds the behavior every domain.ReviewRepository must share.
// Adapter tests call RunContract with a factory returning an empty repository.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/domain"
)

type Factory func(t *testing.T) domain.ReviewRepository

func RunContract(t *testing.T, newRepo Factory) {
	t.Helper()

	t.Run("InsertAssignsIncreasingIDs", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first := mustInsert(t, repo, "Hades", "Great runs", domain.SentimentPositive, 0.9)
		second := mustInsert(t, repo, "Hades", "Too hard", domain.SentimentNegative, 0.7)

		assert.Greater(t, second.ID, first.ID)
		assert.False(t, first.CreatedAt.IsZero())
		assert.Equal(t, "Hades", first.GameName)
		assert.InDelta(t, 0.9, first.Confidence, 1e-9)
		require.NoError(t, repo.Ping(ctx))
	})

	t.Run("CaseInsensitiveSubstringMatch", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		mustInsert(t, repo, "Elden Ring", "Amazing world", domain.SentimentPositive, 0.95)
		mustInsert(t, repo, "Elden Ring", "Great bosses", domain.SentimentPositive, 0.9)
		mustInsert(t, repo, "ELDEN RING: Nightreign", "Loved it", domain.SentimentPositive, 0.8)
		mustInsert(t, repo, "Elden Ring", "Terrible performance", domain.SentimentNegative, 0.85)
		mustInsert(t, repo, "Dark Souls", "Classic", domain.SentimentPositive, 0.9)

		counts, err := repo.CountBySentiment(ctx, "elden")
		require.NoError(t, err)
		assert.Equal(t, 3, counts[domain.SentimentPositive])
		assert.Equal(t, 1, counts[domain.SentimentNegative])
		assert.Equal(t, 4, counts.Total())

		none, err := repo.CountBySentiment(ctx, "Nonexistent Game XYZ")
		require.NoError(t, err)
		assert.Zero(t, none.Total())
	})

	t.Run("NonASCIIMatchIgnoresCase", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		elden := mustInsert(t, repo, "ÉLDEN RING", "Magnifique", domain.SentimentPositive, 0.9)
		mustInsert(t, repo, "Ōkami HD", "Beautiful brushwork", domain.SentimentPositive, 0.85)

		counts, err := repo.CountBySentiment(ctx, "élden")
		require.NoError(t, err)
		assert.Equal(t, 1, counts.Total())

		recent, err := repo.Recent(ctx, "ŌKAMI", 10)
		require.NoError(t, err)
		require.Len(t, recent, 1)
		assert.Equal(t, "Ōkami HD", recent[0].GameName)

		rows, err := repo.MonthlyCounts(ctx, "Élden", elden.CreatedAt.AddDate(0, -1, 0))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, 1, rows[0].Count)
	})

	t.Run("WildcardsMatchLiterally", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		mustInsert(t, repo, "100% Orange Juice", "Chaos", domain.SentimentPositive, 0.6)
		mustInsert(t, repo, "Half-Life", "Classic", domain.SentimentPositive, 0.9)

		pct, err := repo.CountBySentiment(ctx, "%")
		require.NoError(t, err)
		assert.Equal(t, 1, pct.Total())

		underscore, err := repo.CountBySentiment(ctx, "_")
		require.NoError(t, err)
		assert.Zero(t, underscore.Total())
	})

	t.Run("RecentNewestFirstWithLimit", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		var last domain.Review
		for i := range 12 {
			last = mustInsert(t, repo, "Celeste", string(rune('a'+i)), domain.SentimentPositive, 0.75)
		}

		recent, err := repo.Recent(ctx, "celeste", 10)
		require.NoError(t, err)
		require.Len(t, recent, 10)
		assert.Equal(t, last.ID, recent[0].ID)
		for i := 1; i < len(recent); i++ {
			assert.False(t, recent[i].CreatedAt.After(recent[i-1].CreatedAt))
			if recent[i].CreatedAt.Equal(recent[i-1].CreatedAt) {
				assert.Less(t, recent[i].ID, recent[i-1].ID)
			}
		}
	})

	t.Run("MonthlyCountsRespectsSince", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		r := mustInsert(t, repo, "Tetris", "Timeless", domain.SentimentPositive, 0.99)
		mustInsert(t, repo, "Tetris", "Boring", domain.SentimentNegative, 0.6)

		rows, err := repo.MonthlyCounts(ctx, "tetris", r.CreatedAt.AddDate(0, -1, 0))
		require.NoError(t, err)

		total := 0
		for _, row := range rows {
			assert.Equal(t, r.CreatedAt.UTC().Year(), row.Year)
			assert.Equal(t, r.CreatedAt.UTC().Month(), row.Month)
			total += row.Count
		}
		assert.Equal(t, 2, total)

		future, err := repo.MonthlyCounts(ctx, "tetris", time.Now().AddDate(1, 0, 0))
		require.NoError(t, err)
		assert.Empty(t, future)
	})
}

func mustInsert(t *testing.T, repo domain.ReviewRepository, game, text string, s domain.Sentiment, conf float64) domain.Review {
	t.Helper()
	r, err := repo.Insert(context.Background(), domain.NewReview{
		GameName:   game,
		ReviewText: text,
		Sentiment:  s,
		Confidence: conf,
	})
	require.NoError(t, err)
	return r
}
