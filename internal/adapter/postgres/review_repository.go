package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/adapter/sqlmatch"
	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/domain"
)

const (
	insertReview = `
INSERT INTO reviews (game_name, review_text, sentiment, confidence)
VALUES ($1, $2, $3, $4)
RETURNING id, game_name, review_text, sentiment, confidence, "timestamp"`

	countBySentiment = `
SELECT sentiment, COUNT(*) AS count
FROM reviews
WHERE LOWER(game_name) LIKE $1 ESCAPE '\'
GROUP BY sentiment`

	recentReviews = `
SELECT id, game_name, review_text, sentiment, confidence, "timestamp"
FROM reviews
WHERE LOWER(game_name) LIKE $1 ESCAPE '\'
ORDER BY "timestamp" DESC, id DESC
LIMIT $2`

	monthlyCounts = `
SELECT EXTRACT(YEAR FROM "timestamp" AT TIME ZONE 'UTC')::int  AS year,
       EXTRACT(MONTH FROM "timestamp" AT TIME ZONE 'UTC')::int AS month,
       sentiment,
       COUNT(*) AS count
FROM reviews
WHERE LOWER(game_name) LIKE $1 ESCAPE '\' AND "timestamp" >= $2
GROUP BY year, month, sentiment
ORDER BY year, month, sentiment`
)

type reviewRow struct {
	ID         int64     `db:"id"`
	GameName   string    `db:"game_name"`
	ReviewText string    `db:"review_text"`
	Sentiment  string    `db:"sentiment"`
	Confidence float64   `db:"confidence"`
	Timestamp  time.Time `db:"timestamp"`
}

type monthlyRow struct {
	Year      int    `db:"year"`
	Month     int    `db:"month"`
	Sentiment string `db:"sentiment"`
	Count     int    `db:"count"`
}

type ReviewRepo struct {
	pool *pgxpool.Pool
}

var _ domain.ReviewRepository = (*ReviewRepo)(nil)

func NewReviewRepo(pool *pgxpool.Pool) *ReviewRepo {
	return &ReviewRepo{pool: pool}
}

func toDomainReview(row reviewRow) domain.Review {
	return domain.Review{
		ID:         row.ID,
		GameName:   row.GameName,
		ReviewText: row.ReviewText,
		Sentiment:  domain.Sentiment(row.Sentiment),
		Confidence: row.Confidence,
		CreatedAt:  row.Timestamp.UTC(),
	}
}

func (r *ReviewRepo) Insert(ctx context.Context, review domain.NewReview) (domain.Review, error) {
	rows, _ := r.pool.Query(ctx, insertReview, review.GameName, review.ReviewText, string(review.Sentiment), review.Confidence)
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[reviewRow])
	if err != nil {
		return domain.Review{}, fmt.Errorf("failed to insert review: %w", err)
	}
	return toDomainReview(row), nil
}

func (r *ReviewRepo) CountBySentiment(ctx context.Context, gameQuery string) (domain.SentimentCounts, error) {
	rows, _ := r.pool.Query(ctx, countBySentiment, sqlmatch.Contains(gameQuery))

	counts := domain.SentimentCounts{}
	var (
		sentiment string
		count     int
	)
	_, err := pgx.ForEachRow(rows, []any{&sentiment, &count}, func() error {
		counts[domain.Sentiment(sentiment)] = count
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}
	return counts, nil
}

func (r *ReviewRepo) Recent(ctx context.Context, gameQuery string, limit int) ([]domain.Review, error) {
	rows, _ := r.pool.Query(ctx, recentReviews, sqlmatch.Contains(gameQuery), limit)
	collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[reviewRow])
	if err != nil {
		return nil, fmt.Errorf("failed to load recent reviews: %w", err)
	}

	reviews := make([]domain.Review, 0, len(collected))
	for _, row := range collected {
		reviews = append(reviews, toDomainReview(row))
	}
	return reviews, nil
}

func (r *ReviewRepo) MonthlyCounts(ctx context.Context, gameQuery string, since time.Time) ([]domain.MonthlyCount, error) {
	rows, _ := r.pool.Query(ctx, monthlyCounts, sqlmatch.Contains(gameQuery), since)
	collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[monthlyRow])
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly counts: %w", err)
	}

	out := make([]domain.MonthlyCount, 0, len(collected))
	for _, row := range collected {
		out = append(out, domain.MonthlyCount{
			Year:      row.Year,
			Month:     time.Month(row.Month),
			Sentiment: domain.Sentiment(row.Sentiment),
			Count:     row.Count,
		})
	}
	return out, nil
}

func (r *ReviewRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
