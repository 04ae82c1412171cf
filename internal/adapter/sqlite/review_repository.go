package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"

	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/adapter/sqlmatch"
	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/domain"
)

// timestampLayout is SQLite's CURRENT_TIMESTAMP format. Stored values use it
// so text comparison orders them chronologically.
const timestampLayout = "2006-01-02 15:04:05"

const matchClause = unicodeLower + `(game_name) LIKE ? ESCAPE '\'`

type reviewRow struct {
	ID         int64   `gorm:"column:id;primaryKey;autoIncrement"`
	GameName   string  `gorm:"column:game_name"`
	ReviewText string  `gorm:"column:review_text"`
	Sentiment  string  `gorm:"column:sentiment"`
	Confidence float64 `gorm:"column:confidence"`
	Timestamp  string  `gorm:"column:timestamp"`
}

func (reviewRow) TableName() string { return "reviews" }

type ReviewRepo struct {
	db    *gorm.DB
	clock clockwork.Clock
}

var _ domain.ReviewRepository = (*ReviewRepo)(nil)

func NewReviewRepo(db *gorm.DB, clock clockwork.Clock) *ReviewRepo {
	return &ReviewRepo{db: db, clock: clock}
}

func toDomainReview(row reviewRow) (domain.Review, error) {
	createdAt, err := time.ParseInLocation(timestampLayout, row.Timestamp, time.UTC)
	if err != nil {
		return domain.Review{}, fmt.Errorf("failed to parse timestamp of review %d: %w", row.ID, err)
	}
	return domain.Review{
		ID:         row.ID,
		GameName:   row.GameName,
		ReviewText: row.ReviewText,
		Sentiment:  domain.Sentiment(row.Sentiment),
		Confidence: row.Confidence,
		CreatedAt:  createdAt,
	}, nil
}

func (r *ReviewRepo) Insert(ctx context.Context, review domain.NewReview) (domain.Review, error) {
	row := reviewRow{
		GameName:   review.GameName,
		ReviewText: review.ReviewText,
		Sentiment:  string(review.Sentiment),
		Confidence: review.Confidence,
		Timestamp:  r.clock.Now().UTC().Format(timestampLayout),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Review{}, fmt.Errorf("failed to insert review: %w", err)
	}
	return toDomainReview(row)
}

func (r *ReviewRepo) CountBySentiment(ctx context.Context, gameQuery string) (domain.SentimentCounts, error) {
	var rows []struct {
		Sentiment string
		Count     int
	}
	err := r.db.WithContext(ctx).
		Model(&reviewRow{}).
		Select("sentiment, COUNT(*) AS count").
		Where(matchClause, sqlmatch.Contains(gameQuery)).
		Where("sentiment IN ?", domain.Labels()).
		Group("sentiment").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	counts := make(domain.SentimentCounts, len(rows))
	for _, row := range rows {
		counts[domain.Sentiment(row.Sentiment)] = row.Count
	}
	return counts, nil
}

func (r *ReviewRepo) Recent(ctx context.Context, gameQuery string, limit int) ([]domain.Review, error) {
	var rows []reviewRow
	err := r.db.WithContext(ctx).
		Select("id, game_name, review_text, sentiment, confidence, strftime('%Y-%m-%d %H:%M:%S', timestamp) AS timestamp").
		Where(matchClause, sqlmatch.Contains(gameQuery)).
		Where("sentiment IN ?", domain.Labels()).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent reviews: %w", err)
	}

	reviews := make([]domain.Review, 0, len(rows))
	for _, row := range rows {
		rev, err := toDomainReview(row)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, nil
}

func (r *ReviewRepo) MonthlyCounts(ctx context.Context, gameQuery string, since time.Time) ([]domain.MonthlyCount, error) {
	var rows []struct {
		Year      int
		Month     int
		Sentiment string
		Count     int
	}
	err := r.db.WithContext(ctx).
		Model(&reviewRow{}).
		Select(`CAST(strftime('%Y', timestamp) AS INTEGER) AS year,
			CAST(strftime('%m', timestamp) AS INTEGER) AS month,
			sentiment, COUNT(*) AS count`).
		Where(matchClause, sqlmatch.Contains(gameQuery)).
		Where("sentiment IN ?", domain.Labels()).
		Where("timestamp >= ?", since.UTC().Format(timestampLayout)).
		Group("year, month, sentiment").
		Order("year, month, sentiment").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly counts: %w", err)
	}

	out := make([]domain.MonthlyCount, 0, len(rows))
	for _, row := range rows {
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
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
