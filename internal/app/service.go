package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"

	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/adapter/metrics"
	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/domain"
)

// SampleTexts are scored by TestPredictions to check the model end to end.
var SampleTexts = []string{
	"This game is absolutely amazing! Great graphics and gameplay.",
	"Terrible game, full of bugs and disappointing gameplay.",
	"It's an okay game, not the best but playable.",
}

// PredictResult is the outcome of Predict. Stored is false when the review
// could not be persisted; the prediction itself is still valid.
type PredictResult struct {
	Prediction domain.Prediction
	Timestamp  time.Time
	Stored     bool
	ReviewID   int64
}

type SampleResult struct {
	Text       string
	Prediction *domain.Prediction // nil when scoring failed
}

type SampleReport struct {
	Results     []SampleResult
	ModelLoaded bool
}

type HealthReport struct {
	Model     domain.ModelStatus
	Timestamp time.Time
}

// analyticsInvalidator is implemented by analyzers that cache results.
type analyticsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Service is the application layer. It is constructed once at startup and
// shared by all requests.
type Service struct {
	classifier domain.Classifier
	reviews    domain.ReviewRepository
	analyzer   domain.Analyzer
	clock      clockwork.Clock
	metrics    *metrics.PredictionMetrics
}

// NewService creates the application service. m may be nil.
func NewService(classifier domain.Classifier, reviews domain.ReviewRepository, analyzer domain.Analyzer, clock clockwork.Clock, m *metrics.PredictionMetrics) *Service {
	return &Service{
		classifier: classifier,
		reviews:    reviews,
		analyzer:   analyzer,
		clock:      clock,
		metrics:    m,
	}
}

// Predict scores text and stores the review under gameName ("Unknown" when
// blank). A storage failure is logged and reported through Stored=false.
func (s *Service) Predict(ctx context.Context, text, gameName string) (*PredictResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyText
	}

	gameName = strings.TrimSpace(gameName)
	if gameName == "" {
		gameName = domain.DefaultGameName
	}
	if utf8.RuneCountInString(gameName) > domain.MaxGameNameLength {
		return nil, domain.ErrGameNameTooLong
	}

	start := s.clock.Now()
	prediction, err := s.classifier.Predict(ctx, text)
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.InferenceDuration.Observe(s.clock.Since(start).Seconds())
		s.metrics.Predictions.WithLabelValues(string(prediction.Sentiment)).Inc()
	}

	result := &PredictResult{
		Prediction: prediction,
		Timestamp:  s.clock.Now(),
	}

	review, err := s.reviews.Insert(ctx, domain.NewReview{
		GameName:   gameName,
		ReviewText: text,
		Sentiment:  prediction.Sentiment,
		Confidence: prediction.Confidence,
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to store review", "game_name", gameName, "error", err)
		if s.metrics != nil {
			s.metrics.StoreFailures.Inc()
		}
		return result, nil
	}

	result.Stored = true
	result.ReviewID = review.ID
	s.invalidateAnalytics(ctx)
	return result, nil
}

// GameAnalytics aggregates the reviews of every game whose name contains gameName.
func (s *Service) GameAnalytics(ctx context.Context, gameName string) (*domain.AnalyticsResult, error) {
	gameName = strings.TrimSpace(gameName)
	if gameName == "" {
		return nil, domain.ErrInvalidGameName
	}
	if utf8.RuneCountInString(gameName) > domain.MaxGameNameLength {
		return nil, domain.ErrGameNameTooLong
	}

	return s.analyzer.Aggregate(ctx, gameName, s.clock.Now())
}

// TestPredictions scores SampleTexts in one batch. Nothing is stored.
func (s *Service) TestPredictions(ctx context.Context) *SampleReport {
	report := &SampleReport{ModelLoaded: s.classifier.Status().Loaded}

	for _, r := range s.classifier.PredictBatch(ctx, SampleTexts) {
		sample := SampleResult{Text: r.Text}
		if r.Err != nil {
			slog.WarnContext(ctx, "Sample prediction failed", "text", r.Text, "error", r.Err)
		} else {
			p := r.Prediction
			sample.Prediction = &p
		}
		report.Results = append(report.Results, sample)
	}
	return report
}

func (s *Service) Health() HealthReport {
	return HealthReport{
		Model:     s.classifier.Status(),
		Timestamp: s.clock.Now(),
	}
}

// Ping checks the review store.
func (s *Service) Ping(ctx context.Context) error {
	return s.reviews.Ping(ctx)
}

func (s *Service) invalidateAnalytics(ctx context.Context) {
	inv, ok := s.analyzer.(analyticsInvalidator)
	if !ok {
		return
	}
	if err := inv.Invalidate(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to invalidate analytics cache", "error", err)
	}
}

func (s *Service) recordFailure(err error) {
	if s.metrics == nil {
		return
	}
	reason := "inference"
	if errors.Is(err, domain.ErrModelNotLoaded) {
		reason = "model_not_loaded"
	}
	s.metrics.Failures.WithLabelValues(reason).Inc()
}
