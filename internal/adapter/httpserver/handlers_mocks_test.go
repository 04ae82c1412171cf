package httpserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/adapter/metrics"
	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/app"
	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/domain"
	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/platform/config"
)

var testNow = time.Date(2025, time.March, 14, 9, 30, 5, 0, time.UTC)

const testRemoteAddr = "203.0.113.7:51234"

// --- Mock implementations ---

type mockAppService struct {
	predictFn         func(ctx context.Context, text, gameName string) (*app.PredictResult, error)
	gameAnalyticsFn   func(ctx context.Context, gameName string) (*domain.AnalyticsResult, error)
	testPredictionsFn func(ctx context.Context) *app.SampleReport
	healthFn          func() app.HealthReport
}

func (m *mockAppService) Predict(ctx context.Context, text, gameName string) (*app.PredictResult, error) {
	if m.predictFn != nil {
		return m.predictFn(ctx, text, gameName)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAppService) GameAnalytics(ctx context.Context, gameName string) (*domain.AnalyticsResult, error) {
	if m.gameAnalyticsFn != nil {
		return m.gameAnalyticsFn(ctx, gameName)
	}
	return nil, domain.ErrGameNotFound
}

func (m *mockAppService) TestPredictions(ctx context.Context) *app.SampleReport {
	if m.testPredictionsFn != nil {
		return m.testPredictionsFn(ctx)
	}
	return &app.SampleReport{}
}

func (m *mockAppService) Health() app.HealthReport {
	if m.healthFn != nil {
		return m.healthFn()
	}
	return app.HealthReport{
		Model:     domain.ModelStatus{Loaded: true, Name: "test", Device: "cpu"},
		Timestamp: testNow,
	}
}

// --- Test helpers ---

func testConfig() *config.Config {
	return &config.Config{
		Host:           "127.0.0.1",
		Port:           "0",
		CORSOrigins:    "http://localhost:3000",
		RateLimitRPS:   100,
		RateLimitBurst: 100,
	}
}

func newTestServer(t *testing.T, app appService, opts ...func(*Server)) *Server {
	t.Helper()

	e := echo.New()
	e.Validator = newRequestValidator()

	srv := &Server{
		echo:      e,
		config:    testConfig(),
		app:       app,
		startTime: time.Now(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	// Register routes so endpoints are available for testing
	srv.registerRoutes()

	return srv
}

func withHealthChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) {
		s.healthChecks = checks
	}
}

func withConfig(mutate func(*config.Config)) func(*Server) {
	return func(s *Server) {
		mutate(s.config)
	}
}

func withRegistry(reg *prometheus.Registry) func(*Server) {
	return func(s *Server) {
		s.registry = reg
		s.httpMetrics = metrics.NewHTTPMetrics(reg)
	}
}

// callHandler wraps a handler with error middleware, matching production behavior
func callHandler(handler echo.HandlerFunc, c echo.Context) error {
	return ErrorHandlingMiddleware()(handler)(c)
}
