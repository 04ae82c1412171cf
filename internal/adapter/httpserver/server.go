package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/adapter/metrics"
	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/app"
	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/domain"
	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/platform/config"
)

type appService interface {
	Predict(ctx context.Context, text, gameName string) (*app.PredictResult, error)
	GameAnalytics(ctx context.Context, gameName string) (*domain.AnalyticsResult, error)
	TestPredictions(ctx context.Context) *app.SampleReport
	Health() app.HealthReport
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app          appService
	healthChecks []HealthCheck

	registry    *prometheus.Registry
	httpMetrics *metrics.HTTPMetrics
	startTime   time.Time
}

// NewServer wires routes and middleware. reg may be nil, in which case
// /metrics is not served and request metrics are not recorded.
func NewServer(cfg *config.Config, app appService, healthChecks []HealthCheck, reg *prometheus.Registry) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()

	srv := &Server{
		echo:         e,
		config:       cfg,
		app:          app,
		healthChecks: healthChecks,
		registry:     reg,
		startTime:    time.Now(),
	}
	if reg != nil {
		srv.httpMetrics = metrics.NewHTTPMetrics(reg)
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "addr", s.config.Addr())
	if err := s.echo.Start(s.config.Addr()); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
