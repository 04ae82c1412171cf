package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/adapter/httpserver"
	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/adapter/memory"
	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/adapter/metrics"
	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/adapter/postgres"
	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/adapter/redis"
	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/adapter/sqlite"
	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/analytics"
	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/app"
	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/classifier"
	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/domain"
	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/platform/config"
	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/platform/logging"
	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/platform/version"
)

const (
	storeConnectTimeout = 10 * time.Second
	shutdownTimeout     = 10 * time.Second

	cacheEvictionInterval = time.Minute
)

func runGracefulShutdown(srv *httpserver.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// setupClassifier never fails: without a usable model the server still runs
// and reports model_status "not loaded".
func setupClassifier(cfg *config.Config) domain.Classifier {
	if cfg.ModelEndpoint != "" {
		client, err := classifier.NewRemoteClient(classifier.RemoteConfig{
			Endpoint:  cfg.ModelEndpoint,
			Timeout:   cfg.ModelTimeout,
			MaxLength: cfg.MaxLength,
			BatchSize: cfg.BatchSize,
		})
		if err == nil {
			slog.Info("Using remote classifier", "endpoint", cfg.ModelEndpoint)
			return client
		}
		slog.Error("Failed to configure remote classifier, falling back to local model", "error", err)
	}

	model, err := classifier.Load(cfg.ModelPath, cfg.MaxLength, cfg.BatchSize)
	if err != nil {
		slog.Error("Failed to load model", "path", cfg.ModelPath, "error", err)
	}
	return model
}

// setupStore opens the configured review store and returns a close func.
func setupStore(cfg *config.Config, clock clockwork.Clock, m *metrics.StoreMetrics) (domain.ReviewRepository, func()) {
	ctx, cancel := context.WithTimeout(context.Background(), storeConnectTimeout)
	defer cancel()

	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL, m)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			slog.Error("Failed to create schema", "error", err)
			os.Exit(1)
		}
		return postgres.NewReviewRepo(pool), pool.Close

	case config.StoreMemory:
		slog.Warn("Using in-memory review store, reviews are lost on restart")
		return memory.NewReviewRepo(clock), func() {}

	default:
		db, err := sqlite.Open(ctx, cfg.DatabasePath, m)
		if err != nil {
			slog.Error("Failed to open database", "path", cfg.DatabasePath, "error", err)
			os.Exit(1)
		}
		return sqlite.NewReviewRepo(db, clock), func() {
			if err := sqlite.Close(db); err != nil {
				slog.Error("Failed to close database", "error", err)
			}
		}
	}
}

func setupRedis(ctx context.Context, cfg *config.Config, m *metrics.StoreMetrics) *goredis.Client {
	client, err := redis.NewClient(ctx, cfg.RedisURL, m)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

// setupAnalyzer wraps the aggregator in a result cache: Redis when configured,
// otherwise an in-process cache. A zero ANALYTICS_CACHE_TTL disables caching.
func setupAnalyzer(reviews domain.ReviewRepository, rdb *goredis.Client, cfg *config.Config, clock clockwork.Clock, reg prometheus.Registerer) (domain.Analyzer, func()) {
	aggregator := analytics.NewAggregator(reviews)
	if cfg.AnalyticsCacheTTL <= 0 {
		return aggregator, func() {}
	}

	cacheMetrics := metrics.NewCacheMetrics(reg)
	if rdb != nil {
		cache := redis.NewAnalyticsCache(rdb, cfg.AnalyticsCacheTTL)
		return analytics.NewCachedAnalyzer(aggregator, cache, cacheMetrics), func() {}
	}

	cache := memory.NewAnalyticsCache(cfg.AnalyticsCacheTTL, clock, cacheMetrics)
	stopEviction := cache.StartEvictionTimer(cacheEvictionInterval)
	return analytics.NewCachedAnalyzer(aggregator, cache, cacheMetrics), stopEviction
}

func logBanner(cfg *config.Config, status domain.ModelStatus) {
	slog.Info("Game review sentiment API ready",
		"version", version.Version,
		"addr", cfg.Addr(),
		"store", cfg.StoreDriver,
		"model", status.Name,
		"model_loaded", status.Loaded,
		"device", status.Device,
	)
	for _, ep := range []string{
		"GET  /api/health",
		"POST /api/predict-sentiment",
		"GET  /api/game-analytics/<game_name>",
		"GET  /api/test-prediction",
	} {
		slog.Info("Endpoint", "route", ep)
	}
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	slog.Info("Application starting", "env", cfg.AppEnv, "addr", cfg.Addr())

	reg := metrics.NewRegistry()
	storeMetrics := metrics.NewStoreMetrics(reg)

	model := setupClassifier(cfg)

	reviews, closeStore := setupStore(cfg, clock, storeMetrics)
	defer closeStore()

	healthChecks := []httpserver.HealthCheck{
		{Name: "review_store", Check: reviews.Ping},
	}

	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient = setupRedis(context.Background(), cfg, storeMetrics)
		defer func() { _ = redisClient.Close() }()

		healthChecks = append(healthChecks, httpserver.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}

	analyzer, stopCache := setupAnalyzer(reviews, redisClient, cfg, clock, reg)
	defer stopCache()

	appSvc := app.NewService(model, reviews, analyzer, clock, metrics.NewPredictionMetrics(reg))

	srv := httpserver.NewServer(cfg, appSvc, healthChecks, reg)

	done := runGracefulShutdown(srv)

	logBanner(cfg, model.Status())
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
