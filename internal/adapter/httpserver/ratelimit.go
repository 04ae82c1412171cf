package httpserver

import (
	"math"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	apperrors "github.com/Mahesh-Wijerathna/game-review-sentiment/internal/platform/errors"
)

// limiterIdleExpiry drops per-client buckets nobody has touched for a while.
const limiterIdleExpiry = 5 * time.Minute

// predictionLimit throttles classification per client IP. Only predictions
// are limited: they are the calls that cost model time and write a row.
type predictionLimit struct {
	perSecond float64
	burst     int
}

func (l predictionLimit) middleware() echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(l.perSecond),
		Burst:     l.burst,
		ExpiresIn: limiterIdleExpiry,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		Store:       store,
		DenyHandler: l.deny,
	})
}

func (l predictionLimit) deny(c echo.Context, _ string, _ error) error {
	wait := l.retryAfterSeconds()
	c.Response().Header().Set(echo.HeaderRetryAfter, strconv.Itoa(wait))
	return HandleError(c, apperrors.RateLimitedError("too many predictions, retry later").
		WithField("retry_after_seconds", wait))
}

// retryAfterSeconds is how long one token takes to refill, at least a second.
func (l predictionLimit) retryAfterSeconds() int {
	if l.perSecond <= 0 {
		return 1
	}
	return max(1, int(math.Ceil(1/l.perSecond)))
}
