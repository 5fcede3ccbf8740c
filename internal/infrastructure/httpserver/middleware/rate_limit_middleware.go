package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// WindowCounter is the counter storage the limiter needs; implemented by
// the Redis rate limit repository.
type WindowCounter interface {
	IncrementWindow(ctx context.Context, clientKey string, window time.Duration, keyPrefix string) (int, time.Time, error)
}

// RateLimitMiddleware applies a fixed-window per-client-IP limit. Intended
// for the token-issuing routes, which trigger outbound email.
type RateLimitMiddleware struct {
	counter   WindowCounter
	limit     int
	window    time.Duration
	keyPrefix string
	logger    *logrus.Logger
}

func NewRateLimitMiddleware(counter WindowCounter, limit int, window time.Duration, keyPrefix string, logger *logrus.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{counter: counter, limit: limit, window: window, keyPrefix: keyPrefix, logger: logger}
}

func (r *RateLimitMiddleware) Handler() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if r.counter == nil || r.limit <= 0 {
				return next(c)
			}

			count, windowStart, err := r.counter.IncrementWindow(c.Request().Context(), c.RealIP(), r.window, r.keyPrefix)
			if err != nil {
				if r.logger != nil {
					r.logger.WithError(err).Warn("rate limiter error; allowing request (fail-open)")
				}
				return next(c)
			}

			remaining := r.limit - count
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(r.limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			c.Response().Header().Set("X-RateLimit-Reset", strconv.FormatInt(windowStart.Add(r.window).Unix(), 10))

			if count > r.limit {
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
