package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/thepotential/verification-service/internal/core/domain/session"
	"github.com/thepotential/verification-service/internal/core/ports"
)

// Collection holds all middleware instances
type Collection struct {
	JWT       *JWTMiddleware
	Logging   *LoggingMiddleware
	RateLimit *RateLimitMiddleware
	Metrics   *MetricsMiddleware
}

// NewCollection creates a new collection of all middleware
func NewCollection(
	sessions ports.SessionService,
	counter WindowCounter,
	rateLimit int,
	rateWindow time.Duration,
	rateKeyPrefix string,
	logger *logrus.Logger,
	requestsTotal *prometheus.CounterVec,
	requestDuration *prometheus.HistogramVec,
) *Collection {
	return &Collection{
		JWT:       NewJWTMiddleware(sessions, logger),
		Logging:   NewLoggingMiddleware(logger),
		RateLimit: NewRateLimitMiddleware(counter, rateLimit, rateWindow, rateKeyPrefix, logger),
		Metrics:   NewMetricsMiddleware(requestsTotal, requestDuration),
	}
}

// ClaimsFromContext returns the session claims set by RequireJWT, or nil.
func ClaimsFromContext(c echo.Context) *session.Claims {
	claims, _ := c.Get(claimsContextKey).(*session.Claims)
	return claims
}
