package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// LoggingMiddleware emits one structured line per request. The client IP
// and request ID matter most here: token issuance is rate limited per IP,
// and the ID ties a redemption failure back to the email that carried the
// link.
type LoggingMiddleware struct {
	logger *logrus.Logger
}

func NewLoggingMiddleware(logger *logrus.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

func (m *LoggingMiddleware) RequestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m.logger == nil {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			fields := logrus.Fields{
				"method":     c.Request().Method,
				"path":       c.Path(),
				"status":     responseStatus(c, err),
				"client_ip":  c.RealIP(),
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
				"latency_ms": time.Since(start).Milliseconds(),
			}
			if err != nil {
				m.logger.WithFields(fields).WithError(err).Warn("request failed")
			} else {
				m.logger.WithFields(fields).Debug("request completed")
			}
			return err
		}
	}
}

// responseStatus resolves the status before echo's error handler has
// written it: an HTTPError carries its own code, any other error is about
// to become a 500.
func responseStatus(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}
