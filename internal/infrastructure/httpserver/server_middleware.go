package httpserver

import (
	"github.com/labstack/echo/v4/middleware"
)

// setupMiddleware installs the global chain. RequestID must precede the
// request logger, which reads the generated ID off the response header.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORS())
	s.echo.Use(middleware.RequestID())

	s.echo.Use(s.middleware.Metrics.CollectHTTPMetrics())
	s.echo.Use(s.middleware.Logging.RequestLogging())
}
