package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/thepotential/verification-service/internal/core/domain/account"
	"github.com/thepotential/verification-service/internal/core/ports"
)

const claimsContextKey = "session_claims"

// JWTMiddleware guards routes behind a valid access token.
type JWTMiddleware struct {
	sessions ports.SessionService
	logger   *logrus.Logger
}

func NewJWTMiddleware(sessions ports.SessionService, logger *logrus.Logger) *JWTMiddleware {
	return &JWTMiddleware{sessions: sessions, logger: logger}
}

// RequireJWT validates the Bearer token and stores its claims in context.
func (m *JWTMiddleware) RequireJWT() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			claims, err := m.sessions.Validate(c.Request().Context(), token)
			if err != nil {
				if m.logger != nil {
					m.logger.WithError(err).Debug("rejected access token")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			c.Set(claimsContextKey, claims)
			return next(c)
		}
	}
}

// RequireAdmin rejects non-admin sessions. Must run after RequireJWT.
func (m *JWTMiddleware) RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFromContext(c)
			if claims == nil || claims.Role != account.RoleAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "admin role required")
			}
			return next(c)
		}
	}
}
