package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/thepotential/verification-service/internal/core/domain/account"
)

// purgeTokens removes every stored token, or only those under a key prefix
// when one is supplied. Intended for operational cleanup.
func (s *Server) purgeTokens(c echo.Context) error {
	var req account.PurgeTokensRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Prefix == "" {
		req.Prefix = c.QueryParam("prefix")
	}

	removed, err := s.verificationSvc.PurgeAll(c.Request().Context(), req.Prefix)
	if err != nil {
		s.logger.WithError(err).Error("token purge failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to purge tokens")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"removed": removed,
	})
}

// getAccount returns a single account by ID.
func (s *Server) getAccount(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user ID")
	}

	acct, err := s.accountSvc.GetAccount(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "account not found")
		}
		s.logger.WithError(err).Error("account lookup failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch account")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    acct,
	})
}

// deleteAccount removes an account and all tokens issued to it.
func (s *Server) deleteAccount(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user ID")
	}

	if err := s.accountSvc.DeleteAccount(c.Request().Context(), id); err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "account not found")
		}
		s.logger.WithError(err).Error("account deletion failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete account")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}
