package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/thepotential/verification-service/internal/core/domain/account"
	"github.com/thepotential/verification-service/internal/utils"
)

// signup registers a new account and kicks off email verification. A
// failed email dispatch does not fail signup; the user can resend later.
func (s *Server) signup(c echo.Context) error {
	var req account.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := utils.ValidatePasswordStrength(req.Password); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := s.accountSvc.Signup(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		}
		s.logger.WithError(err).Error("signup failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create account")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success":               true,
		"user":                  result.Account,
		"needEmailVerification": result.NeedEmailVerification,
	})
}

// resendVerification re-issues and re-sends the verification email.
func (s *Server) resendVerification(c echo.Context) error {
	var req account.ResendVerificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := s.accountSvc.ResendVerificationEmail(c.Request().Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, account.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "account not found")
		case errors.Is(err, account.ErrAlreadyVerified):
			return echo.NewHTTPError(http.StatusConflict, "email already verified")
		default:
			s.logger.WithError(err).Error("failed to resend verification email")
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to send verification email")
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}

// sendMagicLink issues a passwordless login link and code. The response is
// identical whether or not the address belongs to an account, so it cannot
// be used to enumerate users.
func (s *Server) sendMagicLink(c echo.Context) error {
	var req account.SendMagicLinkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := s.accountSvc.RequestMagicLink(c.Request().Context(), req.Email); err != nil {
		s.logger.WithError(err).Error("failed to send magic link")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to send login email")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "if the address belongs to an account, a login email is on its way",
	})
}
