package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/thepotential/verification-service/internal/core/domain/account"
	"github.com/thepotential/verification-service/internal/core/domain/token"
)

// verifyEmail consumes an email-verification token. The GET form serves an
// HTML result page for links clicked from an email client; the POST form
// returns JSON for API callers. Both accept the token as a query parameter
// or JSON body field.
func (s *Server) verifyEmail(c echo.Context) error {
	wantsHTML := c.Request().Method == http.MethodGet

	tok := c.QueryParam("token")
	if tok == "" && !wantsHTML {
		var body account.VerifyEmailRequest
		if err := c.Bind(&body); err == nil {
			tok = body.Token
		}
	}
	if tok == "" {
		return s.verifyEmailResult(c, wantsHTML, http.StatusBadRequest, "missing verification token", nil)
	}

	acct, err := s.verificationSvc.VerifyEmail(c.Request().Context(), tok)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrNotFound):
			return s.verifyEmailResult(c, wantsHTML, http.StatusNotFound, "verification link is invalid or was already used", nil)
		case errors.Is(err, token.ErrExpired):
			return s.verifyEmailResult(c, wantsHTML, http.StatusGone, "verification link has expired, request a new one", nil)
		case errors.Is(err, account.ErrNotFound):
			return s.verifyEmailResult(c, wantsHTML, http.StatusNotFound, "account no longer exists", nil)
		default:
			s.logger.WithError(err).Error("email verification failed")
			return s.verifyEmailResult(c, wantsHTML, http.StatusInternalServerError, "verification failed, please try again", nil)
		}
	}

	return s.verifyEmailResult(c, wantsHTML, http.StatusOK, "email verified successfully", acct)
}

func (s *Server) verifyEmailResult(c echo.Context, wantsHTML bool, code int, message string, acct *account.Account) error {
	if wantsHTML {
		title := "Verification failed"
		if code == http.StatusOK {
			title = "Email verified"
		}
		return c.HTML(code, resultPage(title, message))
	}
	if code != http.StatusOK {
		return echo.NewHTTPError(code, message)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": message,
		"user":    acct,
	})
}

// verifyMagicLink consumes a login link token and serves an HTML page that
// hands the minted session to the frontend via an inline script payload.
func (s *Server) verifyMagicLink(c echo.Context) error {
	tok := c.QueryParam("token")
	if tok == "" {
		return c.HTML(http.StatusBadRequest, resultPage("Login failed", "missing login token"))
	}

	acct, sess, err := s.verificationSvc.VerifyMagicLink(c.Request().Context(), tok)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrNotFound):
			return c.HTML(http.StatusNotFound, resultPage("Login failed", "login link is invalid or was already used"))
		case errors.Is(err, token.ErrExpired):
			return c.HTML(http.StatusGone, resultPage("Login failed", "login link has expired, request a new one"))
		case errors.Is(err, account.ErrNotFound):
			return c.HTML(http.StatusNotFound, resultPage("Login failed", "account no longer exists"))
		default:
			s.logger.WithError(err).Error("magic link verification failed")
			return c.HTML(http.StatusInternalServerError, resultPage("Login failed", "login failed, please try again"))
		}
	}

	payload, err := json.Marshal(map[string]interface{}{
		"session": sess,
		"user":    acct,
	})
	if err != nil {
		s.logger.WithError(err).Error("failed to encode session payload")
		return c.HTML(http.StatusInternalServerError, resultPage("Login failed", "login failed, please try again"))
	}

	return c.HTML(http.StatusOK, sessionPage(payload))
}

// verifyCode consumes an emailed one-time code and returns a session.
func (s *Server) verifyCode(c echo.Context) error {
	var req account.VerifyCodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	acct, sess, err := s.verificationSvc.VerifyCode(c.Request().Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrNotFound), errors.Is(err, account.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "no pending code for this email")
		case errors.Is(err, token.ErrCodeMismatch):
			return echo.NewHTTPError(http.StatusUnauthorized, "incorrect code")
		case errors.Is(err, token.ErrExpired):
			return echo.NewHTTPError(http.StatusGone, "code has expired, request a new one")
		default:
			s.logger.WithError(err).Error("code verification failed")
			return echo.NewHTTPError(http.StatusInternalServerError, "login failed, please try again")
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    acct,
		"session": sess,
	})
}

// resultPage renders a minimal standalone status page for links opened
// straight from an email client.
func resultPage(title, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>%s</title>
  <style>
    body { font-family: Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 40px 20px; }
    .card { max-width: 480px; margin: 0 auto; background: #ffffff; border-radius: 8px; padding: 32px; text-align: center; }
    h1 { color: #333; font-size: 22px; }
    p { color: #666; font-size: 15px; }
  </style>
</head>
<body>
  <div class="card">
    <h1>%s</h1>
    <p>%s</p>
  </div>
</body>
</html>`, title, title, message)
}

// sessionPage embeds the session payload for the frontend to pick up. The
// payload contains only JSON-encoded JWTs and account fields, so it is safe
// to inline inside a script tag.
func sessionPage(payload []byte) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Logged in</title>
  <style>
    body { font-family: Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 40px 20px; }
    .card { max-width: 480px; margin: 0 auto; background: #ffffff; border-radius: 8px; padding: 32px; text-align: center; }
    h1 { color: #333; font-size: 22px; }
    p { color: #666; font-size: 15px; }
  </style>
</head>
<body>
  <div class="card">
    <h1>You are logged in</h1>
    <p>You can close this window and return to the app.</p>
  </div>
  <script>
    window.__AUTH_RESULT__ = %s;
    if (window.opener) {
      window.opener.postMessage(window.__AUTH_RESULT__, window.location.origin);
    }
  </script>
</body>
</html>`, payload)
}
