package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/thepotential/verification-service/internal/core/domain/account"
	"github.com/thepotential/verification-service/internal/core/domain/session"
	"github.com/thepotential/verification-service/internal/core/domain/token"
	"github.com/thepotential/verification-service/internal/core/ports"
	vhttp "github.com/thepotential/verification-service/internal/infrastructure/httpserver"
	"github.com/thepotential/verification-service/test/mocks"
)

func newTestServer(deps vhttp.ServerDeps) *httptest.Server {
	cfg := &vhttp.ServerConfig{Host: "127.0.0.1", Port: "0", ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second}
	srv := vhttp.NewServer(cfg, logrus.New(), deps)
	return httptest.NewServer(srv.Echo())
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func TestSignupEndpoint(t *testing.T) {
	acctSvc := &mocks.AccountServiceMock{
		SignupFn: func(ctx context.Context, req *account.SignupRequest) (*ports.SignupResult, error) {
			if req.Email == "taken@e.com" {
				return nil, account.ErrEmailTaken
			}
			return &ports.SignupResult{
				Account:               &account.Account{ID: uuid.New(), Email: req.Email, DisplayName: req.DisplayName},
				NeedEmailVerification: true,
			}, nil
		},
	}
	ts := newTestServer(vhttp.ServerDeps{AccountService: acctSvc, VerificationService: &mocks.VerificationServiceMock{}, SessionService: &mocks.SessionServiceMock{}})
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/v1/auth/signup", map[string]string{
		"email": "new@e.com", "password": "password123", "display_name": "N",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, true, body["needEmailVerification"])
	require.NotNil(t, body["user"])

	// duplicate email
	resp = postJSON(t, ts.URL+"/api/v1/auth/signup", map[string]string{
		"email": "taken@e.com", "password": "password123", "display_name": "T",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// invalid body rejected before the service is reached
	resp = postJSON(t, ts.URL+"/api/v1/auth/signup", map[string]string{
		"email": "not-an-email", "password": "short", "display_name": "",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSendMagicLink_UniformResponse(t *testing.T) {
	acctSvc := &mocks.AccountServiceMock{
		RequestMagicLinkFn: func(ctx context.Context, email string) error { return nil },
	}
	ts := newTestServer(vhttp.ServerDeps{AccountService: acctSvc, VerificationService: &mocks.VerificationServiceMock{}, SessionService: &mocks.SessionServiceMock{}})
	defer ts.Close()

	readBody := func(email string) (int, string) {
		resp := postJSON(t, ts.URL+"/api/v1/auth/send-magic-link", map[string]string{"email": email})
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(b)
	}

	knownStatus, knownBody := readBody("known@e.com")
	unknownStatus, unknownBody := readBody("unknown@e.com")
	require.Equal(t, http.StatusOK, knownStatus)
	require.Equal(t, knownStatus, unknownStatus)
	require.Equal(t, knownBody, unknownBody)
}

func TestVerifyCodeEndpoint_StatusMapping(t *testing.T) {
	acct := &account.Account{ID: uuid.New(), Email: "u@e.com", IsActive: true}
	verifSvc := &mocks.VerificationServiceMock{
		VerifyCodeFn: func(ctx context.Context, email, code string) (*account.Account, *session.Session, error) {
			switch {
			case email == "nobody@e.com":
				return nil, nil, token.ErrNotFound
			case code == "999999":
				return nil, nil, token.ErrCodeMismatch
			case code == "111111":
				return nil, nil, token.ErrExpired
			case code == "222222":
				return nil, nil, fmt.Errorf("%w: db down", token.ErrDownstream)
			default:
				return acct, &session.Session{AccessToken: "at", RefreshToken: "rt", ExpiresIn: 900}, nil
			}
		},
	}
	ts := newTestServer(vhttp.ServerDeps{AccountService: &mocks.AccountServiceMock{}, VerificationService: verifSvc, SessionService: &mocks.SessionServiceMock{}})
	defer ts.Close()

	cases := []struct {
		email, code string
		want        int
	}{
		{"nobody@e.com", "123456", http.StatusNotFound},
		{"u@e.com", "999999", http.StatusUnauthorized},
		{"u@e.com", "111111", http.StatusGone},
		{"u@e.com", "222222", http.StatusInternalServerError},
		{"u@e.com", "123456", http.StatusOK},
		{"u@e.com", "12345", http.StatusBadRequest},
		{"u@e.com", "abcdef", http.StatusBadRequest},
	}
	for _, tc := range cases {
		resp := postJSON(t, ts.URL+"/api/v1/auth/verify-code", map[string]string{"email": tc.email, "code": tc.code})
		require.Equal(t, tc.want, resp.StatusCode, "email=%s code=%s", tc.email, tc.code)
		if tc.want == http.StatusOK {
			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			sess, ok := body["session"].(map[string]interface{})
			require.True(t, ok, "session missing from response")
			require.Equal(t, "at", sess["access_token"])
		}
		resp.Body.Close()
	}
}

func TestVerifyEmailEndpoint(t *testing.T) {
	acct := &account.Account{ID: uuid.New(), Email: "u@e.com", EmailVerified: true}
	verifSvc := &mocks.VerificationServiceMock{
		VerifyEmailFn: func(ctx context.Context, tok string) (*account.Account, error) {
			switch tok {
			case "good":
				return acct, nil
			case "stale":
				return nil, token.ErrExpired
			default:
				return nil, token.ErrNotFound
			}
		},
	}
	ts := newTestServer(vhttp.ServerDeps{AccountService: &mocks.AccountServiceMock{}, VerificationService: verifSvc, SessionService: &mocks.SessionServiceMock{}})
	defer ts.Close()

	// GET serves an HTML page for email clients
	resp, err := http.Get(ts.URL + "/api/v1/auth/verify-email?token=good")
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	require.Contains(t, string(b), "Email verified")

	resp, err = http.Get(ts.URL + "/api/v1/auth/verify-email?token=stale")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusGone, resp.StatusCode)

	// POST returns JSON
	resp = postJSON(t, ts.URL+"/api/v1/auth/verify-email", map[string]string{"token": "good"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	require.Equal(t, true, body["success"])

	resp = postJSON(t, ts.URL+"/api/v1/auth/verify-email", map[string]string{"token": "gone"})
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestVerifyMagicLinkEndpoint_EmbedsSession(t *testing.T) {
	acct := &account.Account{ID: uuid.New(), Email: "u@e.com", IsActive: true}
	verifSvc := &mocks.VerificationServiceMock{
		VerifyMagicLinkFn: func(ctx context.Context, tok string) (*account.Account, *session.Session, error) {
			if tok == "good" {
				return acct, &session.Session{AccessToken: "access-x", RefreshToken: "refresh-x", ExpiresIn: 900}, nil
			}
			return nil, nil, token.ErrNotFound
		},
	}
	ts := newTestServer(vhttp.ServerDeps{AccountService: &mocks.AccountServiceMock{}, VerificationService: verifSvc, SessionService: &mocks.SessionServiceMock{}})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/auth/verify-magic-link?token=good")
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(b), "access-x")
	require.Contains(t, string(b), "__AUTH_RESULT__")

	resp, err = http.Get(ts.URL + "/api/v1/auth/verify-magic-link?token=used")
	require.NoError(t, err)
	b, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.False(t, strings.Contains(string(b), "access-x"))
}
