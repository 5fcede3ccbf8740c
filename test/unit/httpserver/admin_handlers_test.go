package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/thepotential/verification-service/internal/core/domain/account"
	"github.com/thepotential/verification-service/internal/core/domain/session"
	vhttp "github.com/thepotential/verification-service/internal/infrastructure/httpserver"
	"github.com/thepotential/verification-service/test/mocks"
)

// sessionsByRole validates "admin-token" and "member-token" to sessions
// with the matching role, anything else fails.
func sessionsByRole() *mocks.SessionServiceMock {
	return &mocks.SessionServiceMock{
		ValidateFn: func(ctx context.Context, accessToken string) (*session.Claims, error) {
			switch accessToken {
			case "admin-token":
				return &session.Claims{UserID: uuid.New(), Email: "admin@e.com", Role: account.RoleAdmin}, nil
			case "member-token":
				return &session.Claims{UserID: uuid.New(), Email: "member@e.com", Role: account.RoleMember}, nil
			default:
				return nil, context.Canceled
			}
		},
	}
}

func doAuthed(t *testing.T, method, url, bearer string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestAdminRoutes_AuthZ(t *testing.T) {
	ts := newTestServer(vhttp.ServerDeps{
		AccountService:      &mocks.AccountServiceMock{},
		VerificationService: &mocks.VerificationServiceMock{},
		SessionService:      sessionsByRole(),
	})
	defer ts.Close()

	url := ts.URL + "/api/v1/admin/tokens"

	resp := doAuthed(t, http.MethodDelete, url, "")
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doAuthed(t, http.MethodDelete, url, "garbage")
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doAuthed(t, http.MethodDelete, url, "member-token")
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doAuthed(t, http.MethodDelete, url, "admin-token")
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPurgeTokensEndpoint(t *testing.T) {
	var gotPrefix string
	verifSvc := &mocks.VerificationServiceMock{
		PurgeAllFn: func(ctx context.Context, prefix string) (int, error) {
			gotPrefix = prefix
			return 3, nil
		},
	}
	ts := newTestServer(vhttp.ServerDeps{
		AccountService:      &mocks.AccountServiceMock{},
		VerificationService: verifSvc,
		SessionService:      sessionsByRole(),
	})
	defer ts.Close()

	resp := doAuthed(t, http.MethodDelete, ts.URL+"/api/v1/admin/tokens?prefix=magic_link:", "admin-token")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "magic_link:", gotPrefix)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, float64(3), body["removed"])
}

func TestDeleteUserEndpoint(t *testing.T) {
	target := uuid.New()
	var deleted uuid.UUID
	acctSvc := &mocks.AccountServiceMock{
		DeleteAccountFn: func(ctx context.Context, id uuid.UUID) error {
			if id != target {
				return account.ErrNotFound
			}
			deleted = id
			return nil
		},
	}
	ts := newTestServer(vhttp.ServerDeps{
		AccountService:      acctSvc,
		VerificationService: &mocks.VerificationServiceMock{},
		SessionService:      sessionsByRole(),
	})
	defer ts.Close()

	resp := doAuthed(t, http.MethodDelete, ts.URL+"/api/v1/admin/users/"+target.String(), "admin-token")
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, target, deleted)

	resp = doAuthed(t, http.MethodDelete, ts.URL+"/api/v1/admin/users/"+uuid.NewString(), "admin-token")
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doAuthed(t, http.MethodDelete, ts.URL+"/api/v1/admin/users/not-a-uuid", "admin-token")
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetUserEndpoint(t *testing.T) {
	target := uuid.New()
	acctSvc := &mocks.AccountServiceMock{
		GetAccountFn: func(ctx context.Context, id uuid.UUID) (*account.Account, error) {
			if id != target {
				return nil, account.ErrNotFound
			}
			return &account.Account{ID: id, Email: "u@e.com"}, nil
		},
	}
	ts := newTestServer(vhttp.ServerDeps{
		AccountService:      acctSvc,
		VerificationService: &mocks.VerificationServiceMock{},
		SessionService:      sessionsByRole(),
	})
	defer ts.Close()

	resp := doAuthed(t, http.MethodGet, ts.URL+"/api/v1/admin/users/"+target.String(), "admin-token")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "u@e.com", user["email"])
}

// windowCounterStub counts requests per client key in memory.
type windowCounterStub struct {
	counts map[string]int
}

func (w *windowCounterStub) IncrementWindow(ctx context.Context, clientKey string, window time.Duration, keyPrefix string) (int, time.Time, error) {
	if w.counts == nil {
		w.counts = make(map[string]int)
	}
	w.counts[clientKey]++
	return w.counts[clientKey], time.Now().Truncate(window), nil
}

func TestRateLimit_TokenIssuingRoutes(t *testing.T) {
	ts := newTestServer(vhttp.ServerDeps{
		AccountService:      &mocks.AccountServiceMock{},
		VerificationService: &mocks.VerificationServiceMock{},
		SessionService:      sessionsByRole(),
		RateLimit: vhttp.RateLimitConfig{
			Counter:           &windowCounterStub{},
			RequestsPerMinute: 2,
			Window:            time.Minute,
			KeyPrefix:         "ratelimit:ip",
		},
	})
	defer ts.Close()

	send := func() *http.Response {
		return postJSON(t, ts.URL+"/api/v1/auth/send-magic-link", map[string]string{"email": "a@b.com"})
	}

	resp := send()
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "2", resp.Header.Get("X-RateLimit-Limit"))
	require.Equal(t, "1", resp.Header.Get("X-RateLimit-Remaining"))

	resp = send()
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = send()
	resp.Body.Close()
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// verify-code shares the per-IP window: a wrong code keeps the token,
	// so code guesses count against the same budget
	resp = postJSON(t, ts.URL+"/api/v1/auth/verify-code", map[string]string{"email": "a@b.com", "code": "123456"})
	resp.Body.Close()
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// link verification routes are not limited
	getResp, err := http.Get(ts.URL + "/api/v1/auth/verify-email?token=x")
	require.NoError(t, err)
	getResp.Body.Close()
	require.Equal(t, http.StatusNotFound, getResp.StatusCode)
}
