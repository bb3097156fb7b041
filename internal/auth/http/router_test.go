package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/crm/internal/auth/directory"
	authhttp "github.com/aussiebroadwan/crm/internal/auth/http"
	"github.com/aussiebroadwan/crm/internal/auth/service"
	"github.com/aussiebroadwan/crm/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/crm/pkg/authsdk"
	"github.com/aussiebroadwan/crm/pkg/cryptox"
	"github.com/aussiebroadwan/crm/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testSecret = "crm-shared-secret-for-tests-only-0123456!"

func TestMain(m *testing.M) {
	cryptox.SetPepper("http-test-pepper")
	os.Exit(m.Run())
}

var clientIP atomic.Int32

type testServer struct {
	handler http.Handler
	store   *sqlite.Store
	now     *time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	_, err = (&service.BootstrapService{Store: s}).Seed(t.Context(), service.DefaultSeedData("admin123", "test123"))
	require.NoError(t, err)

	now := time.Now()
	ts := &testServer{store: s, now: &now}
	codec, err := jwtx.NewCodec(testSecret, jwtx.WithClock(func() time.Time { return *ts.now }))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := authhttp.NewRouter(codec, "test", s, logger)
	r.LoginService = &service.LoginService{
		Store:     s,
		Directory: directory.NewStoreDirectory(s),
		Tokens:    codec,
		Now:       func() time.Time { return *ts.now },
	}
	r.ApplyRoutes()
	ts.handler = r
	return ts
}

// do sends a request from a fresh client address so rate limits never
// interfere.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		if s, ok := body.(string); ok {
			rdr = strings.NewReader(s)
		} else {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			rdr = bytes.NewReader(b)
		}
	}

	req := httptest.NewRequest(method, path, rdr)
	n := clientIP.Add(1)
	req.RemoteAddr = fmt.Sprintf("10.0.%d.%d:4000", n/250%250, n%250+1)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) authsdk.APIResponse[T] {
	t.Helper()
	var env authsdk.APIResponse[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotZero(t, env.Timestamp)
	return env
}

func (ts *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/auth/login", "", authsdk.LoginRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[authsdk.LoginResponse](t, w).Data.Token
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	t.Run("success", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/auth/login", "", authsdk.LoginRequest{Username: "admin", Password: "admin123"})
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "no-store", w.Header().Get("Cache-Control"))

		env := decode[authsdk.LoginResponse](t, w)
		require.Equal(t, authsdk.CodeOK, env.Code)
		require.NotEmpty(t, env.Data.Token)
		require.Equal(t, "Bearer", env.Data.TokenType)
		require.Equal(t, int64(86400), env.Data.ExpiresIn)
		require.Equal(t, "admin", env.Data.UserInfo.Username)
		require.Equal(t, "Management", env.Data.UserInfo.DepartmentName)
		require.Equal(t, "Administrator", env.Data.UserInfo.RoleName)
	})

	tests := []struct {
		name    string
		body    any
		status  int
		message string
	}{
		{"wrong password", authsdk.LoginRequest{Username: "admin", Password: "nope"}, http.StatusUnauthorized, "invalid username or password"},
		{"unknown user", authsdk.LoginRequest{Username: "ghost", Password: "admin123"}, http.StatusUnauthorized, "invalid username or password"},
		{"missing password", authsdk.LoginRequest{Username: "admin"}, http.StatusBadRequest, service.ErrInvalidRequest.Error()},
		{"malformed json", `{"username":`, http.StatusBadRequest, "invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/auth/login", "", tt.body)
			require.Equal(t, tt.status, w.Code)

			env := decode[json.RawMessage](t, w)
			require.Equal(t, authsdk.CodeError, env.Code)
			require.Equal(t, tt.message, env.Message)
			require.NotContains(t, w.Body.String(), "token\"")
		})
	}
}

func TestLogin_StoreDown(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.store.Close())

	w := ts.do(t, http.MethodPost, "/auth/login", "", authsdk.LoginRequest{Username: "admin", Password: "admin123"})
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestLogin_RateLimitedPerUsername(t *testing.T) {
	ts := newTestServer(t)

	var last int
	for i := range 6 {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"admin","password":"bad"}`))
		req.RemoteAddr = "192.0.2.10:4000"
		// A direct caller cannot pick a fresh address per attempt.
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		w := httptest.NewRecorder()
		ts.handler.ServeHTTP(w, req)
		last = w.Code
	}
	require.Equal(t, http.StatusTooManyRequests, last)
}

func TestMe(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "admin", "admin123")

	t.Run("valid token", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/auth/me", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		env := decode[authsdk.UserInfo](t, w)
		require.Equal(t, "admin", env.Data.Username)
		require.Equal(t, "System Administrator", env.Data.Name)
		require.Equal(t, "13800138000", env.Data.Phone)
	})

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Token " + token},
		{"lowercase scheme", "bearer " + token},
		{"garbage", "Bearer not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			ts.handler.ServeHTTP(w, req)

			require.Equal(t, http.StatusUnauthorized, w.Code)
			require.Equal(t, "invalid token", decode[json.RawMessage](t, w).Message)
		})
	}

	t.Run("expired token", func(t *testing.T) {
		*ts.now = ts.now.Add(25 * time.Hour)
		t.Cleanup(func() { *ts.now = ts.now.Add(-25 * time.Hour) })

		w := ts.do(t, http.MethodGet, "/auth/me", token, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "invalid token", decode[json.RawMessage](t, w).Message)
	})
}

func TestValidate(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "test", "test123")

	for range 2 {
		w := ts.do(t, http.MethodPost, "/auth/validate", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.True(t, decode[bool](t, w).Data)
	}

	parts := strings.Split(token, ".")
	forgedCodec, err := jwtx.NewCodec("some-other-secret-of-enough-length-xyz!")
	require.NoError(t, err)
	forged, err := forgedCodec.Sign(jwtx.NewClaims(jwtx.Identity{UserID: 1, Username: "admin"}, time.Hour, time.Now()))
	require.NoError(t, err)

	for name, bad := range map[string]string{
		"empty":        "",
		"garbage":      "abc",
		"re-signed":    forged,
		"swapped body": parts[0] + "." + strings.Split(forged, ".")[1] + "." + parts[2],
	} {
		t.Run(name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/auth/validate", bad, nil)
			require.Equal(t, http.StatusOK, w.Code)
			env := decode[bool](t, w)
			require.Equal(t, authsdk.CodeOK, env.Code)
			require.False(t, env.Data)
		})
	}
}

func TestLogout(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "admin", "admin123")

	w := ts.do(t, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, authsdk.CodeOK, decode[json.RawMessage](t, w).Code)

	// Stateless: the token still verifies until it expires.
	w = ts.do(t, http.MethodPost, "/auth/validate", token, nil)
	require.True(t, decode[bool](t, w).Data)

	w = ts.do(t, http.MethodPost, "/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var live authsdk.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &live))
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	w = ts.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, ts.store.Close())
	w = ts.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var ready authsdk.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ready))
	require.Equal(t, "degraded", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Contains(t, ready.Checks.Database, "error")
}

func TestMetricsAndRequestID(t *testing.T) {
	ts := newTestServer(t)
	ts.login(t, "admin", "admin123")

	w := ts.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "crm_auth_login_attempts_total")
	require.Contains(t, w.Body.String(), `route="POST /auth/login"`)
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestValidate_ObservesFailureKind(t *testing.T) {
	codec, err := jwtx.NewCodec(testSecret)
	require.NoError(t, err)

	var seen []string
	h := &authhttp.ValidateHandler{
		LoginService: &service.LoginService{Tokens: codec},
		Observe:      func(result string) { seen = append(seen, result) },
	}

	good, _, err := codec.Issue(jwtx.Identity{UserID: 1, Username: "admin"}, time.Hour)
	require.NoError(t, err)
	forger, err := jwtx.NewCodec("some-other-secret-of-enough-length-xyz!")
	require.NoError(t, err)
	forged, _, err := forger.Issue(jwtx.Identity{UserID: 1, Username: "admin"}, time.Hour)
	require.NoError(t, err)

	for _, header := range []string{"", "Bearer " + good, "Bearer " + forged, "Bearer abc"} {
		req := httptest.NewRequest(http.MethodPost, "/auth/validate", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	require.Equal(t, []string{"missing_authorization", "ok", "invalid_signature", "malformed"}, seen)
}
