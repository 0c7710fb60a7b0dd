package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"FlexPBX-Admin/internal/domain"
	"FlexPBX-Admin/internal/network"
	"FlexPBX-Admin/internal/repository/memory"
	"FlexPBX-Admin/internal/securitylog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testCookieName = "flexpbx_admin_session"

func setupMiddleware(t *testing.T) (*Middleware, *memory.MemStorage) {
	t.Helper()

	storage := memory.New()
	log := zap.NewNop()

	recorder := securitylog.NewRecorder(storage, log, securitylog.RecorderConfig{
		WorkerCount:     1,
		BufferSize:      16,
		RetryAttempts:   1,
		RetryDelay:      time.Millisecond,
		ShutdownTimeout: time.Second,
	})
	require.NoError(t, recorder.Start())
	t.Cleanup(func() { _ = recorder.Stop() })

	jwtService := NewJWTService(&JWTConfig{
		SecretKey:        []byte("test-secret"),
		APITokenDuration: time.Hour,
		Issuer:           "FlexPBX-Admin",
	})

	m := NewMiddleware(storage, NewGuard(DefaultGuardPolicy()), network.NewClassifier(""), jwtService, recorder, testCookieName, log)
	return m, storage
}

func seedSession(t *testing.T, storage *memory.MemStorage, sess *domain.AdminSession) {
	t.Helper()
	require.NoError(t, storage.CreateSession(context.Background(), sess))
}

func activeSession(now time.Time) *domain.AdminSession {
	activity := now.Add(-time.Minute)
	return &domain.AdminSession{
		ID:             "sess-1",
		Token:          "session-token-1",
		AdminID:        1,
		Authenticated:  true,
		AdminUsername:  "admin",
		AdminRole:      domain.RoleAdmin,
		LoginIP:        "203.0.113.5",
		LoginUserAgent: "Mozilla/5.0",
		LastActivity:   &activity,
		IdleTimeoutSec: 1800,
		CSRFToken:      GenerateCSRFToken(),
	}
}

func sessionRequest(method, target, token string) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	r.RemoteAddr = "203.0.113.5:44321"
	r.Header.Set("User-Agent", "Mozilla/5.0")
	if token != "" {
		r.AddCookie(&http.Cookie{Name: testCookieName, Value: token})
	}
	return r
}

func TestRequireSession_NoCookie(t *testing.T) {
	m, _ := setupMiddleware(t)

	handler := m.RequireSession(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be called")
	})

	t.Run("page_request_redirects", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler(w, sessionRequest(http.MethodGet, "/admin/dashboard?tab=calls", ""))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/admin/login?redirect=%2Fadmin%2Fdashboard%3Ftab%3Dcalls", w.Header().Get("Location"))
	})

	t.Run("api_request_gets_json_401", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler(w, sessionRequest(http.MethodGet, "/admin/api/session", ""))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "/admin/login?redirect=%2Fadmin%2Fapi%2Fsession", body["redirect"])
	})
}

func TestRequireSession_ValidSession(t *testing.T) {
	m, storage := setupMiddleware(t)
	now := time.Now()
	seedSession(t, storage, activeSession(now))

	var seen *domain.AdminSession
	handler := m.RequireSession(func(w http.ResponseWriter, r *http.Request) {
		seen = GetSessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	handler(w, sessionRequest(http.MethodGet, "/admin/dashboard", "session-token-1"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "SAMEORIGIN", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	require.NotNil(t, seen)
	assert.Equal(t, "admin", seen.AdminUsername)
	assert.Equal(t, "public", seen.NetworkType)

	// Guard mutations are persisted
	stored, err := storage.GetSessionByToken(context.Background(), "session-token-1")
	require.NoError(t, err)
	require.NotNil(t, stored.LastActivity)
	assert.True(t, stored.LastActivity.After(now.Add(-time.Second)))
}

func TestRequireSession_HijackDestroysSession(t *testing.T) {
	m, storage := setupMiddleware(t)
	seedSession(t, storage, activeSession(time.Now()))

	handler := m.RequireSession(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be called")
	})

	r := sessionRequest(http.MethodGet, "/admin/dashboard", "session-token-1")
	r.RemoteAddr = "198.51.100.7:44321" // different public IP
	w := httptest.NewRecorder()
	handler(w, r)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/login?security=ip_changed", w.Header().Get("Location"))

	// Session is gone from storage
	_, err := storage.GetSessionByToken(context.Background(), "session-token-1")
	assert.Error(t, err)

	// Cookie is cleared
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, testCookieName, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestRequireSession_ExpiredSession(t *testing.T) {
	m, storage := setupMiddleware(t)
	sess := activeSession(time.Now())
	stale := time.Now().Add(-2 * time.Hour)
	sess.LastActivity = &stale
	seedSession(t, storage, sess)

	handler := m.RequireSession(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be called")
	})

	w := httptest.NewRecorder()
	handler(w, sessionRequest(http.MethodGet, "/admin/dashboard", "session-token-1"))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/login?timeout=1", w.Header().Get("Location"))

	_, err := storage.GetSessionByToken(context.Background(), "session-token-1")
	assert.Error(t, err)
}

func TestRequireSessionOrToken(t *testing.T) {
	m, _ := setupMiddleware(t)

	handler := m.RequireSessionOrToken(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := GetIdentityFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, "supervisor-bot", identity.Username)
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid_bearer_token", func(t *testing.T) {
		token, err := m.jwtService.GenerateAPIToken("supervisor-bot", domain.RoleSupervisor)
		require.NoError(t, err)

		r := sessionRequest(http.MethodGet, "/admin/api/supervisor/agents", "")
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "SAMEORIGIN", w.Header().Get("X-Frame-Options"))
	})

	t.Run("malformed_authorization_header", func(t *testing.T) {
		r := sessionRequest(http.MethodGet, "/admin/api/supervisor/agents", "")
		r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()
		handler(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid_token", func(t *testing.T) {
		r := sessionRequest(http.MethodGet, "/admin/api/supervisor/agents", "")
		r.Header.Set("Authorization", "Bearer not.a.token")
		w := httptest.NewRecorder()
		handler(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("no_header_falls_back_to_session_guard", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler(w, sessionRequest(http.MethodGet, "/admin/api/supervisor/agents", ""))

		// No session either, so the guard rejects with the API flavor
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireCSRF(t *testing.T) {
	m, _ := setupMiddleware(t)

	sess := activeSession(time.Now())
	handler := m.RequireCSRF(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	withSession := func(r *http.Request) *http.Request {
		return r.WithContext(context.WithValue(r.Context(), SessionKey, sess))
	}

	t.Run("valid_header_token", func(t *testing.T) {
		r := withSession(sessionRequest(http.MethodPost, "/admin/api/broadcast", ""))
		r.Header.Set("X-CSRF-Token", sess.CSRFToken)
		w := httptest.NewRecorder()
		handler(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wrong_token_rejected_without_destroying_session", func(t *testing.T) {
		r := withSession(sessionRequest(http.MethodPost, "/admin/api/broadcast", ""))
		r.Header.Set("X-CSRF-Token", "0000")
		w := httptest.NewRecorder()
		handler(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
		// The session token itself is untouched
		assert.NotEmpty(t, sess.CSRFToken)
	})

	t.Run("missing_token_rejected", func(t *testing.T) {
		r := withSession(sessionRequest(http.MethodPost, "/admin/api/broadcast", ""))
		w := httptest.NewRecorder()
		handler(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("no_session_at_all", func(t *testing.T) {
		r := sessionRequest(http.MethodPost, "/admin/api/broadcast", "")
		w := httptest.NewRecorder()
		handler(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bearer_identity_skips_csrf", func(t *testing.T) {
		r := sessionRequest(http.MethodPost, "/admin/api/broadcast", "")
		ctx := context.WithValue(r.Context(), IdentityKey, domain.AdminIdentity{Username: "supervisor-bot"})
		w := httptest.NewRecorder()
		handler(w, r.WithContext(ctx))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
