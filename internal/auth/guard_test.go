package auth

import (
	"testing"
	"time"

	"FlexPBX-Admin/internal/domain"
	"FlexPBX-Admin/internal/network"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGuard() *Guard {
	return NewGuard(DefaultGuardPolicy())
}

func authenticatedSession(now time.Time) *domain.AdminSession {
	activity := now.Add(-time.Minute)
	return &domain.AdminSession{
		ID:             "sess-1",
		Token:          "tok-1",
		Authenticated:  true,
		AdminUsername:  "admin",
		AdminRole:      domain.RoleAdmin,
		LoginIP:        "203.0.113.5",
		LoginUserAgent: "Mozilla/5.0",
		LastActivity:   &activity,
		IdleTimeoutSec: 1800,
	}
}

func publicZone() network.Zone {
	return network.ZoneByType(network.ZonePublic)
}

func trustedZone() network.Zone {
	return network.ZoneByType(network.ZoneTailscale)
}

func requestFrom(ip, ua string) network.RequestContext {
	return network.RequestContext{ClientIP: ip, PublicIP: "", UserAgent: ua}
}

func TestGuard_UnauthenticatedRedirect(t *testing.T) {
	guard := testGuard()
	now := time.Now()

	t.Run("nil_session", func(t *testing.T) {
		decision := guard.Evaluate(nil, requestFrom("203.0.113.5", "Mozilla/5.0"), publicZone(), "/admin/backups?page=2", now)

		assert.Equal(t, DecisionRedirect, decision.Kind)
		assert.Equal(t, "/admin/login?redirect=%2Fadmin%2Fbackups%3Fpage%3D2", decision.RedirectURL)
		assert.False(t, decision.Destroy)
		assert.Empty(t, decision.Events)
	})

	t.Run("unauthenticated_session_not_mutated", func(t *testing.T) {
		sess := &domain.AdminSession{ID: "anon", Token: "tok-anon"}

		decision := guard.Evaluate(sess, requestFrom("203.0.113.5", "Mozilla/5.0"), publicZone(), "/admin/dashboard", now)

		assert.Equal(t, DecisionRedirect, decision.Kind)
		assert.False(t, decision.Destroy)
		// The guard must not touch session state before authentication
		assert.Empty(t, sess.LoginIP)
		assert.Empty(t, sess.LoginUserAgent)
		assert.Nil(t, sess.LastActivity)
		assert.Empty(t, sess.CSRFToken)
	})
}

func TestGuard_IPBinding(t *testing.T) {
	guard := testGuard()
	now := time.Now()

	t.Run("first_request_fixes_login_ip", func(t *testing.T) {
		sess := authenticatedSession(now)
		sess.LoginIP = ""

		decision := guard.Evaluate(sess, requestFrom("198.51.100.7", "Mozilla/5.0"), publicZone(), "/admin/dashboard", now)

		assert.Equal(t, DecisionContinue, decision.Kind)
		assert.Equal(t, "198.51.100.7", sess.LoginIP)
	})

	t.Run("changed_ip_on_public_network_destroys_session", func(t *testing.T) {
		sess := authenticatedSession(now)

		decision := guard.Evaluate(sess, requestFrom("198.51.100.7", "Mozilla/5.0"), publicZone(), "/admin/dashboard", now)

		assert.Equal(t, DecisionRedirect, decision.Kind)
		assert.Equal(t, "/admin/login?security=ip_changed", decision.RedirectURL)
		assert.True(t, decision.Destroy)
		require.Len(t, decision.Events, 1)
		assert.Equal(t, domain.EventIPChanged, decision.Events[0].EventType)
		assert.Equal(t, "admin", decision.Events[0].AdminUsername)
		assert.Equal(t, "198.51.100.7", decision.Events[0].ClientIP)
	})

	t.Run("changed_ip_on_trusted_network_is_exempt", func(t *testing.T) {
		sess := authenticatedSession(now)
		sess.LoginIP = "100.64.0.10"

		decision := guard.Evaluate(sess, requestFrom("100.64.0.99", "Mozilla/5.0"), trustedZone(), "/admin/dashboard", now)

		assert.Equal(t, DecisionContinue, decision.Kind)
		assert.False(t, decision.Destroy)
		// The original binding survives the exemption
		assert.Equal(t, "100.64.0.10", sess.LoginIP)
	})

	t.Run("same_ip_passes", func(t *testing.T) {
		sess := authenticatedSession(now)

		decision := guard.Evaluate(sess, requestFrom("203.0.113.5", "Mozilla/5.0"), publicZone(), "/admin/dashboard", now)

		assert.Equal(t, DecisionContinue, decision.Kind)
	})
}

func TestGuard_UserAgentBinding(t *testing.T) {
	guard := testGuard()
	now := time.Now()

	t.Run("first_request_fixes_user_agent", func(t *testing.T) {
		sess := authenticatedSession(now)
		sess.LoginUserAgent = ""

		decision := guard.Evaluate(sess, requestFrom("203.0.113.5", "curl/8.0"), publicZone(), "/admin/dashboard", now)

		assert.Equal(t, DecisionContinue, decision.Kind)
		assert.Equal(t, "curl/8.0", sess.LoginUserAgent)
	})

	t.Run("changed_ua_on_public_network_destroys_session", func(t *testing.T) {
		sess := authenticatedSession(now)

		decision := guard.Evaluate(sess, requestFrom("203.0.113.5", "curl/8.0"), publicZone(), "/admin/dashboard", now)

		assert.Equal(t, DecisionRedirect, decision.Kind)
		assert.Equal(t, "/admin/login?security=ua_changed", decision.RedirectURL)
		assert.True(t, decision.Destroy)
		require.Len(t, decision.Events, 1)
		assert.Equal(t, domain.EventUAChanged, decision.Events[0].EventType)
	})

	t.Run("changed_ua_on_trusted_network_logs_but_continues", func(t *testing.T) {
		sess := authenticatedSession(now)
		sess.LoginIP = "100.64.0.10"

		decision := guard.Evaluate(sess, requestFrom("100.64.0.10", "curl/8.0"), trustedZone(), "/admin/dashboard", now)

		assert.Equal(t, DecisionContinue, decision.Kind)
		assert.False(t, decision.Destroy)
		require.Len(t, decision.Events, 1)
		assert.Equal(t, domain.EventUAChanged, decision.Events[0].EventType)
	})
}

func TestGuard_TimeoutPolicy(t *testing.T) {
	guard := testGuard()
	now := time.Now()

	t.Run("idle_session_within_window_continues", func(t *testing.T) {
		sess := authenticatedSession(now)
		activity := now.Add(-29 * time.Minute)
		sess.LastActivity = &activity

		decision := guard.Evaluate(sess, requestFrom("203.0.113.5", "Mozilla/5.0"), publicZone(), "/admin/dashboard", now)

		assert.Equal(t, DecisionContinue, decision.Kind)
		// Activity window slides forward on every passing request
		assert.True(t, sess.LastActivity.Equal(now))
	})

	t.Run("idle_session_expired", func(t *testing.T) {
		sess := authenticatedSession(now)
		activity := now.Add(-31 * time.Minute)
		sess.LastActivity = &activity

		decision := guard.Evaluate(sess, requestFrom("203.0.113.5", "Mozilla/5.0"), publicZone(), "/admin/dashboard", now)

		assert.Equal(t, DecisionRedirect, decision.Kind)
		assert.Equal(t, "/admin/login?timeout=1", decision.RedirectURL)
		assert.True(t, decision.Destroy)
		require.Len(t, decision.Events, 1)
		assert.Equal(t, domain.EventSessionTimeout, decision.Events[0].EventType)
	})

	t.Run("remember_login_survives_idle_window_on_public", func(t *testing.T) {
		sess := authenticatedSession(now)
		sess.RememberLogin = true
		activity := now.Add(-6 * 24 * time.Hour)
		sess.LastActivity = &activity

		decision := guard.Evaluate(sess, requestFrom("203.0.113.5", "Mozilla/5.0"), publicZone(), "/admin/dashboard", now)

		assert.Equal(t, DecisionContinue, decision.Kind)
		assert.Equal(t, domain.SessionKindExtended, sess.SessionType)
	})

	t.Run("extended_public_expires_after_seven_days", func(t *testing.T) {
		sess := authenticatedSession(now)
		sess.RememberLogin = true
		activity := now.Add(-8 * 24 * time.Hour)
		sess.LastActivity = &activity

		decision := guard.Evaluate(sess, requestFrom("203.0.113.5", "Mozilla/5.0"), publicZone(), "/admin/dashboard", now)

		assert.Equal(t, DecisionRedirect, decision.Kind)
		assert.True(t, decision.Destroy)
	})

	t.Run("extended_trusted_survives_three_weeks", func(t *testing.T) {
		sess := authenticatedSession(now)
		sess.RememberLogin = true
		sess.LoginIP = "100.64.0.10"
		activity := now.Add(-21 * 24 * time.Hour)
		sess.LastActivity = &activity

		decision := guard.Evaluate(sess, requestFrom("100.64.0.10", "Mozilla/5.0"), trustedZone(), "/admin/dashboard", now)

		assert.Equal(t, DecisionContinue, decision.Kind)
	})

	t.Run("extended_trusted_expires_after_thirty_days", func(t *testing.T) {
		sess := authenticatedSession(now)
		sess.RememberLogin = true
		sess.LoginIP = "100.64.0.10"
		activity := now.Add(-31 * 24 * time.Hour)
		sess.LastActivity = &activity

		decision := guard.Evaluate(sess, requestFrom("100.64.0.10", "Mozilla/5.0"), trustedZone(), "/admin/dashboard", now)

		assert.Equal(t, DecisionRedirect, decision.Kind)
		assert.True(t, decision.Destroy)
	})

	t.Run("no_last_activity_never_times_out", func(t *testing.T) {
		sess := authenticatedSession(now)
		sess.LastActivity = nil

		decision := guard.Evaluate(sess, requestFrom("203.0.113.5", "Mozilla/5.0"), publicZone(), "/admin/dashboard", now)

		assert.Equal(t, DecisionContinue, decision.Kind)
		require.NotNil(t, sess.LastActivity)
	})
}

func TestGuard_CSRFIssuance(t *testing.T) {
	guard := testGuard()
	now := time.Now()

	sess := authenticatedSession(now)
	require.Empty(t, sess.CSRFToken)

	decision := guard.Evaluate(sess, requestFrom("203.0.113.5", "Mozilla/5.0"), publicZone(), "/admin/dashboard", now)
	require.Equal(t, DecisionContinue, decision.Kind)

	issued := sess.CSRFToken
	assert.Len(t, issued, 64)

	// Second request must not rotate the token
	decision = guard.Evaluate(sess, requestFrom("203.0.113.5", "Mozilla/5.0"), publicZone(), "/admin/settings", now.Add(time.Minute))
	require.Equal(t, DecisionContinue, decision.Kind)
	assert.Equal(t, issued, sess.CSRFToken)
}

func TestGuard_SecurityHeaders(t *testing.T) {
	guard := testGuard()
	now := time.Now()
	sess := authenticatedSession(now)

	decision := guard.Evaluate(sess, requestFrom("203.0.113.5", "Mozilla/5.0"), publicZone(), "/admin/dashboard", now)

	require.Equal(t, DecisionContinue, decision.Kind)
	assert.Equal(t, "SAMEORIGIN", decision.Headers["X-Frame-Options"])
	assert.Equal(t, "nosniff", decision.Headers["X-Content-Type-Options"])
	assert.Equal(t, "1; mode=block", decision.Headers["X-XSS-Protection"])
}

func TestGuard_SessionProjections(t *testing.T) {
	guard := testGuard()
	now := time.Now()

	t.Run("idle_session_on_public_network", func(t *testing.T) {
		sess := authenticatedSession(now)
		reqCtx := network.RequestContext{ClientIP: "203.0.113.5", PublicIP: "203.0.113.5", UserAgent: "Mozilla/5.0"}

		decision := guard.Evaluate(sess, reqCtx, publicZone(), "/admin/dashboard", now)

		require.Equal(t, DecisionContinue, decision.Kind)
		assert.Equal(t, "203.0.113.5", sess.ClientIP)
		assert.Equal(t, "203.0.113.5", sess.PublicIP)
		assert.Equal(t, "public", sess.NetworkType)
		assert.Equal(t, "Public Internet", sess.NetworkName)
		assert.False(t, sess.NetworkTrusted)
		assert.Equal(t, domain.SessionKindIdleTimeout, sess.SessionType)
		assert.Equal(t, "Idle timeout (30 min)", sess.SessionTypeLabel)
		assert.Equal(t, int64(1800), sess.SessionRemaining)
		require.NotNil(t, sess.SessionExpiresAt)
		assert.True(t, sess.SessionExpiresAt.Equal(now.Add(30*time.Minute)))
	})

	t.Run("extended_session_on_trusted_network", func(t *testing.T) {
		sess := authenticatedSession(now)
		sess.RememberLogin = true
		sess.LoginIP = "100.64.0.10"

		decision := guard.Evaluate(sess, requestFrom("100.64.0.10", "Mozilla/5.0"), trustedZone(), "/admin/dashboard", now)

		require.Equal(t, DecisionContinue, decision.Kind)
		assert.Equal(t, "tailscale", sess.NetworkType)
		assert.True(t, sess.NetworkTrusted)
		assert.Equal(t, domain.SessionKindExtended, sess.SessionType)
		assert.Equal(t, "Extended (30 days, trusted network)", sess.SessionTypeLabel)
	})
}

// Checks run in a fixed order: a hijacked session that is also expired
// reports the hijack, not the timeout.
func TestGuard_CheckOrder(t *testing.T) {
	guard := testGuard()
	now := time.Now()

	sess := authenticatedSession(now)
	activity := now.Add(-48 * time.Hour)
	sess.LastActivity = &activity

	decision := guard.Evaluate(sess, requestFrom("198.51.100.7", "curl/8.0"), publicZone(), "/admin/dashboard", now)

	assert.Equal(t, DecisionRedirect, decision.Kind)
	assert.Equal(t, "/admin/login?security=ip_changed", decision.RedirectURL)
	require.Len(t, decision.Events, 1)
	assert.Equal(t, domain.EventIPChanged, decision.Events[0].EventType)
}
