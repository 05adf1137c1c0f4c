package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ignite/ses-stats/internal/config"
)

func testManager(superusers ...string) *Manager {
	return NewManager(&config.AuthConfig{
		Enabled:       true,
		AllowedDomain: "example.com",
		Superusers:    superusers,
		CookieName:    "ses_stats_session",
		CookieMaxAge:  3600,
	}, "http://localhost:8080")
}

func withSession(m *Manager, session *Session) string {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()
	m.sessions["sid-1"] = session
	return "sid-1"
}

func TestGetSession(t *testing.T) {
	m := testManager()
	sid := withSession(m, &Session{
		Email:     "ops@example.com",
		Superuser: true,
		ExpiresAt: time.Now().Add(time.Hour),
	})

	r := httptest.NewRequest("GET", "/api/dashboard", nil)
	assert.Nil(t, m.GetSession(r), "no cookie means no session")
	assert.False(t, m.IsAuthenticated(r))

	r = httptest.NewRequest("GET", "/api/dashboard", nil)
	r.Header.Set("Cookie", "ses_stats_session="+sid)
	assert.NotNil(t, m.GetSession(r))
	assert.True(t, m.IsAuthenticated(r))
	assert.True(t, m.IsPrivileged(r))
}

func TestExpiredSessionEvicted(t *testing.T) {
	m := testManager()
	sid := withSession(m, &Session{
		Email:     "ops@example.com",
		ExpiresAt: time.Now().Add(-time.Minute),
	})

	r := httptest.NewRequest("GET", "/api/dashboard", nil)
	r.Header.Set("Cookie", "ses_stats_session="+sid)
	assert.Nil(t, m.GetSession(r))

	m.sessionMu.RLock()
	_, still := m.sessions[sid]
	m.sessionMu.RUnlock()
	assert.False(t, still, "expired session should be evicted on access")
}

func TestIsPrivilegedRequiresSuperuser(t *testing.T) {
	m := testManager("admin@example.com")
	sid := withSession(m, &Session{
		Email:     "ops@example.com",
		Superuser: m.isSuperuser("ops@example.com"),
		ExpiresAt: time.Now().Add(time.Hour),
	})

	r := httptest.NewRequest("GET", "/api/dashboard", nil)
	r.Header.Set("Cookie", "ses_stats_session="+sid)
	assert.True(t, m.IsAuthenticated(r))
	assert.False(t, m.IsPrivileged(r), "non-superuser is authenticated but not privileged")
}

func TestIsSuperuser(t *testing.T) {
	assert.True(t, testManager().isSuperuser("anyone@example.com"),
		"empty superuser list privileges any allowed-domain login")
	m := testManager("Admin@Example.com")
	assert.True(t, m.isSuperuser("admin@example.com"))
	assert.False(t, m.isSuperuser("other@example.com"))
}

func TestEmailDomain(t *testing.T) {
	assert.Equal(t, "example.com", emailDomain("a@example.com"))
	assert.Equal(t, "", emailDomain("not-an-email"))
}
