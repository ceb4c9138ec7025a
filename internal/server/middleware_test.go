package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"launch-tracker/internal/config"
	"launch-tracker/internal/database"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (v *visitorLimiter) size() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.visitors)
}

func TestNewServer_DefaultConfigRejectsUnknownOrigin(t *testing.T) {
	for _, k := range []string{"PORT", "APP_ENV", "CLIENT_URL", "STORE_DRIVER", "RATE_LIMIT", "RATE_BURST", "SHUTDOWN_TIMEOUT", "TRUST_PROXY"} {
		t.Setenv(k, "")
	}
	cfg, err := config.Load()
	require.NoError(t, err)

	srv := NewServer(cfg, database.NewMemoryStore(), zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/v1/launches", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/v1/launches", nil)
	req.Header.Set("Origin", config.DevOrigin)
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	assert.Equal(t, config.DevOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit_IgnoresForwardedForByDefault(t *testing.T) {
	s := newTestServer(database.NewMemoryStore())
	s.limiter = newVisitorLimiter(0.001, 3)
	handler := s.RegisterRoutes()

	ok := 0
	for i := 0; i < 100; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/launches", nil)
		req.RemoteAddr = "192.0.2.1:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code == http.StatusOK {
			ok++
		}
	}

	assert.Equal(t, 3, ok)
	assert.Equal(t, 1, s.limiter.size())
}

func TestRateLimit_TrustedProxyUsesForwardedFor(t *testing.T) {
	s := newTestServer(database.NewMemoryStore())
	s.limiter = newVisitorLimiter(1, 1)
	s.trustProxy = true
	handler := s.RegisterRoutes()

	for _, client := range []string{"10.0.0.1", "10.0.0.2"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/launches", nil)
		req.RemoteAddr = "192.0.2.1:4000"
		req.Header.Set("X-Forwarded-For", client)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code, client)
	}
	assert.Equal(t, 2, s.limiter.size())
}

func TestVisitorLimiter_EvictsIdleVisitors(t *testing.T) {
	now := time.Date(2030, time.December, 27, 0, 0, 0, 0, time.UTC)
	limiter := newVisitorLimiter(1, 3)
	limiter.now = func() time.Time { return now }
	limiter.lastSweep = now

	for i := 0; i < 50; i++ {
		limiter.get(fmt.Sprintf("10.0.0.%d", i))
	}
	require.Equal(t, 50, limiter.size())

	now = now.Add(visitorIdleTTL / 2)
	limiter.get("10.0.0.1")

	now = now.Add(visitorIdleTTL/2 + time.Second)
	limiter.get("192.0.2.9")

	// only the visitor seen half a TTL ago and the new one remain
	assert.Equal(t, 2, limiter.size())
}
