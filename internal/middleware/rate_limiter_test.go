package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func rateLimitedHandler(config *RateLimiterConfig) http.Handler {
	limiter := NewRateLimiter(config, zap.NewNop())
	return RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRateLimitBlocksPastBurst(t *testing.T) {
	handler := rateLimitedHandler(&RateLimiterConfig{
		Enabled:           true,
		RequestsPerSecond: 0.001,
		Burst:             2,
		ClientTTL:         time.Minute,
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/verify/AAAABBBBCCCC", nil)
		req.RemoteAddr = "198.51.100.7:4242"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d is inside the burst", i+1)
	}

	req := httptest.NewRequest(http.MethodGet, "/verify/AAAABBBBCCCC", nil)
	req.RemoteAddr = "198.51.100.7:4242"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimitIsPerClient(t *testing.T) {
	handler := rateLimitedHandler(&RateLimiterConfig{
		Enabled:           true,
		RequestsPerSecond: 0.001,
		Burst:             1,
		ClientTTL:         time.Minute,
	})

	first := httptest.NewRequest(http.MethodGet, "/verify/AAAABBBBCCCC", nil)
	first.RemoteAddr = "198.51.100.7:4242"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	require.Equal(t, http.StatusOK, rec.Code)

	exhausted := httptest.NewRequest(http.MethodGet, "/verify/AAAABBBBCCCC", nil)
	exhausted.RemoteAddr = "198.51.100.7:4242"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, exhausted)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	other := httptest.NewRequest(http.MethodGet, "/verify/AAAABBBBCCCC", nil)
	other.RemoteAddr = "203.0.113.9:4242"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code, "another client has its own bucket")
}

func TestRateLimitDisabledPassesThrough(t *testing.T) {
	handler := rateLimitedHandler(&RateLimiterConfig{Enabled: false})

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/verify/AAAABBBBCCCC", nil)
		req.RemoteAddr = "198.51.100.7:4242"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}
