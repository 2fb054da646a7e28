package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiterConfig holds configuration for per-client rate limiting
type RateLimiterConfig struct {
	Enabled           bool          `json:"enabled"`
	RequestsPerSecond float64       `json:"requests_per_second"`
	Burst             int           `json:"burst"`
	ClientTTL         time.Duration `json:"client_ttl"`
}

// DefaultRateLimiterConfig returns limits sized for the unauthenticated
// public surface.
func DefaultRateLimiterConfig() *RateLimiterConfig {
	return &RateLimiterConfig{
		Enabled:           true,
		RequestsPerSecond: 10,
		Burst:             20,
		ClientTTL:         3 * time.Minute,
	}
}

// RateLimiter throttles requests per client IP with a token bucket.
// Limiter state for clients idle past ClientTTL is swept on access.
type RateLimiter struct {
	config *RateLimiterConfig
	logger *zap.Logger

	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config *RateLimiterConfig, logger *zap.Logger) *RateLimiter {
	if config == nil {
		config = DefaultRateLimiterConfig()
	}
	return &RateLimiter{
		config:    config,
		logger:    logger,
		clients:   make(map[string]*clientLimiter),
		lastSweep: time.Now(),
	}
}

// Allow reports whether a request from the client may proceed now.
func (rl *RateLimiter) Allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastSweep) > rl.config.ClientTTL {
		for ip, client := range rl.clients {
			if now.Sub(client.lastSeen) > rl.config.ClientTTL {
				delete(rl.clients, ip)
			}
		}
		rl.lastSweep = now
	}

	client, ok := rl.clients[clientIP]
	if !ok {
		client = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.Burst),
		}
		rl.clients[clientIP] = client
	}
	client.lastSeen = now

	return client.limiter.Allow()
}

// RateLimit creates rate limiting middleware over a shared limiter
func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.config.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			clientIP := getClientIP(r)
			if !limiter.Allow(clientIP) {
				GetRequestLogger(r.Context()).Warn("Rate limit exceeded",
					zap.String("ip", clientIP),
					zap.String("path", r.URL.Path),
				)

				retryAfter := 1
				if limiter.config.RequestsPerSecond < 1 {
					retryAfter = int(1 / limiter.config.RequestsPerSecond)
				}
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprintf(w, `{"success":false,"error":{"type":"RATE_LIMIT_EXCEEDED","message":"Too many requests"},"timestamp":%d}`,
					time.Now().Unix())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
