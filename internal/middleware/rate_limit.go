package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter provides per-client rate limiting
type RateLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	cleanup  *time.Ticker
	done     chan struct{}
}

// NewRateLimiter creates a new rate limiter with the specified rate and burst
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		rate:    rate.Limit(requestsPerSecond),
		burst:   burst,
		cleanup: time.NewTicker(time.Minute),
		done:    make(chan struct{}),
	}

	// Start cleanup goroutine to remove old limiters
	go rl.cleanupOldLimiters()

	return rl
}

// NewAPIRateLimiter covers the general contribution/read surface
func NewAPIRateLimiter() *RateLimiter {
	return NewRateLimiter(20, 40)
}

// NewOperatorRateLimiter covers the close/distribute/refund surface, which
// moves real money and deserves a tighter budget
func NewOperatorRateLimiter() *RateLimiter {
	return NewRateLimiter(2, 5)
}

// getLimiter gets or creates a rate limiter for the given key
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	limiter, exists := rl.limiters.Load(key)
	if !exists {
		newLimiter := rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters.Store(key, newLimiter)
		return newLimiter
	}
	return limiter.(*rate.Limiter)
}

// cleanupOldLimiters removes limiters that haven't been used recently
func (rl *RateLimiter) cleanupOldLimiters() {
	for {
		select {
		case <-rl.done:
			return
		case <-rl.cleanup.C:
			rl.limiters.Range(func(key, value interface{}) bool {
				limiter := value.(*rate.Limiter)
				// A full token bucket means the limiter has been idle
				if limiter.Tokens() == float64(rl.burst) {
					rl.limiters.Delete(key)
				}
				return true
			})
		}
	}
}

// Close stops the cleanup goroutine
func (rl *RateLimiter) Close() {
	rl.cleanup.Stop()
	close(rl.done)
}

// getClientIP extracts the real client IP from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (for proxies/load balancers)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ips := strings.Split(xff, ","); len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}

	// Fall back to remote address, trimming the port
	if idx := strings.LastIndex(r.RemoteAddr, ":"); idx != -1 {
		return r.RemoteAddr[:idx]
	}
	return r.RemoteAddr
}

// Limit enforces the per-client budget
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := getClientIP(r)
		limiter := rl.getLimiter(clientIP)

		if !limiter.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error": "Rate limit exceeded"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}
