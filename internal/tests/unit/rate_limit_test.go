package unit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	custommiddleware "github.com/anhbaysgalan1/arena/internal/middleware"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_BasicFunctionality(t *testing.T) {
	// Create a rate limiter that allows 2 requests per second with burst of 2
	rl := custommiddleware.NewRateLimiter(2.0, 2)
	defer rl.Close()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	limited := rl.Limit(handler)

	// First two requests fit in the burst
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()
		limited.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	}

	// Third request immediately after exhausts the bucket
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	w := httptest.NewRecorder()
	limited.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Rate limit exceeded")
}

func TestRateLimiter_PerClientIsolation(t *testing.T) {
	rl := custommiddleware.NewRateLimiter(1.0, 1)
	defer rl.Close()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	limited := rl.Limit(handler)

	// Exhaust client A's budget
	reqA := httptest.NewRequest(http.MethodGet, "/test", nil)
	reqA.RemoteAddr = "10.0.0.1:1000"
	wA := httptest.NewRecorder()
	limited.ServeHTTP(wA, reqA)
	assert.Equal(t, http.StatusOK, wA.Code)

	reqA2 := httptest.NewRequest(http.MethodGet, "/test", nil)
	reqA2.RemoteAddr = "10.0.0.1:1000"
	wA2 := httptest.NewRecorder()
	limited.ServeHTTP(wA2, reqA2)
	assert.Equal(t, http.StatusTooManyRequests, wA2.Code)

	// Client B is unaffected
	reqB := httptest.NewRequest(http.MethodGet, "/test", nil)
	reqB.RemoteAddr = "10.0.0.2:1000"
	wB := httptest.NewRecorder()
	limited.ServeHTTP(wB, reqB)
	assert.Equal(t, http.StatusOK, wB.Code)
}

func TestRateLimiter_XForwardedFor(t *testing.T) {
	rl := custommiddleware.NewRateLimiter(1.0, 1)
	defer rl.Close()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	limited := rl.Limit(handler)

	// Same proxy address, different forwarded clients
	req1 := httptest.NewRequest(http.MethodGet, "/test", nil)
	req1.RemoteAddr = "172.16.0.1:443"
	req1.Header.Set("X-Forwarded-For", "203.0.113.1, 172.16.0.1")
	w1 := httptest.NewRecorder()
	limited.ServeHTTP(w1, req1)
	assert.Equal(t, http.StatusOK, w1.Code)

	req2 := httptest.NewRequest(http.MethodGet, "/test", nil)
	req2.RemoteAddr = "172.16.0.1:443"
	req2.Header.Set("X-Forwarded-For", "203.0.113.2, 172.16.0.1")
	w2 := httptest.NewRecorder()
	limited.ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusOK, w2.Code)
}

func TestRateLimiter_RefillAllowsLaterRequests(t *testing.T) {
	rl := custommiddleware.NewRateLimiter(10.0, 1)
	defer rl.Close()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	limited := rl.Limit(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = "10.0.0.3:1000"
	w := httptest.NewRecorder()
	limited.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Wait for one token to refill at 10 rps
	time.Sleep(150 * time.Millisecond)

	req2 := httptest.NewRequest(http.MethodGet, "/test", nil)
	req2.RemoteAddr = "10.0.0.3:1000"
	w2 := httptest.NewRecorder()
	limited.ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusOK, w2.Code)
}
