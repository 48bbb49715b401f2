package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(maxRequests int, window time.Duration, now *time.Time) *RateLimiter {
	rl := &RateLimiter{
		entries:     make(map[string]rateLimitEntry),
		maxRequests: maxRequests,
		window:      window,
		now:         func() time.Time { return *now },
		done:        make(chan struct{}),
	}
	return rl
}

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(3, time.Minute, &now)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("ip:/unlock"), "request %d should pass", i+1)
	}
	assert.False(t, rl.Allow("ip:/unlock"))

	// Other keys are unaffected
	assert.True(t, rl.Allow("other:/unlock"))
}

func TestRateLimiter_WindowReset(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(1, time.Minute, &now)

	assert.True(t, rl.Allow("ip:/unlock"))
	assert.False(t, rl.Allow("ip:/unlock"))

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("ip:/unlock"))
}

func TestRateLimiter_MiddlewareSilences(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(1, time.Minute, &now)

	handled := 0
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handled++
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/unlock", nil)
	req.RemoteAddr = "10.0.0.1:5000"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Over the limit: silently answered, not processed
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, handled)
}

func TestRateLimiter_SweepRemovesExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(5, time.Minute, &now)

	rl.Allow("a:/x")
	rl.Allow("b:/y")

	now = now.Add(2 * time.Minute)
	rl.removeExpired()

	rl.mu.Lock()
	assert.Empty(t, rl.entries)
	rl.mu.Unlock()
}
