package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"
)

type rateLimitEntry struct {
	count     int
	resetTime time.Time
}

// RateLimiter tracks request counts per IP and path within a time window.
// It is an explicitly owned component: constructed once, swept on a timer,
// closed on shutdown.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]rateLimitEntry

	maxRequests int
	window      time.Duration
	now         func() time.Time

	done chan struct{}
	once sync.Once
}

// NewRateLimiter creates a rate limiter and starts its background sweeper
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		entries:     make(map[string]rateLimitEntry),
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
		done:        make(chan struct{}),
	}
	go rl.sweep(5 * time.Minute)
	return rl
}

// Allow reports whether a request for key is within the limit
func (rl *RateLimiter) Allow(key string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.entries[key]
	if !ok || now.After(entry.resetTime) {
		rl.entries[key] = rateLimitEntry{count: 1, resetTime: now.Add(rl.window)}
		return true
	}

	if entry.count >= rl.maxRequests {
		return false
	}

	entry.count++
	rl.entries[key] = entry
	return true
}

// Middleware limits requests per IP and path. Over-limit requests on
// tracking-style endpoints are answered 204 without processing, so callers
// cannot probe the limit.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if !rl.Allow(ip + ":" + r.URL.Path) {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.removeExpired()
		case <-rl.done:
			return
		}
	}
}

func (rl *RateLimiter) removeExpired() {
	now := rl.now()
	rl.mu.Lock()
	for key, entry := range rl.entries {
		if now.After(entry.resetTime) {
			delete(rl.entries, key)
		}
	}
	rl.mu.Unlock()
}

// Close stops the background sweeper
func (rl *RateLimiter) Close() {
	rl.once.Do(func() {
		close(rl.done)
	})
}
