package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// Cached lifetime is deliberately shorter than the presigned URL's real
	// validity so a served URL is never already expired for the caller.
	urlCacheTTL      = 50 * time.Minute
	urlSweepInterval = 10 * time.Minute
)

type cacheEntry struct {
	url     string
	expires time.Time
}

// URLCache amortizes presigned-URL generation. It is an unbounded key→entry
// map: entries self-expire and a background sweeper removes stale ones.
// Constructed once at startup and closed on shutdown.
type URLCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry

	ttl time.Duration
	now func() time.Time

	done chan struct{}
	once sync.Once
}

// NewURLCache creates a URL cache and starts its background sweeper
func NewURLCache() *URLCache {
	c := &URLCache{
		entries: make(map[string]cacheEntry),
		ttl:     urlCacheTTL,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go c.sweep(urlSweepInterval)
	return c
}

// newURLCacheForTest builds a cache with an injected clock and no sweeper
func newURLCacheForTest(ttl time.Duration, now func() time.Time) *URLCache {
	return &URLCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     now,
		done:    make(chan struct{}),
	}
}

// Get returns the cached URL for key if still valid, otherwise calls fetch,
// caches the result and returns it
func (c *URLCache) Get(ctx context.Context, key string, fetch func(ctx context.Context, key string) (string, error)) (string, error) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if ok && c.now().Before(entry.expires) {
		return entry.url, nil
	}

	url, err := fetch(ctx, key)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{url: url, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()

	return url, nil
}

// Len returns the number of cached entries
func (c *URLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *URLCache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.done:
			return
		}
	}
}

func (c *URLCache) removeExpired() {
	now := c.now()
	c.mu.Lock()
	removed := 0
	for key, entry := range c.entries {
		if !now.Before(entry.expires) {
			delete(c.entries, key)
			removed++
		}
	}
	remaining := len(c.entries)
	c.mu.Unlock()

	if removed > 0 {
		log.Debug().
			Int("removed", removed).
			Int("remaining", remaining).
			Msg("Swept expired signed URLs")
	}
}

// Close stops the background sweeper
func (c *URLCache) Close() {
	c.once.Do(func() {
		close(c.done)
	})
}
