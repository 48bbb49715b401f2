package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLCache_HitWithinTTL(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := newURLCacheForTest(50*time.Minute, func() time.Time { return now })

	calls := 0
	fetch := func(ctx context.Context, key string) (string, error) {
		calls++
		return fmt.Sprintf("https://example.com/%s?sig=%d", key, calls), nil
	}

	first, err := cache.Get(context.Background(), "k1", fetch)
	require.NoError(t, err)

	// Second call inside the cached TTL returns the identical URL without a
	// second storage-layer call
	now = now.Add(49 * time.Minute)
	second, err := cache.Get(context.Background(), "k1", fetch)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestURLCache_RefetchAfterExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := newURLCacheForTest(50*time.Minute, func() time.Time { return now })

	calls := 0
	fetch := func(ctx context.Context, key string) (string, error) {
		calls++
		return fmt.Sprintf("https://example.com/%s?sig=%d", key, calls), nil
	}

	first, err := cache.Get(context.Background(), "k1", fetch)
	require.NoError(t, err)

	now = now.Add(50 * time.Minute)
	second, err := cache.Get(context.Background(), "k1", fetch)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, calls)
}

func TestURLCache_FetchErrorNotCached(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := newURLCacheForTest(50*time.Minute, func() time.Time { return now })

	failing := func(ctx context.Context, key string) (string, error) {
		return "", fmt.Errorf("storage unreachable")
	}
	_, err := cache.Get(context.Background(), "k1", failing)
	assert.Error(t, err)
	assert.Equal(t, 0, cache.Len())

	ok := func(ctx context.Context, key string) (string, error) {
		return "https://example.com/k1", nil
	}
	url, err := cache.Get(context.Background(), "k1", ok)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/k1", url)
}

func TestURLCache_SweepRemovesExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := newURLCacheForTest(50*time.Minute, func() time.Time { return now })

	fetch := func(ctx context.Context, key string) (string, error) {
		return "https://example.com/" + key, nil
	}

	_, err := cache.Get(context.Background(), "old", fetch)
	require.NoError(t, err)

	now = now.Add(30 * time.Minute)
	_, err = cache.Get(context.Background(), "fresh", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())

	// 55 minutes after "old" was cached, 25 after "fresh"
	now = now.Add(25 * time.Minute)
	cache.removeExpired()
	assert.Equal(t, 1, cache.Len())
}

func TestURLCache_IndependentKeys(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := newURLCacheForTest(50*time.Minute, func() time.Time { return now })

	fetch := func(ctx context.Context, key string) (string, error) {
		return "https://example.com/" + key, nil
	}

	a, err := cache.Get(context.Background(), "a", fetch)
	require.NoError(t, err)
	b, err := cache.Get(context.Background(), "b", fetch)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
