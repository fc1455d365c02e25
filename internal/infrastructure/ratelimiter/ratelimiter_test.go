package ratelimiter

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestLimiter(t *testing.T, rate, burst int) (Limiter, *fakeClock) {
	t.Helper()

	cache := NewInMemory()
	t.Cleanup(func() { _ = cache.Close() })

	clock := &fakeClock{now: time.Now()}
	return New(Options{
		MaxRatePerSecond: rate,
		MaxBurst:         burst,
		Cache:            cache,
		CacheTTL:         time.Hour,
		Now:              clock.Now,
	}), clock
}

func TestRateLimiter_BurstThenDeny(t *testing.T) {
	limiter, _ := newTestLimiter(t, 10, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("a"), "request %d", i)
	}
	assert.False(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("b"), "buckets are per source")
}

func TestRateLimiter_RefillsAtConfiguredRate(t *testing.T) {
	limiter, clock := newTestLimiter(t, 10, 5)

	for i := 0; i < 5; i++ {
		require.True(t, limiter.Allow("a"))
	}
	require.False(t, limiter.Allow("a"))

	// 10/s is one token every 100ms.
	clock.Advance(50 * time.Millisecond)
	assert.False(t, limiter.Allow("a"))

	clock.Advance(50 * time.Millisecond)
	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))

	clock.Advance(250 * time.Millisecond)
	assert.Equal(t, 2, limiter.Remaining("a"))

	clock.Advance(time.Hour)
	assert.Equal(t, 5, limiter.Remaining("a"))
}

func TestRateLimiter_GetSourceKey(t *testing.T) {
	limiter := New(Options{MaxRatePerSecond: 1, SourceHeaderKey: "X-Forwarded-For"})

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", limiter.GetSourceKey(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", limiter.GetSourceKey(r))
}

func TestInMemory_Expiry(t *testing.T) {
	cache := newInMemory(time.Hour)
	defer cache.Close()

	clock := &fakeClock{now: time.Now()}
	cache.now = clock.Now

	require.NoError(t, cache.SetWithExpiration("k", 7, time.Second))
	require.NoError(t, cache.Set("forever", 1))

	value, err := cache.Get("k")
	require.NoError(t, err)
	assert.Equal(t, 7, value)

	clock.now = clock.now.Add(2 * time.Second)

	_, err = cache.Get("k")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 2, cache.Len())

	cache.removeExpired()
	assert.Equal(t, 1, cache.Len())

	value, err = cache.Get("forever")
	require.NoError(t, err)
	assert.Equal(t, 1, value)
}

func TestEventLimiter(t *testing.T) {
	limiter := NewEventLimiter(120, 240)
	now := time.Now()

	for i := 0; i < 240; i++ {
		allowed, _ := limiter.AllowAt(now)
		require.True(t, allowed, "event %d", i)
	}

	allowed, notify := limiter.AllowAt(now)
	assert.False(t, allowed)
	assert.True(t, notify)

	allowed, notify = limiter.AllowAt(now.Add(time.Millisecond))
	assert.False(t, allowed)
	assert.False(t, notify, "one notice per second")

	allowed, _ = limiter.AllowAt(now.Add(time.Second))
	assert.True(t, allowed)
}
