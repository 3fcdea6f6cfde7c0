package ratelimiter

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_Allow(t *testing.T) {
	t.Run("allows requests within the rate limit", func(t *testing.T) {
		l := &Limiter{
			tokens:     10,
			capacity:   10,
			rate:       1,
			lastRefill: time.Now(),
		}

		assert.True(t, l.Allow())
		assert.Equal(t, 9.0, l.tokens)
	})

	t.Run("denies requests when tokens are depleted", func(t *testing.T) {
		l := &Limiter{
			tokens:     0,
			capacity:   10,
			rate:       1,
			lastRefill: time.Now(),
		}

		assert.False(t, l.Allow())
	})

	t.Run("refills tokens over time", func(t *testing.T) {
		l := &Limiter{
			tokens:     0,
			capacity:   10,
			rate:       1,
			lastRefill: time.Now().Add(-2 * time.Second),
		}

		assert.True(t, l.Allow())
		assert.InDelta(t, 0.0, l.tokens, 1.1) // Account for potential slight time discrepancies
	})

	t.Run("does not exceed capacity", func(t *testing.T) {
		l := &Limiter{
			tokens:     9,
			capacity:   10,
			rate:       1,
			lastRefill: time.Now().Add(-2 * time.Second),
		}

		l.Allow()
		assert.Equal(t, float64(9), l.tokens)
	})

	t.Run("concurrent requests", func(t *testing.T) {
		l := &Limiter{
			tokens:     10,
			capacity:   10,
			rate:       10, // 10 tokens per second
			lastRefill: time.Now(),
		}

		wg := sync.WaitGroup{}
		numRequests := 20
		allowed := 0
		for i := 0; i < numRequests; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if l.Allow() {
					l.mu.Lock()
					allowed++
					l.mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.GreaterOrEqual(t, allowed, 9)
		assert.LessOrEqual(t, allowed, 11)
	})
}

func TestIdentityRateLimiter_getLimiter(t *testing.T) {
	t.Run("creates a new limiter for a new identity", func(t *testing.T) {
		irl := New(1, 10, time.Minute)
		limiter := irl.getLimiter("user@school.edu")

		require.NotNil(t, limiter)
		assert.Equal(t, 10.0, limiter.tokens)
		assert.Equal(t, "user@school.edu", limiter.identity)
	})

	t.Run("returns the existing limiter for the same identity", func(t *testing.T) {
		irl := New(1, 10, time.Minute)
		limiter1 := irl.getLimiter("user@school.edu")
		limiter2 := irl.getLimiter("user@school.edu")

		assert.Same(t, limiter1, limiter2)
	})

	t.Run("creates different limiters for different identities", func(t *testing.T) {
		irl := New(1, 10, time.Minute)
		limiter1 := irl.getLimiter("user@school.edu")
		limiter2 := irl.getLimiter("10.0.0.1")

		assert.NotSame(t, limiter1, limiter2)
	})

	t.Run("concurrent access for limiter creation", func(t *testing.T) {
		irl := New(1, 10, time.Minute)
		identity := "user@school.edu"
		wg := sync.WaitGroup{}
		numRoutines := 10

		for i := 0; i < numRoutines; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				irl.getLimiter(identity)
			}()
		}
		wg.Wait()
		irl.mu.RLock()
		limiter, ok := irl.limiters[identity]
		irl.mu.RUnlock()
		require.True(t, ok)
		require.NotNil(t, limiter)
		assert.Equal(t, 1, len(irl.limiters)) // Ensure only one limiter is created
	})
}

func TestIdentityRateLimiter_Allow(t *testing.T) {
	t.Run("allows and denies requests based on per-identity limiters", func(t *testing.T) {
		irl := New(1, 2, time.Minute) // 1 request per second, capacity 2

		assert.True(t, irl.Allow("user@school.edu"))
		assert.True(t, irl.Allow("user@school.edu"))
		assert.False(t, irl.Allow("user@school.edu")) // Depleted tokens

		assert.True(t, irl.Allow("other@school.edu")) // Separate limiter

		time.Sleep(2 * time.Second) // Wait for refill

		assert.True(t, irl.Allow("user@school.edu"))
	})
}

func TestIdentityRateLimiter_cleanup(t *testing.T) {
	t.Run("removes limiter after expiration time", func(t *testing.T) {
		irl := New(1, 10, 1*time.Millisecond)
		_ = irl.getLimiter("user@school.edu")

		require.Eventually(t, func() bool {
			irl.mu.RLock()
			defer irl.mu.RUnlock()
			_, exists := irl.limiters["user@school.edu"]
			return !exists
		}, 100*time.Millisecond, 10*time.Millisecond, "limiter should be removed after expiration")
	})

	t.Run("does not remove limiter before expiration time", func(t *testing.T) {
		irl := New(1, 10, time.Minute)
		_ = irl.getLimiter("user@school.edu")

		time.Sleep(100 * time.Millisecond)

		irl.mu.RLock()
		_, exists := irl.limiters["user@school.edu"]
		irl.mu.RUnlock()
		assert.True(t, exists, "limiter should not be removed before expiration")
	})

	t.Run("resets timer on access", func(t *testing.T) {
		irl := New(1, 10, 50*time.Millisecond)

		time.Sleep(30 * time.Millisecond)

		// Access the limiter, which should reset the timer
		irl.Allow("user@school.edu")

		// Total wait time is now 60ms, > 50ms, but the timer was reset at 30ms
		time.Sleep(30 * time.Millisecond)

		irl.mu.RLock()
		_, exists := irl.limiters["user@school.edu"]
		irl.mu.RUnlock()
		assert.True(t, exists, "limiter should not be removed because the timer was reset")

		require.Eventually(t, func() bool {
			irl.mu.RLock()
			defer irl.mu.RUnlock()
			_, exists := irl.limiters["user@school.edu"]
			return !exists
		}, 100*time.Millisecond, 10*time.Millisecond, "limiter should be removed after the new expiration")
	})

	t.Run("cleanup specific identity", func(t *testing.T) {
		irl := New(1, 10, time.Minute)
		_ = irl.getLimiter("user@school.edu")
		_ = irl.getLimiter("10.0.0.1")

		irl.cleanup("user@school.edu")

		irl.mu.RLock()
		_, exists1 := irl.limiters["user@school.edu"]
		_, exists2 := irl.limiters["10.0.0.1"]
		irl.mu.RUnlock()

		assert.False(t, exists1, "removed limiter should be gone")
		assert.True(t, exists2, "other limiters should stay")
	})
}

func TestIdentityRateLimiter_Stop(t *testing.T) {
	t.Run("stops all timers", func(t *testing.T) {
		irl := New(1, 10, time.Minute)
		irl.getLimiter("user@school.edu")
		irl.getLimiter("10.0.0.1")

		irl.Stop()

		assert.False(t, irl.limiters["user@school.edu"].timer.Stop(), "timer should be stopped")
		assert.False(t, irl.limiters["10.0.0.1"].timer.Stop(), "timer should be stopped")
	})
}
