package ratelimiter

import (
	"sync"
	"time"
)

// Limiter is a token bucket for a single identity.
type Limiter struct {
	tokens     float64
	capacity   float64
	rate       float64
	lastRefill time.Time
	mu         sync.Mutex
	timer      *time.Timer
	identity   string
	parent     *IdentityRateLimiter
}

// IdentityRateLimiter keeps one token bucket per identity (email, IP, ...).
// Idle buckets expire so the map does not grow without bound.
type IdentityRateLimiter struct {
	limiters       map[string]*Limiter
	mu             sync.RWMutex
	rate           float64
	capacity       float64
	expirationTime time.Duration
}

// New creates an IdentityRateLimiter refilling rate tokens per second up to
// capacity, dropping idle buckets after expirationTime.
func New(rate float64, capacity float64, expirationTime time.Duration) *IdentityRateLimiter {
	return &IdentityRateLimiter{
		limiters:       make(map[string]*Limiter),
		rate:           rate,
		capacity:       capacity,
		expirationTime: expirationTime,
	}
}

func (irl *IdentityRateLimiter) cleanup(identity string) {
	irl.mu.Lock()
	delete(irl.limiters, identity)
	irl.mu.Unlock()
}

func (l *Limiter) resetTimer() {
	if l.timer != nil {
		l.timer.Stop()
	}
	l.timer = time.AfterFunc(l.parent.expirationTime, func() {
		l.parent.cleanup(l.identity)
	})
}

func (irl *IdentityRateLimiter) getLimiter(identity string) *Limiter {
	irl.mu.RLock()
	limiter, exists := irl.limiters[identity]
	irl.mu.RUnlock()

	if exists {
		limiter.resetTimer()
		return limiter
	}

	irl.mu.Lock()
	defer irl.mu.Unlock()

	// Double-check after acquiring write lock
	limiter, exists = irl.limiters[identity]
	if exists {
		limiter.resetTimer()
		return limiter
	}

	limiter = &Limiter{
		tokens:     irl.capacity,
		capacity:   irl.capacity,
		rate:       irl.rate,
		lastRefill: time.Now(),
		identity:   identity,
		parent:     irl,
	}
	irl.limiters[identity] = limiter
	limiter.resetTimer()

	return limiter
}

func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(l.lastRefill).Seconds()

	l.tokens += elapsed * l.rate
	if l.tokens > l.capacity {
		l.tokens = l.capacity
	}
	l.lastRefill = now

	if l.tokens >= 1 {
		l.tokens--
		return true
	}
	return false
}

// Allow reports whether a request from identity should pass.
func (irl *IdentityRateLimiter) Allow(identity string) bool {
	return irl.getLimiter(identity).Allow()
}

// Stop cancels all expiration timers.
func (irl *IdentityRateLimiter) Stop() {
	irl.mu.Lock()
	defer irl.mu.Unlock()

	for _, limiter := range irl.limiters {
		if limiter.timer != nil {
			limiter.timer.Stop()
		}
	}
}
