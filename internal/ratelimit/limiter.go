// Package ratelimit provides a sliding-window limiter used to throttle
// authentication attempts.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrLimitExceeded indicates the rate limit has been reached for the key.
var ErrLimitExceeded = errors.New("rate limit exceeded")

// Result captures the outcome of a rate-limit evaluation.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter describes a rate-limiting strategy.
type Limiter interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

type bucket struct {
	attempts []time.Time
}

// MemoryLimiter is an in-memory sliding-window Limiter. Login throttling is
// process-local, so no distributed backend is involved.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

// NewMemoryLimiter returns an empty in-memory limiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{buckets: make(map[string]*bucket)}
}

// Check enforces a sliding-window limit for the provided key.
func (m *MemoryLimiter) Check(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := time.Now()
	windowStart := now.Add(-window)

	m.mu.Lock()
	defer m.mu.Unlock()

	bkt := m.buckets[key]
	if bkt == nil {
		bkt = &bucket{}
		m.buckets[key] = bkt
	}

	bkt.attempts = keepRecent(bkt.attempts, windowStart)

	allowed := len(bkt.attempts) < limit
	if allowed {
		bkt.attempts = append(bkt.attempts, now)
	}

	remaining := limit - len(bkt.attempts)
	if remaining < 0 {
		remaining = 0
	}

	result := &Result{Allowed: allowed, Remaining: remaining, ResetAt: windowStart.Add(window)}
	if !allowed {
		return result, ErrLimitExceeded
	}
	return result, nil
}

// Cleanup drops buckets whose last attempt is older than maxAge.
func (m *MemoryLimiter) Cleanup(maxAge time.Duration) {
	if maxAge <= 0 {
		return
	}

	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	for key, bkt := range m.buckets {
		if len(bkt.attempts) == 0 || bkt.attempts[len(bkt.attempts)-1].Before(cutoff) {
			delete(m.buckets, key)
		}
	}
}

func keepRecent(attempts []time.Time, windowStart time.Time) []time.Time {
	first := 0
	for first < len(attempts) && attempts[first].Before(windowStart) {
		first++
	}

	if first == 0 {
		return attempts
	}

	copy(attempts, attempts[first:])
	return attempts[:len(attempts)-first]
}
