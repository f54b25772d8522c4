// Package ratelimit bounds how often a key may perform an action, either in
// process memory or in a shared redis instance.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides whether one more attempt for key is allowed now.
// Every call counts as an attempt.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Unlimited allows every attempt.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (bool, error) { return true, nil }

const cleanupInterval = 5 * time.Minute

// Memory is a token bucket per key. Each key may spend burst attempts at once
// and regains perWindow attempts spread evenly over window.
type Memory struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int

	mu          sync.Mutex
	lastCleanup time.Time
	now         func() time.Time
}

// NewMemory allows burst attempts at once and refills perWindow attempts per
// window. Non-positive arguments fall back to defaults.
func NewMemory(perWindow int, window time.Duration, burst int) *Memory {
	if perWindow < 1 {
		perWindow = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	if burst < 1 {
		burst = perWindow
	}
	m := &Memory{
		rate:  rate.Limit(float64(perWindow) / window.Seconds()),
		burst: burst,
		now:   time.Now,
	}
	m.lastCleanup = m.now()
	return m
}

// WithClock replaces the time source. Tests use it to step over windows.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	m.lastCleanup = now()
	return m
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	return m.limiter(key).AllowN(m.now(), 1), nil
}

// RetryAfter reports how long key must wait for its next attempt.
func (m *Memory) RetryAfter(key string) time.Duration {
	now := m.now()
	r := m.limiter(key).ReserveN(now, 1)
	defer r.CancelAt(now)
	if !r.OK() {
		return 0
	}
	return r.DelayFrom(now)
}

func (m *Memory) limiter(key string) *rate.Limiter {
	if l, ok := m.limiters.Load(key); ok {
		return l.(*rate.Limiter)
	}

	actual, _ := m.limiters.LoadOrStore(key, rate.NewLimiter(m.rate, m.burst))
	m.maybeCleanup()
	return actual.(*rate.Limiter)
}

// maybeCleanup drops limiters whose bucket has refilled, since those keys
// have been idle long enough to start from scratch anyway.
func (m *Memory) maybeCleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastCleanup) < cleanupInterval {
		return
	}
	m.lastCleanup = now

	m.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).TokensAt(now) >= float64(m.burst) {
			m.limiters.Delete(key)
		}
		return true
	})
}
