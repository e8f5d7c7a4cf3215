package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count int
	start time.Time
}

// MemoryLimiter keeps fixed-window counters in process memory. Counters are
// per replica.
type MemoryLimiter struct {
	mu        sync.Mutex
	policy    Policy
	entries   map[string]*window
	now       func() time.Time
	lastSweep time.Time
}

// MemoryOption configures a MemoryLimiter.
type MemoryOption func(*MemoryLimiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(l *MemoryLimiter) {
		l.now = now
	}
}

// NewMemory creates an in-process limiter for policy.
func NewMemory(policy Policy, opts ...MemoryOption) *MemoryLimiter {
	l := &MemoryLimiter{
		policy:  policy,
		entries: make(map[string]*window),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.lastSweep = l.now()
	return l
}

// Allow counts the call against key's current window.
func (l *MemoryLimiter) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweepLocked(now)

	entry, ok := l.entries[key]
	if !ok || now.Sub(entry.start) > l.policy.Window {
		l.entries[key] = &window{count: 1, start: now}
		return true
	}

	entry.count++
	return entry.count <= l.policy.Max
}

// Len returns the number of tracked keys.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// sweepLocked drops expired windows at most once per policy window.
func (l *MemoryLimiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < l.policy.Window {
		return
	}
	for key, entry := range l.entries {
		if now.Sub(entry.start) > l.policy.Window {
			delete(l.entries, key)
		}
	}
	l.lastSweep = now
}

var _ Limiter = (*MemoryLimiter)(nil)
