package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryLimiterBoundary(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	l := NewMemory(Policy{Max: 10, Window: 10 * time.Minute}, WithClock(clock.Now))
	ctx := context.Background()
	key := Key("203.0.113.7", "public_leads")

	for i := 1; i <= 10; i++ {
		if !l.Allow(ctx, key) {
			t.Fatalf("call %d should be allowed", i)
		}
	}
	if l.Allow(ctx, key) {
		t.Fatal("11th call should be denied")
	}

	clock.Advance(10*time.Minute + time.Second)
	if !l.Allow(ctx, key) {
		t.Fatal("call after window should be allowed")
	}
	for i := 2; i <= 10; i++ {
		if !l.Allow(ctx, key) {
			t.Fatalf("call %d of the new window should be allowed", i)
		}
	}
	if l.Allow(ctx, key) {
		t.Fatal("new window should count from one")
	}
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	l := NewMemory(Policy{Max: 1, Window: time.Minute})
	ctx := context.Background()

	if !l.Allow(ctx, Key("1.1.1.1", "a")) || !l.Allow(ctx, Key("1.1.1.1", "b")) || !l.Allow(ctx, Key("2.2.2.2", "a")) {
		t.Fatal("first call for each key should be allowed")
	}
	if l.Allow(ctx, Key("1.1.1.1", "a")) {
		t.Fatal("second call for the same key should be denied")
	}
}

func TestMemoryLimiterSweepsExpiredKeys(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	l := NewMemory(Policy{Max: 5, Window: time.Minute}, WithClock(clock.Now))
	ctx := context.Background()

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		l.Allow(ctx, Key(ip, "r"))
	}
	if l.Len() != 3 {
		t.Fatalf("expected 3 keys, got %d", l.Len())
	}

	clock.Advance(2 * time.Minute)
	l.Allow(ctx, Key("10.0.0.9", "r"))
	if l.Len() != 1 {
		t.Fatalf("expected expired keys to be swept, got %d", l.Len())
	}
}

func TestMemoryLimiterConcurrentAccess(t *testing.T) {
	l := NewMemory(Policy{Max: 50, Window: time.Hour})
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow(ctx, "shared") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Fatalf("expected exactly 50 admissions, got %d", allowed)
	}
}
