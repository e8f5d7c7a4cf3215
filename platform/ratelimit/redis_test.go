package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisLimiter(t *testing.T, policy Policy) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, "ratelimit:", policy, nil), mr
}

func TestRedisLimiterBoundary(t *testing.T) {
	l, mr := newRedisLimiter(t, Policy{Max: 10, Window: 10 * time.Minute})
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

	mr.FastForward(10*time.Minute + time.Second)
	if !l.Allow(ctx, key) {
		t.Fatal("call after window should be allowed")
	}
	if got, _ := mr.Get("ratelimit:" + key); got != "1" {
		t.Fatalf("expected counter reset to 1, got %q", got)
	}
}

func TestRedisLimiterFailsOpen(t *testing.T) {
	l, mr := newRedisLimiter(t, Policy{Max: 1, Window: time.Minute})
	mr.Close()

	if !l.Allow(context.Background(), "k") {
		t.Fatal("expected limiter to admit calls when redis is down")
	}
}
