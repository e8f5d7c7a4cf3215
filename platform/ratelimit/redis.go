package ratelimit

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/logger"
)

// fixedWindowScript increments the counter and starts its expiry on the first hit.
var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisLimiter shares fixed-window counters across replicas.
type RedisLimiter struct {
	client redis.Scripter
	prefix string
	policy Policy
	log    *logger.Logger
}

// NewRedis creates a limiter whose counters live under prefix.
func NewRedis(client redis.Scripter, prefix string, policy Policy, log *logger.Logger) *RedisLimiter {
	if log == nil {
		log = logger.Discard()
	}
	return &RedisLimiter{client: client, prefix: prefix, policy: policy, log: log}
}

// Allow counts the call in Redis. Store failures admit the call.
func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	count, err := fixedWindowScript.Run(ctx, l.client, []string{l.prefix + key}, l.policy.Window.Milliseconds()).Int64()
	if err != nil {
		l.log.Warn("rate limiter store unavailable", "key", key, "error", err)
		return true
	}
	return count <= int64(l.policy.Max)
}

var _ Limiter = (*RedisLimiter)(nil)
