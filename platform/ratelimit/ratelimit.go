// Package ratelimit provides fixed-window admission control keyed by an
// arbitrary string, typically "clientIP|route".
// This is part of the platform layer and contains no business logic.
package ratelimit

import (
	"context"
	"time"
)

// Policy bounds the number of calls allowed per key within one window.
type Policy struct {
	Max    int
	Window time.Duration
}

// Limiter decides whether a call identified by key may proceed.
// Implementations never return errors: a limiter that cannot reach its
// backing store admits the call.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// Key builds the composite limiter key for a client and route.
func Key(clientIP, route string) string {
	return clientIP + "|" + route
}
