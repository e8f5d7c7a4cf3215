// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/events"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/config"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/logger"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/metrics"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/ratelimit"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration (HTTP and JWT settings only).
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is used for readiness/health checks (e.g., DB ping).
	Health HealthChecker
	// EventBus is the domain event bus for cross-module communication.
	EventBus events.Bus
	// PublicLimiter and AdminLimiter gate write traffic per client and route.
	PublicLimiter ratelimit.Limiter
	AdminLimiter  ratelimit.Limiter
	// Metrics records limiter denials; Gatherer backs /metrics.
	Metrics  *metrics.WorkflowMetrics
	Gatherer prometheus.Gatherer
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
