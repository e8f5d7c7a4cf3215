package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/decisions"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/email"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/events"
	apphttp "github.com/uaebusinessdesk/uae-business-setup-sub001/internal/http"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/http/router"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/leads"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/notification"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/migrations"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/config"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/db"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/logger"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/metrics"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/ratelimit"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	workflowMetrics := metrics.NewWorkflowMetrics(registry)

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	publicLimiter, adminLimiter, closeLimiters, err := initLimiters(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize rate limiters", "error", err)
		panic("failed to initialize rate limiters: " + err.Error())
	}
	defer closeLimiters()

	sender, err := email.NewSender(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}
	dispatcher := notification.NewDispatcher(sender, log, workflowMetrics,
		notification.WithTimeout(cfg.GetNotifyTimeout()),
		notification.WithMaxPerSecond(cfg.GetNotifyMaxPerSecond()),
	)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules
	// ========================================================================

	notificationModule := notification.New(dispatcher, cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	leadsModule := leads.NewModule(pool, eventBus, val, cfg, log, workflowMetrics)
	decisionsModule := decisions.NewModule(pool, leadsModule.Repository(), eventBus, val, cfg, log, workflowMetrics)
	leadsModule.SetQuoteIssuer(decisionsModule.Tokens())

	app := &apphttp.App{
		Config:        cfg,
		Logger:        log,
		Health:        db.NewPoolAdapter(pool),
		EventBus:      eventBus,
		PublicLimiter: publicLimiter,
		AdminLimiter:  adminLimiter,
		Metrics:       workflowMetrics,
		Gatherer:      registry,
		Modules: []apphttp.Module{
			leadsModule,
			decisionsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "error", err)
	}
	if err := eventBus.Wait(shutdownCtx); err != nil {
		log.Warn("event handlers still running at shutdown", "error", err)
	}
	if err := dispatcher.Wait(shutdownCtx); err != nil {
		log.Warn("notifications still in flight at shutdown", "error", err)
	}
	log.Info("server stopped")
}

// initLimiters builds the public and admin limiters on the configured backend.
func initLimiters(ctx context.Context, cfg *config.Config, log *logger.Logger) (ratelimit.Limiter, ratelimit.Limiter, func(), error) {
	publicMax, publicWindow := cfg.GetPublicRateLimit()
	adminMax, adminWindow := cfg.GetAdminRateLimit()
	publicPolicy := ratelimit.Policy{Max: publicMax, Window: publicWindow}
	adminPolicy := ratelimit.Policy{Max: adminMax, Window: adminWindow}

	if cfg.GetRateLimitBackend() != "redis" {
		return ratelimit.NewMemory(publicPolicy), ratelimit.NewMemory(adminPolicy), func() {}, nil
	}

	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, nil, nil, err
	}
	client := redis.NewClient(opt)
	if err := withRetry(ctx, log, "redis connection", 3, time.Second, func() error {
		return client.Ping(ctx).Err()
	}); err != nil {
		_ = client.Close()
		return nil, nil, nil, err
	}
	log.Info("rate limiter using redis backend")

	closeFn := func() { _ = client.Close() }
	return ratelimit.NewRedis(client, "ratelimit:public", publicPolicy, log),
		ratelimit.NewRedis(client, "ratelimit:admin", adminPolicy, log),
		closeFn, nil
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
