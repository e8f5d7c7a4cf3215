package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apphttp "github.com/uaebusinessdesk/uae-business-setup-sub001/internal/http"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/httpkit"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/ratelimit"
)

// New builds the gin engine and mounts every module.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	// CORS sits on the engine so unmatched OPTIONS preflights are checked too.
	engine.Use(httpkit.CORS(app.Config))

	engine.GET("/api/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if app.Health != nil {
			if err := app.Health.Ping(ctx); err != nil {
				app.Logger.Error("health check failed", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMiddleware := httpkit.AuthRequired(app.Config)

	v1 := engine.Group("/api/v1")
	public := v1.Group("/public", httpkit.BodyLimit(httpkit.MaxBodyBytes))
	admin := v1.Group("/admin", httpkit.BodyLimit(httpkit.MaxBodyBytes), authMiddleware, httpkit.RequireRole("admin"))

	gatherer := app.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	admin.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	routerCtx := &apphttp.RouterContext{
		Engine:          engine,
		V1:              v1,
		Public:          public,
		Admin:           admin,
		Config:          app.Config,
		AuthMiddleware:  authMiddleware,
		PublicRateLimit: limiterFactory(app, app.PublicLimiter),
		AdminRateLimit:  limiterFactory(app, app.AdminLimiter),
	}

	for _, module := range app.Modules {
		module.RegisterRoutes(routerCtx)
		app.Logger.Info("module registered", "module", module.Name())
	}

	return engine
}

func limiterFactory(app *apphttp.App, limiter ratelimit.Limiter) func(string) gin.HandlerFunc {
	return func(route string) gin.HandlerFunc {
		if limiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return httpkit.RateLimit(limiter, route, app.Logger, app.Metrics)
	}
}
