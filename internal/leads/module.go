// Package leads provides the lead intake and fulfillment tracking module.
// This file defines the module that encapsulates leads setup and route registration.
package leads

import (
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/events"
	apphttp "github.com/uaebusinessdesk/uae-business-setup-sub001/internal/http"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/leads/handler"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/leads/repository"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/leads/service"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/config"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/logger"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/metrics"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	repo          *repository.Repository
	service       *service.Service
	handler       *handler.Handler
	publicHandler *handler.PublicHandler
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool repository.DBTX, eventBus events.Bus, val *validator.Validator, cfg config.NotificationConfig, log *logger.Logger, m *metrics.WorkflowMetrics) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, cfg.GetAppBaseURL(), log, m)

	return &Module{
		repo:          repo,
		service:       svc,
		handler:       handler.New(svc, val),
		publicHandler: handler.NewPublicHandler(svc, val),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Repository exposes the lead store for modules that record decisions.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// SetQuoteIssuer wires the decision token issuer used by send_quote.
func (m *Module) SetQuoteIssuer(issuer service.QuoteIssuer) {
	m.service.SetQuoteIssuer(issuer)
}

// RegisterRoutes mounts the public intake route and the admin lead routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.publicHandler.RegisterRoutes(ctx.Public.Group("/leads", ctx.PublicRateLimit("public_leads")))
	m.handler.RegisterRoutes(ctx.Admin.Group("/leads", ctx.AdminRateLimit("admin_leads")))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
