// Package decisions lets prospects accept, decline or question a quote
// through an emailed link.
package decisions

import (
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/decisions/handler"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/decisions/repository"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/decisions/service"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/events"
	apphttp "github.com/uaebusinessdesk/uae-business-setup-sub001/internal/http"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/config"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/logger"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/metrics"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/validator"
)

// Module is the decisions bounded context module implementing http.Module.
type Module struct {
	tokens        *service.Tokens
	processor     *service.Processor
	publicHandler *handler.PublicHandler
}

// NewModule wires the token store on pool and records decisions through leads.
func NewModule(pool repository.DBTX, leads service.LeadStore, eventBus events.Bus, val *validator.Validator, cfg config.DecisionConfig, log *logger.Logger, m *metrics.WorkflowMetrics) *Module {
	tokens := service.NewTokens(repository.New(pool), leads, cfg.GetDecisionTokenTTL())
	processor := service.NewProcessor(tokens, leads, eventBus, log, m)

	return &Module{
		tokens:        tokens,
		processor:     processor,
		publicHandler: handler.NewPublicHandler(processor, val),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "decisions"
}

// Tokens exposes the issuer the leads module uses when a quote is sent.
func (m *Module) Tokens() *service.Tokens {
	return m.tokens
}

// RegisterRoutes mounts the public decision routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.publicHandler.RegisterRoutes(ctx.Public.Group("/decisions", ctx.PublicRateLimit("public_decisions")))
}

var _ apphttp.Module = (*Module)(nil)
