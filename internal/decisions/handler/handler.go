package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/decisions/service"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/decisions/transport"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/httpkit"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/validator"
)

// PublicHandler serves the prospect's decision page. The token in the body is
// the only credential.
type PublicHandler struct {
	processor *service.Processor
	val       *validator.Validator
}

func NewPublicHandler(processor *service.Processor, val *validator.Validator) *PublicHandler {
	return &PublicHandler{processor: processor, val: val}
}

// RegisterRoutes registers the decision routes under /public/decisions.
func (h *PublicHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/details", h.Details)
	rg.POST("/decide", h.Decide)
	rg.POST("/view", h.View)
}

// Details handles POST /api/v1/public/decisions/details
func (h *PublicHandler) Details(c *gin.Context) {
	var req transport.TokenRequest
	if !httpkit.BindJSON(c, &req, h.val) {
		return
	}

	resp, err := h.processor.Details(c.Request.Context(), req.Token)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

// Decide handles POST /api/v1/public/decisions/decide
func (h *PublicHandler) Decide(c *gin.Context) {
	var req transport.DecideRequest
	if !httpkit.BindJSON(c, &req, h.val) {
		return
	}

	resp, err := h.processor.Decide(c.Request.Context(), req.Token, req.Decision, req.Reason)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

// View handles POST /api/v1/public/decisions/view
func (h *PublicHandler) View(c *gin.Context) {
	var req transport.TokenRequest
	if !httpkit.BindJSON(c, &req, h.val) {
		return
	}

	resp, err := h.processor.View(c.Request.Context(), req.Token)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}
