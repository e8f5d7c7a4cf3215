package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/leads/service"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/leads/transport"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/httpkit"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/validator"
)

// PublicHandler handles the unauthenticated intake form.
type PublicHandler struct {
	svc *service.Service
	val *validator.Validator
}

func NewPublicHandler(svc *service.Service, val *validator.Validator) *PublicHandler {
	return &PublicHandler{svc: svc, val: val}
}

// RegisterRoutes registers the public intake route under /public/leads.
func (h *PublicHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Submit)
}

func (h *PublicHandler) Submit(c *gin.Context) {
	var req transport.CreateLeadRequest
	if !httpkit.BindJSON(c, &req, h.val) {
		return
	}

	resp, err := h.svc.Submit(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}
