package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/leads/service"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/leads/transport"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/httpkit"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/validator"
)

// Handler serves the administrative lead endpoints.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const msgInvalidLeadID = "invalid lead id"

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id", h.GetByID)
	rg.POST("/:id/tracks/:track/transitions", h.Transition)
	rg.PUT("/:id/tracks/:track/assignee", h.SetAssignee)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return
	}

	lead, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) Transition(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return
	}

	var req transport.TransitionRequest
	if !httpkit.BindJSON(c, &req, h.val) {
		return
	}

	resp, err := h.svc.Transition(c.Request.Context(), id, c.Param("track"), req, httpkit.ActorID(c))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

func (h *Handler) SetAssignee(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return
	}

	var req transport.AssigneeRequest
	if !httpkit.BindJSON(c, &req, h.val) {
		return
	}

	lead, err := h.svc.SetAssignee(c.Request.Context(), id, c.Param("track"), req, httpkit.ActorID(c))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}
