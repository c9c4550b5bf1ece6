package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/askthebridge/bridge/internal/pkg/errcode"
	appErr "github.com/askthebridge/bridge/internal/pkg/errors"
	"github.com/askthebridge/bridge/internal/pkg/response"
	"github.com/askthebridge/bridge/internal/service"
)

type HelpHandler struct {
	help *service.HelpService
}

func NewHelpHandler(help *service.HelpService) *HelpHandler {
	return &HelpHandler{help: help}
}

func (h *HelpHandler) ListExperts(c *gin.Context) {
	experts, err := h.help.ListExperts(c.Request.Context(), c.Query("role"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"experts": experts})
}

type helpSendRequest struct {
	Message      string   `json:"message"`
	Role         string   `json:"role"`
	ExpertEmails []string `json:"expert_emails"`
}

func (h *HelpHandler) Send(c *gin.Context) {
	var req helpSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	sent, err := h.help.SendHelpRequest(c.Request.Context(), getUserEmail(c), req.Role, req.Message, req.ExpertEmails)
	if err != nil {
		if errors.Is(err, appErr.ErrNotFound) {
			response.Error(c, errcode.ErrExpertNotFound, "invalid expert selection")
			return
		}
		if sent > 0 {
			response.Error(c, errcode.ErrMailFailed, "some emails failed to send")
			return
		}
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"status": "emails_sent", "sent": sent})
}
