package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/askthebridge/bridge/internal/model"
	"github.com/askthebridge/bridge/internal/pkg/errcode"
	"github.com/askthebridge/bridge/internal/pkg/response"
	"github.com/askthebridge/bridge/internal/service"
)

type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

type clickRequest struct {
	ConversationID string `json:"conversation_id"`
	Button         string `json:"button"`
	Question       string `json:"question"`
}

func (h *AnalyticsHandler) RecordClick(c *gin.Context) {
	var req clickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	err := h.analytics.RecordClick(c.Request.Context(), &model.ClickEvent{
		ConversationID: req.ConversationID,
		Button:         req.Button,
		Question:       req.Question,
		UserEmail:      getUserEmail(c),
		UserType:       getCallerType(c),
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"status": "recorded"})
}
