package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/askthebridge/bridge/internal/pkg/errcode"
	"github.com/askthebridge/bridge/internal/pkg/response"
	"github.com/askthebridge/bridge/internal/service"
)

type ConversationHandler struct {
	conversations *service.ConversationService
}

func NewConversationHandler(conversations *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

type createConversationRequest struct {
	Title string `json:"title"`
}

func (h *ConversationHandler) Create(c *gin.Context) {
	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	conv, err := h.conversations.Create(c.Request.Context(), getUserEmail(c), req.Title)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, conv)
}

func (h *ConversationHandler) List(c *gin.Context) {
	convs, err := h.conversations.ListByOwner(c.Request.Context(), getUserEmail(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"conversations": convs})
}

func (h *ConversationHandler) Messages(c *gin.Context) {
	turns, err := h.conversations.Messages(c.Request.Context(), c.Param("id"), getUserEmail(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"messages": turns})
}

type attachGuestRequest struct {
	ConversationIDs []string `json:"conversation_ids"`
}

func (h *ConversationHandler) AttachGuest(c *gin.Context) {
	var req attachGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	attached, err := h.conversations.AttachGuest(c.Request.Context(), getUserEmail(c), req.ConversationIDs)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"attached": attached})
}
