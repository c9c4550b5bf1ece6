package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/askthebridge/bridge/internal/pkg/errcode"
	"github.com/askthebridge/bridge/internal/pkg/response"
	"github.com/askthebridge/bridge/internal/service"
)

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatMessageRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

func (h *ChatHandler) Message(c *gin.Context) {
	var req chatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		response.Error(c, errcode.ErrInvalid, "message is required")
		return
	}
	answer := h.chat.Ask(c.Request.Context(), &service.ChatRequest{
		Message:        req.Message,
		ConversationID: req.ConversationID,
		CallerRole:     getCallerType(c),
		UserEmail:      getUserEmail(c),
	})
	response.Success(c, answer)
}

func (h *ChatHandler) AskAI(c *gin.Context) {
	var req chatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		response.Error(c, errcode.ErrInvalid, "message is required")
		return
	}
	answer := h.chat.AskAI(c.Request.Context(), &service.ChatRequest{
		Message:        req.Message,
		ConversationID: req.ConversationID,
		CallerRole:     getCallerType(c),
		UserEmail:      getUserEmail(c),
	})
	response.Success(c, answer)
}
