package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/askthebridge/bridge/internal/middleware"
)

type RouterDeps struct {
	Auth          *AuthHandler
	Chat          *ChatHandler
	Conversations *ConversationHandler
	Help          *HelpHandler
	Analytics     *AnalyticsHandler
	Admin         *AdminHandler
	Files         *FileHandler
	JWTSecret     []byte
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api.POST("/auth/signup", middleware.RateLimit(time.Second), deps.Auth.Signup)
	api.POST("/auth/verify", deps.Auth.Verify)
	api.POST("/auth/login", deps.Auth.Login)
	api.POST("/auth/password-reset/request", middleware.RateLimit(time.Second), deps.Auth.ResetRequest)
	api.POST("/auth/password-reset/verify", deps.Auth.ResetVerify)
	api.POST("/auth/password-reset/confirm", deps.Auth.ResetConfirm)

	// The chat surface serves both guests and members; a valid token just
	// upgrades the caller role.
	chatGroup := api.Group("")
	chatGroup.Use(middleware.OptionalJWTAuth(deps.JWTSecret))
	chatGroup.POST("/chat/message", deps.Chat.Message)
	chatGroup.POST("/chat/ask-ai", deps.Chat.AskAI)
	chatGroup.POST("/conversations", deps.Conversations.Create)
	chatGroup.GET("/conversations/:id/messages", deps.Conversations.Messages)
	chatGroup.POST("/analytics/clicks", deps.Analytics.RecordClick)
	chatGroup.GET("/experts", deps.Help.ListExperts)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))
	authGroup.GET("/conversations", deps.Conversations.List)
	authGroup.POST("/guest/attach", deps.Conversations.AttachGuest)
	authGroup.POST("/help/send", deps.Help.Send)

	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.JWTAuth(deps.JWTSecret))
	adminGroup.POST("/partners", deps.Admin.CreatePartner)
	adminGroup.GET("/partners", deps.Admin.ListPartners)
	adminGroup.POST("/experts", deps.Admin.CreateExpert)
	adminGroup.POST("/knowledge/qa", deps.Admin.IngestQA)
	adminGroup.POST("/knowledge/documents", deps.Admin.IngestDocument)

	api.GET("/files/:id", deps.Files.Get)
}
