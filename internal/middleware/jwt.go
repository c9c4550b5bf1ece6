package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/askthebridge/bridge/internal/model"
	"github.com/askthebridge/bridge/internal/pkg/errcode"
	"github.com/askthebridge/bridge/internal/pkg/jwt"
	"github.com/askthebridge/bridge/internal/pkg/response"
)

const (
	ContextUserIDKey    = "user_id"
	ContextUserEmailKey = "user_email"
	ContextCallerKey    = "caller_type"
)

func JWTAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, secret)
		if !ok {
			response.Error(c, errcode.ErrUnauthorized, "unauthorized")
			c.Abort()
			return
		}
		setCaller(c, claims)
		c.Next()
	}
}

// OptionalJWTAuth marks the request as guest when no valid token is present
// instead of rejecting it. The chat surface serves both audiences.
func OptionalJWTAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parseBearer(c, secret); ok {
			setCaller(c, claims)
		} else {
			c.Set(ContextCallerKey, model.CallerTypeGuest)
		}
		c.Next()
	}
}

func parseBearer(c *gin.Context, secret []byte) (*jwt.Claims, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, false
	}
	claims, err := jwt.ParseToken(parts[1], secret)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func setCaller(c *gin.Context, claims *jwt.Claims) {
	c.Set(ContextUserIDKey, claims.UserID)
	c.Set(ContextCallerKey, model.CallerTypeUser)
	if claims.Email != "" {
		c.Set(ContextUserEmailKey, claims.Email)
	}
}
