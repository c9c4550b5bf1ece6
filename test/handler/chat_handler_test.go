package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/askthebridge/bridge/internal/model"
)

func TestChatMessagePersistsExchange(t *testing.T) {
	env := setupEnv(t)
	defer env.cleanup()

	result := doJSON(t, env.router, http.MethodPost, "/api/v1/conversations", "",
		map[string]string{"title": ""})
	require.Equal(t, 0, result.Code)
	conversationID, _ := result.Data["id"].(string)
	require.NotEmpty(t, conversationID)

	result = doJSON(t, env.router, http.MethodPost, "/api/v1/chat/message", "",
		map[string]string{"message": "tell me a fun fact", "conversation_id": conversationID})
	require.Equal(t, 0, result.Code)
	require.Equal(t, string(model.SourceModelGeneral), result.Data["source"])
	require.Equal(t, "stubbed model reply", result.Data["answer"])
	// First turn of a conversation also gets a generated title.
	require.Equal(t, "stubbed model reply", result.Data["new_title"])

	// Turn persistence runs in the background.
	require.Eventually(t, func() bool {
		count, err := env.turns.CountByConversation(context.Background(), conversationID)
		return err == nil && count == 2
	}, 3*time.Second, 50*time.Millisecond)

	result = doJSON(t, env.router, http.MethodGet, "/api/v1/conversations/"+conversationID+"/messages", "", nil)
	require.Equal(t, 0, result.Code)
	messages, _ := result.Data["messages"].([]interface{})
	require.Len(t, messages, 2)
	first, _ := messages[0].(map[string]interface{})
	second, _ := messages[1].(map[string]interface{})
	require.Equal(t, model.RoleUser, first["role"])
	require.Equal(t, "tell me a fun fact", first["content"])
	require.Equal(t, model.RoleAssistant, second["role"])
	require.Equal(t, "stubbed model reply", second["content"])
}

func TestChatMessageDomainFallbackForGuests(t *testing.T) {
	env := setupEnv(t)
	defer env.cleanup()

	result := doJSON(t, env.router, http.MethodPost, "/api/v1/chat/message", "",
		map[string]string{"message": "what is minimum safe manning"})
	require.Equal(t, 0, result.Code)
	require.Equal(t, string(model.SourceDomainFallback), result.Data["source"])
	requiresAuth, _ := result.Data["requires_auth"].(bool)
	require.True(t, requiresAuth)

	result = doJSON(t, env.router, http.MethodPost, "/api/v1/chat/message", "",
		map[string]string{"message": ""})
	require.NotEqual(t, 0, result.Code)
}
