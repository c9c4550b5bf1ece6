package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askthebridge/bridge/internal/pkg/errcode"
	"github.com/askthebridge/bridge/internal/service"
)

type apiResponse struct {
	Code int                    `json:"code"`
	Msg  string                 `json:"msg"`
	Data map[string]interface{} `json:"data"`
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body interface{}) *apiResponse {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	result := &apiResponse{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), result))
	return result
}

func TestAuthHandlersFlow(t *testing.T) {
	env := setupEnv(t)
	defer env.cleanup()

	email := service.NewID() + "@example.com"
	code := "123456"
	require.NoError(t, env.seed(email, code, "Test User", "secret"))

	result := doJSON(t, env.router, http.MethodPost, "/api/v1/auth/verify", "",
		map[string]string{"email": email, "code": code})
	require.Equal(t, 0, result.Code)
	require.Equal(t, "verified", result.Data["status"])

	// Reusing a consumed code fails.
	result = doJSON(t, env.router, http.MethodPost, "/api/v1/auth/verify", "",
		map[string]string{"email": email, "code": code})
	require.NotEqual(t, 0, result.Code)

	result = doJSON(t, env.router, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email": email, "password": "wrong"})
	require.Equal(t, errcode.ErrUnauthorized, result.Code)

	result = doJSON(t, env.router, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email": email, "password": "secret"})
	require.Equal(t, 0, result.Code)
	token, _ := result.Data["token"].(string)
	require.NotEmpty(t, token)

	// Listing conversations needs a valid token.
	result = doJSON(t, env.router, http.MethodGet, "/api/v1/conversations", "", nil)
	require.Equal(t, errcode.ErrUnauthorized, result.Code)

	result = doJSON(t, env.router, http.MethodGet, "/api/v1/conversations", token, nil)
	require.Equal(t, 0, result.Code)
}
