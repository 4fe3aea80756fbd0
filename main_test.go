package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"todoapp/internal/services"
)

// newTestApp builds the fully wired app on an in-memory database.
func newTestApp(t *testing.T) (*fiber.App, *services.AuthService) {
	t.Helper()
	viper.Set("SQLITE_PATH", "file:maintest?mode=memory&cache=shared")
	viper.Set("JWT_SECRET", "test_jwt_secret")
	viper.Set("RABBITMQ_URL", "")

	app, authService, err := NewApp()
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}
	return app, authService
}

func TestAppStartupAndHealthCheck(t *testing.T) {
	app, _ := newTestApp(t)
	defer app.Shutdown()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	bodyBytes, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, string(bodyBytes), `"status":"healthy"`)
}

func TestAppRejectsUnauthenticatedTodoAccess(t *testing.T) {
	app, _ := newTestApp(t)
	defer app.Shutdown()

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAppIssuesValidTokens(t *testing.T) {
	app, authService := newTestApp(t)
	defer app.Shutdown()

	registerBody, _ := json.Marshal(map[string]string{
		"username": "mainuser",
		"password": "password123",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewReader(registerBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	req = httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(registerBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var loginResp map[string]interface{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&loginResp))
	resp.Body.Close()
	token, _ := loginResp["token"].(string)
	assert.NotEmpty(t, token)

	// The token the wired app issues validates against its own auth service
	claims, err := authService.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "mainuser", claims["username"])
}
