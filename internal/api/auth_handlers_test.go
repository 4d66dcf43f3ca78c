package api

import (
	"net/http"
	"testing"

	"github.com/modelshare/modelshare-server/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandlers_LoginAndWhoAmI(t *testing.T) {
	ts := setupTestServer(t)
	aliceID := ts.createUser(t, "alice")

	body := assertStatus(t, ts.api.Post("/auth/login", map[string]any{
		"username": "alice",
		"password": "password123",
	}), service.StatusOK)
	assert.Equal(t, "Bearer", body["tokenType"])
	token, ok := body["accessToken"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)

	body = assertStatus(t, ts.api.Get("/auth/whoami", "Authorization: Bearer "+token), service.StatusOK)
	user := body["user"].(map[string]any)
	assert.Equal(t, aliceID, user["id"])
	assert.Equal(t, "alice", user["username"])
}

func TestAuthHandlers_LoginFailures(t *testing.T) {
	ts := setupTestServer(t)
	ts.createUser(t, "alice")

	wrong := assertErrorCode(t, ts.api.Post("/auth/login", map[string]any{"username": "alice", "password": "nope"}), http.StatusUnauthorized, 3)
	unknown := assertErrorCode(t, ts.api.Post("/auth/login", map[string]any{"username": "mallory", "password": "nope"}), http.StatusUnauthorized, 3)

	// No hint whether the user exists.
	assert.Equal(t, wrong, unknown)
}

func TestAuthHandlers_WhoAmIRejectsBadTokens(t *testing.T) {
	ts := setupTestServer(t)

	assertErrorCode(t, ts.api.Get("/auth/whoami"), http.StatusUnauthorized, 3)
	assertErrorCode(t, ts.api.Get("/auth/whoami", "Authorization: Bearer v4.local.garbage"), http.StatusUnauthorized, 3)
}

func TestAuthHandlers_WhoAmIAfterUserDeleted(t *testing.T) {
	ts := setupTestServer(t)
	ts.createUser(t, "alice")

	body := assertStatus(t, ts.api.Post("/auth/login", map[string]any{"username": "alice", "password": "password123"}), service.StatusOK)
	token := body["accessToken"].(string)

	assertStatus(t, ts.api.Delete("/user/alice"), service.StatusOK)

	assertErrorCode(t, ts.api.Get("/auth/whoami", "Authorization: Bearer "+token), http.StatusUnauthorized, 3)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		token, ok := bearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}
