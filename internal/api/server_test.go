package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/modelshare/modelshare-server/internal/auth"
	"github.com/modelshare/modelshare-server/internal/ratelimit"
	"github.com/modelshare/modelshare-server/internal/service"
	"github.com/modelshare/modelshare-server/internal/sse"
	"github.com/modelshare/modelshare-server/internal/store"
	"github.com/modelshare/modelshare-server/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api    humatest.TestAPI
	db     *store.DB
	events *sse.Manager
}

// setupTestServer builds a server over an in-memory store with every service
// wired and search disabled.
func setupTestServer(t *testing.T, opts ...func(*Options)) *testServer {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	db, err := store.New("", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	events := sse.NewManager(logger)
	v := validation.New()

	tokens, err := auth.NewTokenService(bytes.Repeat([]byte{7}, 32), time.Hour)
	require.NoError(t, err)

	limiter := ratelimit.New(100, 100)
	t.Cleanup(limiter.Stop)

	users := service.NewUserService(db, auth.NewPasswordHasher(bcrypt.MinCost), v, events, logger)
	services := &Services{
		Users:    users,
		Models:   service.NewModelService(db, nil, v, events, logger),
		Rights:   service.NewRightsService(db, events, logger),
		Comments: service.NewCommentService(db, v, events, logger),
		Files:    service.NewFileService(db, nil, events, logger),
		Auth:     service.NewAuthService(users, db, tokens, limiter, v, logger),
	}

	var o Options
	for _, opt := range opts {
		opt(&o)
	}

	s := NewServer(db, services, events, o, logger)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.API()),
		db:     db,
		events: events,
	}
}

// decode unmarshals a response body into a generic map.
func decode(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body), "body: %s", resp.Body.String())
	return body
}

// decodeInto unmarshals a response body into v.
func decodeInto(t *testing.T, resp *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), v), "body: %s", resp.Body.String())
}

// assertStatus checks a success envelope carries the given business status.
func assertStatus(t *testing.T, resp *httptest.ResponseRecorder, want service.Status) map[string]any {
	t.Helper()
	require.Equal(t, http.StatusOK, resp.Code, "body: %s", resp.Body.String())
	body := decode(t, resp)
	assert.Equal(t, string(want), body["status"])
	return body
}

// assertErrorCode checks an error envelope.
func assertErrorCode(t *testing.T, resp *httptest.ResponseRecorder, httpStatus, code int) map[string]any {
	t.Helper()
	require.Equal(t, httpStatus, resp.Code, "body: %s", resp.Body.String())
	body := decode(t, resp)
	assert.Equal(t, StatusNOK, body["status"])
	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok, "error member missing: %s", resp.Body.String())
	assert.InDelta(t, code, errBody["code"], 0)
	assert.NotEmpty(t, errBody["msg"])
	return errBody
}

// createUser registers a user over HTTP and returns its id.
func (ts *testServer) createUser(t *testing.T, username string) string {
	t.Helper()
	resp := ts.api.Post("/users", map[string]any{
		"username": username,
		"password": "password123",
		"email":    username + "@example.com",
	})
	body := assertStatus(t, resp, service.StatusOK)
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	return user["id"].(string)
}

// createModel creates a model over HTTP and returns its id.
func (ts *testServer) createModel(t *testing.T, name string) string {
	t.Helper()
	resp := ts.api.Post("/models", map[string]any{
		"name":    name,
		"creator": "alice",
		"tags":    []string{"Low Poly"},
	})
	body := assertStatus(t, resp, service.StatusOK)
	model, ok := body["model"].(map[string]any)
	require.True(t, ok)
	return model["id"].(string)
}

func TestServer_UnsupportedMethod(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Patch("/users", map[string]any{})

	errBody := assertErrorCode(t, resp, http.StatusMethodNotAllowed, 1)
	assert.Equal(t, "Unsupported HTTP/1.1 method for this service", errBody["msg"])
}

func TestServer_UnknownRoute(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/nothing/here")

	assertErrorCode(t, resp, http.StatusNotFound, 1)
}

func TestServer_MalformedJSON(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/users", "Content-Type: application/json", bytes.NewReader([]byte(`{"username":`)))

	require.GreaterOrEqual(t, resp.Code, 400)
	require.Less(t, resp.Code, 500)
	body := decode(t, resp)
	assert.Equal(t, StatusNOK, body["status"])
	assert.InDelta(t, 0, body["error"].(map[string]any)["code"], 0)
	assert.Equal(t, "Couldn't parse the JSON", body["error"].(map[string]any)["msg"])
}

func TestServer_SchemaValidationUsesMalformedCode(t *testing.T) {
	ts := setupTestServer(t)

	// password is required
	resp := ts.api.Post("/users", map[string]any{"username": "alice"})

	require.Equal(t, http.StatusUnprocessableEntity, resp.Code, "body: %s", resp.Body.String())
	errBody := decode(t, resp)["error"].(map[string]any)
	assert.InDelta(t, 0, errBody["code"], 0)
	assert.NotEmpty(t, errBody["details"])
}

func TestServer_CORSOnEveryResponse(t *testing.T) {
	ts := setupTestServer(t)

	ok := ts.api.Get("/health")
	assert.Equal(t, "*", ok.Header().Get("Access-Control-Allow-Origin"))

	failed := ts.api.Delete("/users")
	assert.Equal(t, "*", failed.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_RateLimit(t *testing.T) {
	ts := setupTestServer(t, func(o *Options) { o.RequestsPerMinute = 2 })

	assert.Equal(t, http.StatusOK, ts.api.Get("/health").Code)
	assert.Equal(t, http.StatusOK, ts.api.Get("/health").Code)

	resp := ts.api.Get("/health")
	errBody := assertErrorCode(t, resp, http.StatusTooManyRequests, 4)
	assert.Equal(t, "Too many requests", errBody["msg"])
}

func TestServer_SuccessBodyHasNoSchemaLink(t *testing.T) {
	ts := setupTestServer(t)

	body := assertStatus(t, ts.api.Get("/users"), service.StatusOK)
	assert.NotContains(t, body, "$schema")
	assert.Equal(t, []any{}, body["users"])
}
