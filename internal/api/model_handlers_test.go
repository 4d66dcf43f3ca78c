package api

import (
	"net/http"
	"testing"

	"github.com/modelshare/modelshare-server/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelHandlers_CreateNormalizes(t *testing.T) {
	ts := setupTestServer(t)

	body := assertStatus(t, ts.api.Post("/models", map[string]any{
		"name":         "Gear",
		"creator":      " alice ",
		"creationDate": 1709294400000,
		"tags":         []string{"Low Poly", "low-poly", "Printable"},
	}), service.StatusOK)

	model := body["model"].(map[string]any)
	assert.Equal(t, "alice", model["creator"])
	assert.Equal(t, "2024-03-01T12:00:00Z", model["creationDate"])
	assert.Equal(t, []any{"low-poly", "printable"}, model["tags"])
	assert.Equal(t, []any{}, model["readers"])
	assert.Equal(t, []any{}, model["writers"])
}

func TestModelHandlers_FieldRoutes(t *testing.T) {
	ts := setupTestServer(t)
	modelID := ts.createModel(t, "Gear")

	tests := []struct {
		route string
		key   string
		value any
		want  any
	}{
		{"name", "name", "Sprocket", "Sprocket"},
		{"file", "file", "fil-1", "fil-1"},
		{"creator", "creator", "bob", "bob"},
		{"creationdate", "creationDate", "2024-03-01T12:00:00Z", "2024-03-01T12:00:00Z"},
		{"thumbnail", "thumbnail", "fil-2", "fil-2"},
		{"tags", "tags", []string{"Gears"}, []any{"gears"}},
		{"publicRead", "publicRead", true, true},
		{"publicWrite", "publicWrite", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			path := "/model/" + modelID + "/" + tt.route
			assertStatus(t, ts.api.Put(path, map[string]any{tt.key: tt.value}), service.StatusOK)

			body := assertStatus(t, ts.api.Get(path), service.StatusOK)
			assert.Equal(t, tt.want, body[tt.key])
		})
	}
}

func TestModelHandlers_FieldRouteErrors(t *testing.T) {
	ts := setupTestServer(t)
	modelID := ts.createModel(t, "Gear")

	errBody := assertErrorCode(t, ts.api.Put("/model/"+modelID+"/publicRead", map[string]any{"publicRead": "yes"}), http.StatusBadRequest, 0)
	assert.Equal(t, map[string]any{"publicRead": "has the wrong type"}, errBody["details"])

	errBody = assertErrorCode(t, ts.api.Put("/model/"+modelID+"/name", map[string]any{"title": "x"}), http.StatusBadRequest, 0)
	assert.Equal(t, map[string]any{"name": "is required"}, errBody["details"])

	assertStatus(t, ts.api.Put("/model/mdl-missing/name", map[string]any{"name": "x"}), service.StatusModelMissing)
	body := assertStatus(t, ts.api.Get("/model/mdl-missing/name"), service.StatusModelMissing)
	assert.NotContains(t, body, "name")
}

func TestModelHandlers_UpdateOnlyChangesSentFields(t *testing.T) {
	ts := setupTestServer(t)
	modelID := ts.createModel(t, "Gear")

	body := assertStatus(t, ts.api.Put("/model/"+modelID, map[string]any{"publicRead": true}), service.StatusOK)
	model := body["model"].(map[string]any)
	assert.Equal(t, "Gear", model["name"])
	assert.Equal(t, true, model["publicRead"])
	assert.Equal(t, []any{"low-poly"}, model["tags"])
}

func TestModelHandlers_PublicListings(t *testing.T) {
	ts := setupTestServer(t)
	ts.createModel(t, "Private")
	assertStatus(t, ts.api.Post("/models", map[string]any{"name": "Open", "publicRead": true, "publicWrite": true}), service.StatusOK)
	assertStatus(t, ts.api.Post("/models", map[string]any{"name": "Viewable", "publicRead": true}), service.StatusOK)

	body := assertStatus(t, ts.api.Get("/models/publicRead"), service.StatusOK)
	models := body["models"].([]any)
	require.Len(t, models, 2)
	assert.Equal(t, "Open", models[0].(map[string]any)["name"])
	assert.Equal(t, "Viewable", models[1].(map[string]any)["name"])
	assert.NotContains(t, models[0], "readers")

	body = assertStatus(t, ts.api.Get("/models/publicWrite"), service.StatusOK)
	models = body["models"].([]any)
	require.Len(t, models, 1)
	assert.Equal(t, "Open", models[0].(map[string]any)["name"])
}

func TestModelHandlers_SearchWithoutIndex(t *testing.T) {
	ts := setupTestServer(t)
	ts.createModel(t, "Spur Gear")
	ts.createModel(t, "Bracket")

	body := assertStatus(t, ts.api.Get("/models/search?q=gear"), service.StatusOK)
	assert.InDelta(t, 1, body["total"], 0)
	hits := body["hits"].([]any)
	require.Len(t, hits, 1)
	assert.Equal(t, "Spur Gear", hits[0].(map[string]any)["name"])
}

func TestModelHandlers_Delete(t *testing.T) {
	ts := setupTestServer(t)
	modelID := ts.createModel(t, "Gear")

	assertStatus(t, ts.api.Delete("/model/"+modelID), service.StatusOK)
	assertStatus(t, ts.api.Delete("/model/"+modelID), service.StatusModelMissing)
	assertStatus(t, ts.api.Get("/model/"+modelID), service.StatusModelMissing)
	assertStatus(t, ts.api.Get("/model/"+modelID+"/comments"), service.StatusModelMissing)
}
