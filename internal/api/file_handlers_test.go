package api

import (
	"testing"

	"github.com/modelshare/modelshare-server/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileHandlers_Lifecycle(t *testing.T) {
	ts := setupTestServer(t)

	body := assertStatus(t, ts.api.Post("/files", map[string]any{"content": "solid cube"}), service.StatusOK)
	file := body["file"].(map[string]any)
	fileID := file["id"].(string)
	assert.Equal(t, "solid cube", file["content"])
	assert.InDelta(t, len("solid cube"), file["size"], 0)
	assert.Contains(t, file["contentType"], "text/plain")

	body = assertStatus(t, ts.api.Get("/file/"+fileID+"/content"), service.StatusOK)
	assert.Equal(t, "solid cube", body["content"])

	body = assertStatus(t, ts.api.Put("/file/"+fileID+"/content", map[string]any{"content": "solid sphere"}), service.StatusOK)
	assert.Equal(t, "solid sphere", body["file"].(map[string]any)["content"])

	body = assertStatus(t, ts.api.Get("/files"), service.StatusOK)
	files := body["files"].([]any)
	require.Len(t, files, 1)
	assert.NotContains(t, files[0], "content")

	assertStatus(t, ts.api.Delete("/file/"+fileID), service.StatusOK)
	assertStatus(t, ts.api.Delete("/file/"+fileID), service.StatusFileMissing)

	body = assertStatus(t, ts.api.Get("/file/"+fileID+"/content"), service.StatusFileMissing)
	assert.NotContains(t, body, "content")
	assertStatus(t, ts.api.Put("/file/"+fileID+"/content", map[string]any{"content": "x"}), service.StatusFileMissing)
}
