package api

import (
	"net/http"
	"testing"

	"github.com/modelshare/modelshare-server/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postComment creates a comment and returns the decoded comment member.
func (ts *testServer) postComment(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	resp := assertStatus(t, ts.api.Post("/comments", body), service.StatusOK)
	comment, ok := resp["comment"].(map[string]any)
	require.True(t, ok)
	return comment
}

func TestCommentHandlers_ReplySlugExtendsParent(t *testing.T) {
	ts := setupTestServer(t)
	modelID := ts.createModel(t, "Gear")

	root := ts.postComment(t, map[string]any{
		"modelId":    modelID,
		"author":     "bob",
		"text":       "Nice gear",
		"postedDate": "2024-03-01T12:00:00.123Z",
	})
	assert.Equal(t, "bob2024-03-01T12:00:00.123Z", root["slug"])
	assert.NotContains(t, root, "parentId")

	reply := ts.postComment(t, map[string]any{
		"modelId":    modelID,
		"author":     "alice",
		"text":       "Thanks",
		"postedDate": "2024-03-01T12:05:00Z",
		"parentId":   root["id"],
	})
	assert.Equal(t, "bob2024-03-01T12:00:00.123Z/alice2024-03-01T12:05:00.000Z", reply["slug"])
	assert.Equal(t, root["id"], reply["parentId"])
}

func TestCommentHandlers_FieldsFromQuery(t *testing.T) {
	ts := setupTestServer(t)
	modelID := ts.createModel(t, "Gear")

	// 2024-03-01T12:00:00Z as epoch milliseconds
	resp := assertStatus(t, ts.api.Post("/comments?modelId="+modelID+"&author=bob&text=hello&postedDate=1709294400000"), service.StatusOK)
	comment := resp["comment"].(map[string]any)
	assert.Equal(t, "bob2024-03-01T12:00:00.000Z", comment["slug"])
	assert.Equal(t, "hello", comment["text"])
}

func TestCommentHandlers_MissingParent(t *testing.T) {
	ts := setupTestServer(t)
	modelID := ts.createModel(t, "Gear")

	assertStatus(t, ts.api.Post("/comments", map[string]any{
		"modelId":  modelID,
		"author":   "alice",
		"text":     "orphan",
		"parentId": "cmt-missing",
	}), service.StatusParentMissing)

	body := assertStatus(t, ts.api.Get("/comments"), service.StatusOK)
	assert.Empty(t, body["comments"])
}

func TestCommentHandlers_RequiresModelAndAuthor(t *testing.T) {
	ts := setupTestServer(t)

	errBody := assertErrorCode(t, ts.api.Post("/comments", map[string]any{"text": "hi"}), http.StatusBadRequest, 0)
	assert.Equal(t, map[string]any{"modelId": "is required", "author": "is required"}, errBody["details"])
}

func TestCommentHandlers_RejectsAuthorWithSlugSeparator(t *testing.T) {
	ts := setupTestServer(t)
	modelID := ts.createModel(t, "Gear")

	root := ts.postComment(t, map[string]any{"modelId": modelID, "author": "bob", "text": "root", "postedDate": "2024-03-01T12:00:00Z"})

	errBody := assertErrorCode(t, ts.api.Post("/comments", map[string]any{
		"modelId":    modelID,
		"author":     root["slug"].(string) + "/eve",
		"text":       "not a reply",
		"postedDate": "2024-03-01T12:00:00Z",
	}), http.StatusBadRequest, 0)
	assert.Contains(t, errBody["details"], "author")

	body := assertStatus(t, ts.api.Get("/comment/"+root["id"].(string)+"/thread"), service.StatusOK)
	assert.Len(t, body["comments"], 1)
}

func TestCommentHandlers_ThreadAndFields(t *testing.T) {
	ts := setupTestServer(t)
	modelID := ts.createModel(t, "Gear")

	root := ts.postComment(t, map[string]any{"modelId": modelID, "author": "bob", "text": "root", "postedDate": "2024-03-01T12:00:00Z"})
	reply := ts.postComment(t, map[string]any{"modelId": modelID, "author": "alice", "text": "reply", "postedDate": "2024-03-01T12:01:00Z", "parentId": root["id"]})
	ts.postComment(t, map[string]any{"modelId": modelID, "author": "carol", "text": "other", "postedDate": "2024-03-01T11:00:00Z"})

	body := assertStatus(t, ts.api.Get("/comment/"+root["id"].(string)+"/thread"), service.StatusOK)
	thread := body["comments"].([]any)
	require.Len(t, thread, 2)
	assert.Equal(t, root["id"], thread[0].(map[string]any)["id"])
	assert.Equal(t, reply["id"], thread[1].(map[string]any)["id"])

	body = assertStatus(t, ts.api.Get("/comment/"+reply["id"].(string)+"/slug"), service.StatusOK)
	assert.Equal(t, reply["slug"], body["slug"])

	body = assertStatus(t, ts.api.Get("/comment/"+reply["id"].(string)+"/parentId"), service.StatusOK)
	assert.Equal(t, root["id"], body["parentId"])

	// Model listing keeps replies under their parent.
	body = assertStatus(t, ts.api.Get("/model/"+modelID+"/comments"), service.StatusOK)
	listed := body["comments"].([]any)
	require.Len(t, listed, 3)
	assert.Equal(t, "root", listed[0].(map[string]any)["text"])
	assert.Equal(t, "reply", listed[1].(map[string]any)["text"])
	assert.Equal(t, "other", listed[2].(map[string]any)["text"])
}

func TestCommentHandlers_SetTextAndDelete(t *testing.T) {
	ts := setupTestServer(t)
	modelID := ts.createModel(t, "Gear")
	c := ts.postComment(t, map[string]any{"modelId": modelID, "author": "bob", "text": "first"})
	id := c["id"].(string)

	body := assertStatus(t, ts.api.Put("/comment/"+id+"/text", map[string]any{"text": "<p>Looks <b>great</b></p>"}), service.StatusOK)
	updated := body["comment"].(map[string]any)
	assert.Equal(t, "<p>Looks <b>great</b></p>", updated["text"])
	assert.Equal(t, "Looks **great**", updated["markdown"])

	body = assertStatus(t, ts.api.Get("/comment/"+id+"/text"), service.StatusOK)
	assert.Equal(t, "<p>Looks <b>great</b></p>", body["text"])

	assertStatus(t, ts.api.Delete("/comment/"+id), service.StatusOK)
	assertStatus(t, ts.api.Delete("/comment/"+id), service.StatusCommentMissing)

	body = assertStatus(t, ts.api.Get("/comment/"+id+"/author"), service.StatusCommentMissing)
	assert.NotContains(t, body, "author")
}

func TestCommentHandlers_ListsByAuthor(t *testing.T) {
	ts := setupTestServer(t)
	ts.createUser(t, "bob")
	modelID := ts.createModel(t, "Gear")
	ts.postComment(t, map[string]any{"modelId": modelID, "author": "bob", "text": "one"})
	ts.postComment(t, map[string]any{"modelId": modelID, "author": "carol", "text": "two"})

	body := assertStatus(t, ts.api.Get("/user/bob/comments"), service.StatusOK)
	comments := body["comments"].([]any)
	require.Len(t, comments, 1)
	assert.Equal(t, "one", comments[0].(map[string]any)["text"])

	assertStatus(t, ts.api.Get("/user/nobody/comments"), service.StatusUserMissing)
}
