package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/modelshare/modelshare-server/internal/domain"
	domainerrors "github.com/modelshare/modelshare-server/internal/errors"
	"github.com/modelshare/modelshare-server/internal/service"
)

func (s *Server) registerCommentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createComment",
		Method:      http.MethodPost,
		Path:        "/comments",
		Summary:     "Create comment",
		Description: "Posts a comment on a model, or a reply when parentId is set. Fields come from the body, else the query string.",
		Tags:        []string{"Comments"},
	}, s.handleCreateComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "listComments",
		Method:      http.MethodGet,
		Path:        "/comments",
		Summary:     "List comments",
		Description: "Returns comments sorted by posting date",
		Tags:        []string{"Comments"},
	}, s.handleListComments)

	huma.Register(s.api, huma.Operation{
		OperationID: "getComment",
		Method:      http.MethodGet,
		Path:        "/comment/{commentId}",
		Summary:     "Get comment",
		Tags:        []string{"Comments"},
	}, s.handleGetComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteComment",
		Method:      http.MethodDelete,
		Path:        "/comment/{commentId}",
		Summary:     "Delete comment",
		Description: "Deletes a single comment. Replies are kept.",
		Tags:        []string{"Comments"},
	}, s.handleDeleteComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCommentThread",
		Method:      http.MethodGet,
		Path:        "/comment/{commentId}/thread",
		Summary:     "Get comment thread",
		Description: "Returns the comment followed by every reply below it, in thread order",
		Tags:        []string{"Comments"},
	}, s.handleGetThread)

	huma.Register(s.api, huma.Operation{
		OperationID: "setCommentText",
		Method:      http.MethodPut,
		Path:        "/comment/{commentId}/text",
		Summary:     "Set comment text",
		Tags:        []string{"Comments"},
	}, s.handleSetCommentText)

	fields := []struct {
		key string
		get func(*domain.Comment) any
	}{
		{"modelId", func(c *domain.Comment) any { return c.ModelID }},
		{"author", func(c *domain.Comment) any { return c.Author }},
		{"text", func(c *domain.Comment) any { return c.Text }},
		{"slug", func(c *domain.Comment) any { return c.Slug }},
		{"postedDate", func(c *domain.Comment) any { return c.PostedDate }},
		{"parentId", func(c *domain.Comment) any { return c.ParentID }},
	}
	for _, f := range fields {
		huma.Register(s.api, huma.Operation{
			OperationID: "getCommentField-" + f.key,
			Method:      http.MethodGet,
			Path:        "/comment/{commentId}/" + f.key,
			Summary:     "Get comment " + f.key,
			Tags:        []string{"Comments"},
		}, func(ctx context.Context, input *CommentIDPath) (*FieldOutput, error) {
			c, status, err := s.services.Comments.Get(ctx, input.CommentID)
			if err != nil {
				return nil, s.fail("getCommentField", err)
			}
			if !status.OK() {
				return fieldOutput(status, f.key, nil), nil
			}
			return fieldOutput(status, f.key, f.get(c)), nil
		})
	}
}

// === DTOs ===

// CommentIDPath addresses a comment by id.
type CommentIDPath struct {
	CommentID string `path:"commentId" doc:"Comment ID"`
}

// CreateCommentRequest is the request body for posting a comment.
type CreateCommentRequest struct {
	ModelID    string   `json:"modelId,omitempty" doc:"Model the comment is about"`
	Author     string   `json:"author,omitempty" doc:"Username of the author"`
	Text       string   `json:"text,omitempty" doc:"Comment text, stored as sent. HTML text also gets a Markdown rendering in markdown."`
	PostedDate FlexTime `json:"postedDate,omitempty" doc:"Defaults to now"`
	ParentID   string   `json:"parentId,omitempty" doc:"Comment this one replies to"`
}

// CreateCommentInput wraps the create comment request for Huma.
type CreateCommentInput struct {
	ModelID    string                `query:"modelId"`
	Author     string                `query:"author"`
	Text       string                `query:"text"`
	PostedDate string                `query:"postedDate" doc:"RFC 3339 timestamp or epoch milliseconds"`
	ParentID   string                `query:"parentId"`
	Body       *CreateCommentRequest `required:"false"`
}

// CommentBody is a single comment response.
type CommentBody struct {
	StatusBody
	Comment *domain.Comment `json:"comment,omitempty"`
}

// CommentOutput wraps a single comment for Huma.
type CommentOutput struct {
	Body CommentBody
}

// ListCommentsInput contains parameters for listing comments.
type ListCommentsInput struct {
	PageParams
}

// CommentsBody is a list of comments.
type CommentsBody struct {
	StatusBody
	Comments []*domain.Comment `json:"comments"`
}

// CommentsOutput wraps a comment list for Huma.
type CommentsOutput struct {
	Body CommentsBody
}

// TextRequest is the request body for replacing comment text.
type TextRequest struct {
	Text string `json:"text" doc:"New text"`
}

// SetCommentTextInput wraps the set text request for Huma.
type SetCommentTextInput struct {
	CommentIDPath
	Body TextRequest
}

// === Handlers ===

func (s *Server) handleCreateComment(ctx context.Context, input *CreateCommentInput) (*CommentOutput, error) {
	body := input.Body
	if body == nil {
		body = &CreateCommentRequest{}
	}

	in := service.CreateCommentInput{
		ModelID:  pick(body.ModelID, input.ModelID),
		Author:   domain.NormalizeUsername(pick(body.Author, input.Author)),
		Text:     pick(body.Text, input.Text),
		ParentID: pick(body.ParentID, input.ParentID),
	}

	switch {
	case !body.PostedDate.IsZero():
		in.PostedDate = body.PostedDate.Time
	case input.PostedDate != "":
		posted, err := ParseFlexTime(input.PostedDate)
		if err != nil {
			return nil, s.fail("createComment", domainerrors.ValidationWithDetails("validation failed",
				map[string]string{"postedDate": "must be an RFC 3339 timestamp or epoch milliseconds"}))
		}
		in.PostedDate = posted.Time
	}

	missing := map[string]string{}
	if in.ModelID == "" {
		missing["modelId"] = "is required"
	}
	if in.Author == "" {
		missing["author"] = "is required"
	}
	if len(missing) > 0 {
		return nil, s.fail("createComment", domainerrors.ValidationWithDetails("validation failed", missing))
	}

	c, status, err := s.services.Comments.Create(ctx, in)
	if err != nil {
		return nil, s.fail("createComment", err)
	}
	return &CommentOutput{Body: CommentBody{StatusBody: StatusBody{Status: status}, Comment: c}}, nil
}

func (s *Server) handleListComments(ctx context.Context, input *ListCommentsInput) (*CommentsOutput, error) {
	comments, err := s.services.Comments.List(ctx, input.Offset, input.Limit)
	if err != nil {
		return nil, s.fail("listComments", err)
	}
	return &CommentsOutput{Body: CommentsBody{StatusBody: StatusBody{Status: service.StatusOK}, Comments: comments}}, nil
}

func (s *Server) handleGetComment(ctx context.Context, input *CommentIDPath) (*CommentOutput, error) {
	c, status, err := s.services.Comments.Get(ctx, input.CommentID)
	if err != nil {
		return nil, s.fail("getComment", err)
	}
	return &CommentOutput{Body: CommentBody{StatusBody: StatusBody{Status: status}, Comment: c}}, nil
}

func (s *Server) handleDeleteComment(ctx context.Context, input *CommentIDPath) (*StatusOutput, error) {
	status, err := s.services.Comments.Delete(ctx, input.CommentID)
	if err != nil {
		return nil, s.fail("deleteComment", err)
	}
	return statusOutput(status), nil
}

func (s *Server) handleGetThread(ctx context.Context, input *CommentIDPath) (*CommentsOutput, error) {
	thread, status, err := s.services.Comments.Thread(ctx, input.CommentID)
	if err != nil {
		return nil, s.fail("getCommentThread", err)
	}
	if thread == nil {
		thread = []*domain.Comment{}
	}
	return &CommentsOutput{Body: CommentsBody{StatusBody: StatusBody{Status: status}, Comments: thread}}, nil
}

func (s *Server) handleSetCommentText(ctx context.Context, input *SetCommentTextInput) (*CommentOutput, error) {
	c, status, err := s.services.Comments.SetText(ctx, input.CommentID, input.Body.Text)
	if err != nil {
		return nil, s.fail("setCommentText", err)
	}
	return &CommentOutput{Body: CommentBody{StatusBody: StatusBody{Status: status}, Comment: c}}, nil
}
