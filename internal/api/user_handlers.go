package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/modelshare/modelshare-server/internal/domain"
	"github.com/modelshare/modelshare-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createUser",
		Method:      http.MethodPost,
		Path:        "/users",
		Summary:     "Create user",
		Description: "Registers a user. The password is stored as a bcrypt hash.",
		Tags:        []string{"Users"},
	}, s.handleCreateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        "/users",
		Summary:     "List users",
		Description: "Returns users sorted by username",
		Tags:        []string{"Users"},
	}, s.handleListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        "/user/{username}",
		Summary:     "Get user",
		Tags:        []string{"Users"},
	}, s.handleGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateUser",
		Method:      http.MethodPut,
		Path:        "/user/{username}",
		Summary:     "Update user",
		Description: "Changes the password and/or email of a user",
		Tags:        []string{"Users"},
	}, s.handleUpdateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteUser",
		Method:      http.MethodDelete,
		Path:        "/user/{username}",
		Summary:     "Delete user",
		Description: "Deletes a user. Model reader and writer sets keep the id until repaired.",
		Tags:        []string{"Users"},
	}, s.handleDeleteUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUserID",
		Method:      http.MethodGet,
		Path:        "/user/{username}/id",
		Summary:     "Resolve username",
		Tags:        []string{"Users"},
	}, s.handleGetUserID)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUserEmail",
		Method:      http.MethodGet,
		Path:        "/user/{username}/email",
		Summary:     "Get user email",
		Tags:        []string{"Users"},
	}, s.handleGetUserEmail)

	huma.Register(s.api, huma.Operation{
		OperationID: "setUserEmail",
		Method:      http.MethodPut,
		Path:        "/user/{username}/email",
		Summary:     "Set user email",
		Tags:        []string{"Users"},
	}, s.handleSetUserEmail)

	huma.Register(s.api, huma.Operation{
		OperationID: "setUserPassword",
		Method:      http.MethodPut,
		Path:        "/user/{username}/password",
		Summary:     "Set user password",
		Tags:        []string{"Users"},
	}, s.handleSetUserPassword)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUserModels",
		Method:      http.MethodGet,
		Path:        "/user/{username}/models",
		Summary:     "List models created by a user",
		Tags:        []string{"Users", "Models"},
	}, s.handleListUserModels)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUserComments",
		Method:      http.MethodGet,
		Path:        "/user/{username}/comments",
		Summary:     "List comments written by a user",
		Tags:        []string{"Users", "Comments"},
	}, s.handleListUserComments)
}

// === DTOs ===

// CreateUserRequest is the request body for creating a user.
type CreateUserRequest struct {
	Username string `json:"username" doc:"Unique username"`
	Password string `json:"password" doc:"Plain text password, at most 72 bytes"`
	Email    string `json:"email,omitempty" doc:"Email address"`
}

// CreateUserInput wraps the create user request for Huma.
type CreateUserInput struct {
	Body CreateUserRequest
}

// UserBody is a single user response.
type UserBody struct {
	StatusBody
	User *UserView `json:"user,omitempty"`
}

// UserOutput wraps a single user for Huma.
type UserOutput struct {
	Body UserBody
}

// ListUsersInput contains parameters for listing users.
type ListUsersInput struct {
	PageParams
}

// UsersBody is a list of users.
type UsersBody struct {
	StatusBody
	Users []*UserView `json:"users"`
}

// UsersOutput wraps a user list for Huma.
type UsersOutput struct {
	Body UsersBody
}

// UsernamePath addresses a user by name.
type UsernamePath struct {
	Username string `path:"username" doc:"Username"`
}

// UpdateUserRequest is the request body for updating a user.
type UpdateUserRequest struct {
	Password *string `json:"password,omitempty" doc:"New password"`
	Email    *string `json:"email,omitempty" doc:"New email address"`
}

// UpdateUserInput wraps the update user request for Huma.
type UpdateUserInput struct {
	UsernamePath
	Body UpdateUserRequest
}

// EmailRequest is the request body for setting an email.
type EmailRequest struct {
	Email string `json:"email" doc:"Email address"`
}

// SetEmailInput wraps the set email request for Huma.
type SetEmailInput struct {
	UsernamePath
	Body EmailRequest
}

// PasswordRequest is the request body for setting a password.
type PasswordRequest struct {
	Password string `json:"password" doc:"New password"`
}

// SetPasswordInput wraps the set password request for Huma.
type SetPasswordInput struct {
	UsernamePath
	Body PasswordRequest
}

// UserPageInput lists documents belonging to a user.
type UserPageInput struct {
	UsernamePath
	PageParams
}

// === Handlers ===

func (s *Server) handleCreateUser(ctx context.Context, input *CreateUserInput) (*UserOutput, error) {
	u, status, err := s.services.Users.Create(ctx, service.CreateUserInput{
		Username: input.Body.Username,
		Password: input.Body.Password,
		Email:    input.Body.Email,
	})
	if err != nil {
		return nil, s.fail("createUser", err)
	}
	return &UserOutput{Body: UserBody{StatusBody: StatusBody{Status: status}, User: toUserView(u)}}, nil
}

func (s *Server) handleListUsers(ctx context.Context, input *ListUsersInput) (*UsersOutput, error) {
	users, err := s.services.Users.List(ctx, input.Offset, input.Limit)
	if err != nil {
		return nil, s.fail("listUsers", err)
	}
	return &UsersOutput{Body: UsersBody{StatusBody: StatusBody{Status: service.StatusOK}, Users: toUserViews(users)}}, nil
}

func (s *Server) handleGetUser(ctx context.Context, input *UsernamePath) (*UserOutput, error) {
	u, status, err := s.services.Users.Get(ctx, input.Username)
	if err != nil {
		return nil, s.fail("getUser", err)
	}
	return &UserOutput{Body: UserBody{StatusBody: StatusBody{Status: status}, User: toUserView(u)}}, nil
}

func (s *Server) handleUpdateUser(ctx context.Context, input *UpdateUserInput) (*UserOutput, error) {
	u, status, err := s.services.Users.Update(ctx, input.Username, service.UpdateUserInput{
		Password: input.Body.Password,
		Email:    input.Body.Email,
	})
	if err != nil {
		return nil, s.fail("updateUser", err)
	}
	return &UserOutput{Body: UserBody{StatusBody: StatusBody{Status: status}, User: toUserView(u)}}, nil
}

func (s *Server) handleDeleteUser(ctx context.Context, input *UsernamePath) (*StatusOutput, error) {
	status, err := s.services.Users.Delete(ctx, input.Username)
	if err != nil {
		return nil, s.fail("deleteUser", err)
	}
	return statusOutput(status), nil
}

func (s *Server) handleGetUserID(ctx context.Context, input *UsernamePath) (*FieldOutput, error) {
	return s.userField(ctx, "getUserID", input.Username, "id", func(u *domain.User) any { return u.ID })
}

func (s *Server) handleGetUserEmail(ctx context.Context, input *UsernamePath) (*FieldOutput, error) {
	return s.userField(ctx, "getUserEmail", input.Username, "email", func(u *domain.User) any { return u.Email })
}

func (s *Server) userField(ctx context.Context, op, username, name string, get func(*domain.User) any) (*FieldOutput, error) {
	u, status, err := s.services.Users.Get(ctx, username)
	if err != nil {
		return nil, s.fail(op, err)
	}
	if !status.OK() {
		return fieldOutput(status, name, nil), nil
	}
	return fieldOutput(status, name, get(u)), nil
}

func (s *Server) handleSetUserEmail(ctx context.Context, input *SetEmailInput) (*UserOutput, error) {
	u, status, err := s.services.Users.SetEmail(ctx, input.Username, input.Body.Email)
	if err != nil {
		return nil, s.fail("setUserEmail", err)
	}
	return &UserOutput{Body: UserBody{StatusBody: StatusBody{Status: status}, User: toUserView(u)}}, nil
}

func (s *Server) handleSetUserPassword(ctx context.Context, input *SetPasswordInput) (*StatusOutput, error) {
	_, status, err := s.services.Users.SetPassword(ctx, input.Username, input.Body.Password)
	if err != nil {
		return nil, s.fail("setUserPassword", err)
	}
	return statusOutput(status), nil
}

func (s *Server) handleListUserModels(ctx context.Context, input *UserPageInput) (*ModelSummariesOutput, error) {
	if _, status, err := s.services.Users.Get(ctx, input.Username); err != nil || !status.OK() {
		if err != nil {
			return nil, s.fail("listUserModels", err)
		}
		return &ModelSummariesOutput{Body: ModelSummariesBody{StatusBody: StatusBody{Status: status}, Models: []ModelSummary{}}}, nil
	}

	models, err := s.services.Models.ListByCreator(ctx, input.Username, input.Offset, input.Limit)
	if err != nil {
		return nil, s.fail("listUserModels", err)
	}
	return &ModelSummariesOutput{Body: ModelSummariesBody{StatusBody: StatusBody{Status: service.StatusOK}, Models: toModelSummaries(models)}}, nil
}

func (s *Server) handleListUserComments(ctx context.Context, input *UserPageInput) (*CommentsOutput, error) {
	if _, status, err := s.services.Users.Get(ctx, input.Username); err != nil || !status.OK() {
		if err != nil {
			return nil, s.fail("listUserComments", err)
		}
		return &CommentsOutput{Body: CommentsBody{StatusBody: StatusBody{Status: status}, Comments: []*domain.Comment{}}}, nil
	}

	comments, err := s.services.Comments.ListByAuthor(ctx, input.Username, input.Offset, input.Limit)
	if err != nil {
		return nil, s.fail("listUserComments", err)
	}
	return &CommentsOutput{Body: CommentsBody{StatusBody: StatusBody{Status: service.StatusOK}, Comments: comments}}, nil
}
