package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/modelshare/modelshare-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Login",
		Description: "Checks a username and password and issues a PASETO access token. Rate limited per client.",
		Tags:        []string{"Auth"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "whoAmI",
		Method:      http.MethodGet,
		Path:        "/auth/whoami",
		Summary:     "Current user",
		Description: "Returns the user the bearer token was issued to",
		Tags:        []string{"Auth"},
	}, s.handleWhoAmI)
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username" doc:"Username"`
	Password string `json:"password" doc:"Password"`
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body LoginRequest
}

// LoginBody is the login response.
type LoginBody struct {
	StatusBody
	AccessToken string    `json:"accessToken" doc:"PASETO v4.local token"`
	TokenType   string    `json:"tokenType" doc:"Always Bearer"`
	ExpiresAt   time.Time `json:"expiresAt" doc:"Token expiry"`
	User        *UserView `json:"user"`
}

// LoginOutput wraps the login response for Huma.
type LoginOutput struct {
	Body LoginBody
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	result, err := s.services.Auth.Login(ctx, service.LoginInput{
		Username: input.Body.Username,
		Password: input.Body.Password,
	}, ClientIP(ctx))
	if err != nil {
		return nil, s.fail("login", err)
	}

	return &LoginOutput{
		Body: LoginBody{
			StatusBody:  StatusBody{Status: service.StatusOK},
			AccessToken: result.AccessToken,
			TokenType:   "Bearer",
			ExpiresAt:   result.ExpiresAt,
			User:        toUserView(result.User),
		},
	}, nil
}

func (s *Server) handleWhoAmI(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	user, err := CurrentUser(ctx)
	if err != nil {
		return nil, s.fail("whoAmI", err)
	}
	return &UserOutput{Body: UserBody{StatusBody: StatusBody{Status: service.StatusOK}, User: toUserView(user)}}, nil
}
