package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelshare/modelshare-server/internal/auth"
	"github.com/modelshare/modelshare-server/internal/domain"
	domainerrors "github.com/modelshare/modelshare-server/internal/errors"
	"github.com/modelshare/modelshare-server/internal/ratelimit"
	"github.com/modelshare/modelshare-server/internal/store"
	"github.com/modelshare/modelshare-server/internal/validation"
)

// LoginInput carries login credentials.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is a successful login.
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *domain.User
}

// AuthService issues and verifies access tokens against stored passwords.
type AuthService struct {
	users        *UserService
	store        store.UserStore
	tokenService *auth.TokenService
	limiter      *ratelimit.KeyedRateLimiter // nil disables login throttling
	validator    *validation.Validator
	logger       *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users *UserService,
	s store.UserStore,
	tokenService *auth.TokenService,
	limiter *ratelimit.KeyedRateLimiter,
	v *validation.Validator,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:        users,
		store:        s,
		tokenService: tokenService,
		limiter:      limiter,
		validator:    v,
		logger:       logger,
	}
}

// Login authenticates a user and returns an access token.
// clientIP keys the login rate limit.
func (s *AuthService) Login(ctx context.Context, in LoginInput, clientIP string) (*LoginResult, error) {
	// 1. Throttle per client before touching bcrypt.
	if s.limiter != nil && !s.limiter.Allow(clientIP) {
		s.logger.Warn("login rate limited", "client_ip", clientIP)
		return nil, domainerrors.RateLimited("too many login attempts, try again later")
	}

	// 2. Validate request
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	// 3. Check credentials. Same error for unknown user and wrong password.
	user, err := s.users.Authenticate(ctx, in.Username, in.Password)
	if err != nil {
		if errors.Is(err, domainerrors.ErrInvalidCredentials) {
			s.logger.Info("login failed", "username", in.Username, "client_ip", clientIP)
		}
		return nil, err
	}

	// 4. Issue token
	token, expiresAt, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	s.logger.Info("user logged in",
		"user_id", user.ID,
		"username", user.Username,
	)

	return &LoginResult{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}

// WhoAmI verifies an access token and returns the user it was issued to.
func (s *AuthService) WhoAmI(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domainerrors.Unauthorized("missing access token")
	}

	claims, err := s.tokenService.VerifyAccessToken(token)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid access token").WithCause(err)
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.Unauthorized("user no longer exists")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
