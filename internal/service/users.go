package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelshare/modelshare-server/internal/auth"
	"github.com/modelshare/modelshare-server/internal/domain"
	domainerrors "github.com/modelshare/modelshare-server/internal/errors"
	"github.com/modelshare/modelshare-server/internal/id"
	"github.com/modelshare/modelshare-server/internal/sse"
	"github.com/modelshare/modelshare-server/internal/store"
	"github.com/modelshare/modelshare-server/internal/validation"
)

// CreateUserInput carries the fields of a new account.
type CreateUserInput struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,max=72"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// UpdateUserInput changes the fields that are set.
type UpdateUserInput struct {
	Password *string `json:"password,omitempty" validate:"omitempty,min=1,max=72"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
}

// UserService manages user accounts.
type UserService struct {
	store     store.UserStore
	hasher    *auth.PasswordHasher
	validator *validation.Validator
	events    EventEmitter
	logger    *slog.Logger
}

// NewUserService creates a user service.
func NewUserService(s store.UserStore, hasher *auth.PasswordHasher, v *validation.Validator, events EventEmitter, logger *slog.Logger) *UserService {
	return &UserService{
		store:     s,
		hasher:    hasher,
		validator: v,
		events:    events,
		logger:    logger,
	}
}

// Create registers a new user with a bcrypt-hashed password.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*domain.User, Status, error) {
	in.Username = domain.NormalizeUsername(in.Username)
	if err := s.validator.Validate(in); err != nil {
		return nil, "", err
	}

	// Check the index first so the common case never hashes a password.
	if _, err := s.store.ResolveUserID(ctx, in.Username); err == nil {
		return nil, StatusUserExists, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, "", fmt.Errorf("check username: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, "", passwordError(err)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, "", err
	}

	u := &domain.User{
		Document:     domain.Document{ID: userID},
		Username:     in.Username,
		PasswordHash: hash,
		Email:        in.Email,
		ReadModels:   domain.IDSet{},
		WriteModels:  domain.IDSet{},
	}
	u.InitTimestamps()

	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, StatusUserExists, nil
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	s.events.Emit(sse.NewUserEvent(sse.EventUserCreated, u))
	s.logger.Info("user created", "user_id", u.ID, "username", u.Username)

	return u, StatusOK, nil
}

// Get returns the user with the given username.
func (s *UserService) Get(ctx context.Context, username string) (*domain.User, Status, error) {
	u, err := s.store.GetUserByUsername(ctx, domain.NormalizeUsername(username))
	if errors.Is(err, store.ErrNotFound) {
		return nil, StatusUserMissing, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("get user: %w", err)
	}
	return u, StatusOK, nil
}

// List returns users ordered by username.
func (s *UserService) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	users, err := s.store.ListUsers(ctx, store.Query[domain.User]{
		Less:   func(a, b *domain.User) bool { return a.Username < b.Username },
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Update changes the password and/or email of a user.
func (s *UserService) Update(ctx context.Context, username string, in UpdateUserInput) (*domain.User, Status, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, "", err
	}

	var updates []domain.UserUpdate
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, "", passwordError(err)
		}
		updates = append(updates, domain.SetPasswordHash{Hash: hash})
	}
	if in.Email != nil {
		updates = append(updates, domain.SetEmail{Email: *in.Email})
	}

	return s.update(ctx, username, updates...)
}

// SetEmail replaces a user's email address.
func (s *UserService) SetEmail(ctx context.Context, username, email string) (*domain.User, Status, error) {
	return s.Update(ctx, username, UpdateUserInput{Email: &email})
}

// SetPassword replaces a user's password.
func (s *UserService) SetPassword(ctx context.Context, username, password string) (*domain.User, Status, error) {
	return s.Update(ctx, username, UpdateUserInput{Password: &password})
}

func (s *UserService) update(ctx context.Context, username string, updates ...domain.UserUpdate) (*domain.User, Status, error) {
	userID, err := s.store.ResolveUserID(ctx, domain.NormalizeUsername(username))
	if errors.Is(err, store.ErrNotFound) {
		return nil, StatusUserMissing, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("resolve user: %w", err)
	}

	u, err := s.store.UpdateUser(ctx, userID, updates...)
	if errors.Is(err, store.ErrNotFound) {
		return nil, StatusUserMissing, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("update user: %w", err)
	}

	s.events.Emit(sse.NewUserEvent(sse.EventUserUpdated, u))
	return u, StatusOK, nil
}

// Delete removes a user. Model reader and writer sets are not purged;
// Repair drops the dangling ids.
func (s *UserService) Delete(ctx context.Context, username string) (Status, error) {
	userID, err := s.store.ResolveUserID(ctx, domain.NormalizeUsername(username))
	if errors.Is(err, store.ErrNotFound) {
		return StatusUserMissing, nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve user: %w", err)
	}

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return StatusUserMissing, nil
		}
		return "", fmt.Errorf("delete user: %w", err)
	}

	s.events.Emit(sse.NewUserDeletedEvent(userID))
	s.logger.Info("user deleted", "user_id", userID, "username", username)
	return StatusOK, nil
}

// Authenticate checks a username and password pair. Unknown users and wrong
// passwords produce the same error.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	u, err := s.store.GetUserByUsername(ctx, domain.NormalizeUsername(username))
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.InvalidCredentials("invalid username or password")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	ok, err := s.hasher.Verify(u.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, domainerrors.InvalidCredentials("invalid username or password")
	}
	return u, nil
}

func passwordError(err error) error {
	if errors.Is(err, auth.ErrPasswordLength) {
		return domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"password": err.Error(),
		})
	}
	return err
}
