package validation_test

import (
	"testing"

	domainerrors "github.com/modelshare/modelshare-server/internal/errors"
	"github.com/modelshare/modelshare-server/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createUserRequest struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
	Email    string `json:"email" validate:"omitempty,email"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	err := v.Validate(createUserRequest{Username: "alice", Password: "password123", Email: "alice@example.com"})
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       createUserRequest
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing username",
			req:       createUserRequest{Password: "password123"},
			wantField: "username",
			wantMsg:   "is required",
		},
		{
			name:      "username with slug separator",
			req:       createUserRequest{Username: "al/ice", Password: "password123"},
			wantField: "username",
			wantMsg:   "must be 1-64 letters, digits or . _ @ + -",
		},
		{
			name:      "short password",
			req:       createUserRequest{Username: "alice", Password: "short"},
			wantField: "password",
			wantMsg:   "must be at least 8 characters",
		},
		{
			name:      "invalid email",
			req:       createUserRequest{Username: "alice", Password: "password123", Email: "nope"},
			wantField: "email",
			wantMsg:   "must be a valid email address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
		})
	}
}

func TestValidator_Username(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Username("bob.smith"))
	assert.Error(t, v.Username(""))
	assert.Error(t, v.Username("bob~1"))
	assert.Error(t, v.Username("bob smith"))
}

func TestValidator_UsernameField(t *testing.T) {
	v := validation.New()

	require.NoError(t, v.UsernameField("author", "alice"))

	err := v.UsernameField("author", "bob2024-03-01T12:00:00.000Z/eve")
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
	assert.Contains(t, domainErr.Details, "author")
}
