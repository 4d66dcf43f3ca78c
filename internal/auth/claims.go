package auth

import "time"

// AccessClaims is what an access token carries. v4.local tokens are
// encrypted, so none of it is visible to the client.
type AccessClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`

	Subject   string    `json:"sub"`
	TokenID   string    `json:"jti"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}
