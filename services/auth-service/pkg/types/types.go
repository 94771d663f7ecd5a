// Package types holds the session token and session projection types shared
// between the auth service and its consumers.
package types

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionUser is the reduced user projection carried inside session tokens
// and returned by the session endpoint.
type SessionUser struct {
	UUID      string `json:"uuid"`
	Email     string `json:"email"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url"`
	CreatedAt string `json:"created_at"`
}

// SessionClaims is the session token payload. User is attached once per
// sign-in by the JWT hook; token refreshes leave it untouched.
type SessionClaims struct {
	User *SessionUser `json:"user,omitempty"`
	jwt.RegisteredClaims
}

// Session is the object handed back to callers of the session endpoint.
type Session struct {
	User    *SessionUser `json:"user,omitempty"`
	Expires time.Time    `json:"expires"`
}
