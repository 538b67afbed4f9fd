package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenManager signs and verifies claims-bearing access tokens.
type TokenManager interface {
	Issue(user User, now time.Time) (token string, expiresAt time.Time, err error)
	Verify(token string) (AccessClaims, error)
}

// AccessClaims is the verified content of an access token. Access
// tokens are never persisted; these values exist only in memory.
type AccessClaims struct {
	UserID      uuid.UUID
	Email       string
	Name        string
	Roles       []string
	Permissions []string
	TokenID     string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}
