package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RefreshTokenStore persists session grants. UpdateRevoked is a
// single-row conditional update: it only applies when the stored
// revoked flag still equals expectedRevoked, and reports whether the
// row changed. That compare-and-set is what makes concurrent rotation
// of the same secret safe.
type RefreshTokenStore interface {
	Create(ctx context.Context, token RefreshToken) error
	GetByDigest(ctx context.Context, digest string) (RefreshToken, error)
	UpdateRevoked(ctx context.Context, id uuid.UUID, expectedRevoked bool) (bool, error)
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// RefreshToken is the stored form of a session grant. TokenHash holds
// the digest of the opaque secret; the secret itself is never persisted.
// Once IsRevoked is true it never returns to false.
type RefreshToken struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	TokenHash   string
	ExpiresAt   time.Time
	IsRevoked   bool
	CreatedByIP string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TokenPair is handed to the caller on successful authentication. The
// refresh secret appears here in plaintext for the only time in its life.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}
