package model

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, user User) error
}

// User represents a stored user with credential, lockout and
// password-reset material. Accounts are deactivated, never deleted.
type User struct {
	ID           uuid.UUID
	Email        string
	UserName     string
	PasswordHash string
	Roles        []string
	Permissions  []string
	IsActive     bool

	// Lockout counters. LockoutEnabled is false while a lockout window
	// set in LockoutEnd is pending, mirroring how the account state is
	// persisted.
	FailedLoginAttempts int
	LockoutEnd          *time.Time
	LockoutEnabled      bool

	// Password-reset ticket. Either both fields are set or both are nil.
	ResetTokenHash *string
	ResetExpiry    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeEmail returns the canonical lookup form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
