package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already in use")

	// ErrInvalidCredentials covers both unknown email and wrong
	// password so a caller cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is deactivated")
	ErrAccountLocked      = errors.New("account locked")

	ErrTokenInvalid = errors.New("refresh token invalid")
	ErrTokenRevoked = errors.New("refresh token revoked")
	ErrTokenExpired = errors.New("refresh token expired")

	// ErrUserIntegrity marks a refresh token whose owner row is gone.
	// This is a data fault, not a user error; callers still present it
	// as a plain auth failure.
	ErrUserIntegrity = errors.New("refresh token owner missing")

	ErrResetTokenInvalid = errors.New("reset token invalid")
	ErrResetTokenExpired = errors.New("reset token expired")
)

// LockoutError reports a locked account together with the time left in
// the lockout window. It matches ErrAccountLocked under errors.Is.
type LockoutError struct {
	Remaining time.Duration
}

func (e *LockoutError) Error() string {
	return fmt.Sprintf("account locked, try again in %s", e.Remaining.Round(time.Second))
}

func (e *LockoutError) Is(target error) bool {
	return target == ErrAccountLocked
}
