package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Abdul-Aziz026/school-auth/internal/lockout"
	"github.com/Abdul-Aziz026/school-auth/internal/logger"
	"github.com/Abdul-Aziz026/school-auth/internal/metrics"
	"github.com/Abdul-Aziz026/school-auth/internal/model"
)

// Defaults stamped on accounts created through Register.
var (
	defaultRoles       = []string{"User"}
	defaultPermissions = []string{"ViewProduct"}
)

// Auth verifies credentials and registers accounts. Login failures for
// unknown emails and wrong passwords are indistinguishable to the
// caller; only the lockout state produces a different answer.
type Auth struct {
	users   model.UserStore
	hasher  model.PasswordHasher
	tokens  *TokenService
	lockout lockout.Policy
	limiter model.LoginLimiter
	email   model.EmailDispatcher
	audit   model.AuditSink

	// fallbackHash is compared against when the email is unknown, so
	// that path pays for a bcrypt comparison like any wrong password.
	fallbackHash string

	logger *logger.Logger
}

// NewAuth creates the credential verifier. limiter may be nil, which
// disables pre-lockout throttling.
func NewAuth(
	users model.UserStore,
	hasher model.PasswordHasher,
	tokens *TokenService,
	policy lockout.Policy,
	limiter model.LoginLimiter,
	email model.EmailDispatcher,
	audit model.AuditSink,
	logger *logger.Logger,
) *Auth {
	fallbackHash, err := hasher.Hash(uuid.NewString())
	if err != nil {
		logger.Error("Auth service: failed to precompute fallback hash",
			"error", err.Error())
	}
	return &Auth{
		users:        users,
		hasher:       hasher,
		tokens:       tokens,
		lockout:      policy,
		limiter:      limiter,
		email:        email,
		audit:        audit,
		fallbackHash: fallbackHash,
		logger:       logger,
	}
}

// RegisterInput holds the parameters for creating an account.
type RegisterInput struct {
	UserName string
	Email    string
	Password string
	ClientIP string
}

// Register creates a user with the default role set and issues the
// initial token pair.
func (a *Auth) Register(ctx context.Context, input RegisterInput) (model.User, model.TokenPair, error) {
	email := model.NormalizeEmail(input.Email)

	_, err := a.users.GetByEmail(ctx, email)
	if err == nil {
		return model.User{}, model.TokenPair{}, model.ErrEmailTaken
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.User{}, model.TokenPair{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	hash, err := a.hasher.Hash(input.Password)
	if err != nil {
		return model.User{}, model.TokenPair{}, err
	}

	now := time.Now()
	user := model.User{
		ID:             uuid.New(),
		Email:          email,
		UserName:       input.UserName,
		PasswordHash:   hash,
		Roles:          defaultRoles,
		Permissions:    defaultPermissions,
		IsActive:       true,
		LockoutEnabled: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	user, err = a.users.Create(ctx, user)
	if err != nil {
		return model.User{}, model.TokenPair{}, fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.Info("Auth service: user registered",
		"user_id", user.ID,
		"email", user.Email)
	a.audit.Record(ctx, model.AuditEvent{
		Kind:        model.AuditUserRegistered,
		UserID:      user.ID,
		Description: "account created",
		Metadata:    map[string]string{"client_ip": input.ClientIP},
	})

	if err := a.email.Send(ctx, user.Email, user.UserName,
		"Welcome to My School",
		"<h1>Welcome to Our Service!</h1><p>Thank you for registering, "+user.UserName+".</p>",
	); err != nil {
		a.logger.Warn("Auth service: failed to send welcome email",
			"user_id", user.ID,
			"error", err.Error())
	}

	pair, err := a.tokens.Issue(ctx, user, input.ClientIP)
	if err != nil {
		return model.User{}, model.TokenPair{}, err
	}

	return user, pair, nil
}

// Login verifies email and password and returns a token pair. Counter
// updates are persisted on both the failure and the success path.
func (a *Auth) Login(ctx context.Context, email, pass, clientIP string) (model.TokenPair, error) {
	email = model.NormalizeEmail(email)

	if !a.throttleAllows(ctx, email) {
		metrics.LoginAttempts.WithLabelValues("locked").Inc()
		return model.TokenPair{}, model.ErrAccountLocked
	}

	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// Burn a comparison so an unknown email takes as long as a
			// wrong password.
			a.hasher.Verify(pass, a.fallbackHash)
			a.recordThrottleFailure(ctx, email)
			metrics.LoginAttempts.WithLabelValues("invalid_credentials").Inc()
			return model.TokenPair{}, model.ErrInvalidCredentials
		}
		return model.TokenPair{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	now := time.Now()
	if locked, remaining := a.lockout.Status(user, now); locked {
		metrics.LoginAttempts.WithLabelValues("locked").Inc()
		return model.TokenPair{}, &model.LockoutError{Remaining: remaining}
	}

	if !a.hasher.Verify(pass, user.PasswordHash) {
		return model.TokenPair{}, a.failLogin(ctx, user, email, clientIP, now)
	}

	if !user.IsActive {
		return model.TokenPair{}, model.ErrAccountDisabled
	}

	// Successful check clears the counters; persist only when there is
	// something to clear.
	if user.FailedLoginAttempts > 0 || user.LockoutEnd != nil {
		a.lockout.RegisterSuccess(&user)
		if err := a.users.Update(ctx, user); err != nil {
			return model.TokenPair{}, fmt.Errorf("failed to reset lockout counters: %w", err)
		}
	}
	a.resetThrottle(ctx, email)

	pair, err := a.tokens.Issue(ctx, user, clientIP)
	if err != nil {
		return model.TokenPair{}, err
	}

	a.logger.Info("Auth service: login succeeded",
		"user_id", user.ID)
	a.audit.Record(ctx, model.AuditEvent{
		Kind:        model.AuditLoginSucceeded,
		UserID:      user.ID,
		Description: "login succeeded",
		Metadata:    map[string]string{"client_ip": clientIP},
	})
	metrics.LoginAttempts.WithLabelValues("success").Inc()

	return pair, nil
}

// GetUserInfo returns the profile behind an authenticated id.
func (a *Auth) GetUserInfo(ctx context.Context, id uuid.UUID) (model.User, error) {
	user, err := a.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// failLogin applies the lockout failure branch and persists the
// counters. The overall operation still fails with the generic
// invalid-credentials answer.
func (a *Auth) failLogin(ctx context.Context, user model.User, email, clientIP string, now time.Time) error {
	lockedNow := a.lockout.RegisterFailure(&user, now)
	if err := a.users.Update(ctx, user); err != nil {
		// The attempt is still rejected; an unsaved counter only means
		// the attacker gets one extra try.
		a.logger.Error("Auth service: failed to persist lockout counters",
			"user_id", user.ID,
			"error", err.Error())
	}
	a.recordThrottleFailure(ctx, email)

	a.audit.Record(ctx, model.AuditEvent{
		Kind:        model.AuditLoginFailed,
		UserID:      user.ID,
		Description: "wrong password",
		Metadata:    map[string]string{"client_ip": clientIP},
	})
	metrics.LoginAttempts.WithLabelValues("invalid_credentials").Inc()

	if lockedNow {
		a.logger.Warn("Auth service: account locked",
			"user_id", user.ID,
			"failed_attempts", user.FailedLoginAttempts)
		a.audit.Record(ctx, model.AuditEvent{
			Kind:        model.AuditAccountLocked,
			UserID:      user.ID,
			Description: "account locked after repeated failures",
			Metadata:    map[string]string{"client_ip": clientIP},
		})
		metrics.Lockouts.Inc()
	}

	return model.ErrInvalidCredentials
}

func (a *Auth) throttleAllows(ctx context.Context, key string) bool {
	if a.limiter == nil {
		return true
	}
	allowed, err := a.limiter.Allowed(ctx, key)
	if err != nil {
		// A broken limiter must not take logins down with it.
		a.logger.Warn("Auth service: login limiter unavailable",
			"error", err.Error())
		return true
	}
	return allowed
}

func (a *Auth) recordThrottleFailure(ctx context.Context, key string) {
	if a.limiter == nil {
		return
	}
	if err := a.limiter.RecordFailure(ctx, key); err != nil {
		a.logger.Warn("Auth service: failed to record login attempt",
			"error", err.Error())
	}
}

func (a *Auth) resetThrottle(ctx context.Context, key string) {
	if a.limiter == nil {
		return
	}
	if err := a.limiter.Reset(ctx, key); err != nil {
		a.logger.Warn("Auth service: failed to reset login attempts",
			"error", err.Error())
	}
}
