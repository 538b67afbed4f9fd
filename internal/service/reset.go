package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/Abdul-Aziz026/school-auth/internal/config"
	"github.com/Abdul-Aziz026/school-auth/internal/logger"
	"github.com/Abdul-Aziz026/school-auth/internal/metrics"
	"github.com/Abdul-Aziz026/school-auth/internal/model"
	"github.com/Abdul-Aziz026/school-auth/internal/token"
)

// PasswordReset drives the forgot/reset handshake. The proof of
// possession is an opaque secret delivered by email; only its digest is
// stored, on the user row itself.
type PasswordReset struct {
	users  model.UserStore
	tokens *TokenService
	hasher model.PasswordHasher
	email  model.EmailDispatcher
	audit  model.AuditSink

	ttl      time.Duration
	linkBase string
	now      func() time.Time

	logger *logger.Logger
}

func NewPasswordReset(
	users model.UserStore,
	tokens *TokenService,
	hasher model.PasswordHasher,
	email model.EmailDispatcher,
	audit model.AuditSink,
	cfg config.Auth,
	logger *logger.Logger,
) *PasswordReset {
	return &PasswordReset{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		email:    email,
		audit:    audit,
		ttl:      cfg.ResetTokenTTL,
		linkBase: cfg.ResetLinkBase,
		now:      time.Now,
		logger:   logger,
	}
}

// RequestReset issues a time-boxed reset ticket and emails the raw
// token. Unknown emails return success with no observable difference.
func (p *PasswordReset) RequestReset(ctx context.Context, email string) error {
	email = model.NormalizeEmail(email)
	metrics.ResetRequests.Inc()

	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			p.logger.Debug("Reset service: reset requested for unknown email")
			return nil
		}
		// Deliberately swallowed: a store hiccup must not expose which
		// emails exist through a different status.
		p.logger.Error("Reset service: failed to get user by email",
			"error", err.Error())
		return nil
	}

	raw, digest, err := token.GenerateSecret()
	if err != nil {
		p.logger.Error("Reset service: failed to generate reset token",
			"user_id", user.ID,
			"error", err.Error())
		return nil
	}

	expiry := p.now().Add(p.ttl)
	user.ResetTokenHash = &digest
	user.ResetExpiry = &expiry
	if err := p.users.Update(ctx, user); err != nil {
		p.logger.Error("Reset service: failed to persist reset ticket",
			"user_id", user.ID,
			"error", err.Error())
		return nil
	}

	link := fmt.Sprintf("%s?token=%s&email=%s", p.linkBase, raw, url.QueryEscape(user.Email))
	body := "<p>Click the link below to reset your password. This link is valid for " +
		p.ttl.String() + ".</p><a href='" + link + "'>Reset Password</a>"
	if err := p.email.Send(ctx, user.Email, user.UserName, "Reset your password", body); err != nil {
		p.logger.Warn("Reset service: failed to send reset email",
			"user_id", user.ID,
			"error", err.Error())
	}

	p.audit.Record(ctx, model.AuditEvent{
		Kind:        model.AuditResetRequested,
		UserID:      user.ID,
		Description: "password reset requested",
	})
	return nil
}

// ConfirmReset consumes a reset ticket: the presented token is digested
// and compared against the stored digest, the password is rehashed, the
// ticket and lockout counters are cleared, and every standing session
// grant is dropped.
func (p *PasswordReset) ConfirmReset(ctx context.Context, email, presentedToken, newPassword string) error {
	email = model.NormalizeEmail(email)

	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrResetTokenInvalid
		}
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	if user.ResetTokenHash == nil || user.ResetExpiry == nil {
		return model.ErrResetTokenInvalid
	}
	if !token.DigestsEqual(token.Digest(presentedToken), *user.ResetTokenHash) {
		return model.ErrResetTokenInvalid
	}
	if p.now().After(*user.ResetExpiry) {
		return model.ErrResetTokenExpired
	}

	hash, err := p.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	user.ResetTokenHash = nil
	user.ResetExpiry = nil
	user.FailedLoginAttempts = 0
	user.LockoutEnd = nil
	user.LockoutEnabled = true

	if err := p.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to persist new password: %w", err)
	}

	// Force re-login on every device holding an old grant. The password
	// is already changed; a failure here is logged, not surfaced.
	if err := p.tokens.RevokeAllForUser(ctx, user.ID); err != nil {
		p.logger.Error("Reset service: failed to drop sessions after reset",
			"user_id", user.ID,
			"error", err.Error())
	}

	if err := p.email.Send(ctx, user.Email, user.UserName,
		"Your password was changed",
		"<p>Your password was changed. If this was not you, contact support immediately.</p>",
	); err != nil {
		p.logger.Warn("Reset service: failed to send confirmation email",
			"user_id", user.ID,
			"error", err.Error())
	}

	p.logger.Info("Reset service: password reset completed",
		"user_id", user.ID)
	p.audit.Record(ctx, model.AuditEvent{
		Kind:        model.AuditResetCompleted,
		UserID:      user.ID,
		Description: "password reset completed",
	})
	return nil
}
