package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Abdul-Aziz026/school-auth/internal/config"
	"github.com/Abdul-Aziz026/school-auth/internal/logger"
	"github.com/Abdul-Aziz026/school-auth/internal/metrics"
	"github.com/Abdul-Aziz026/school-auth/internal/model"
	"github.com/Abdul-Aziz026/school-auth/internal/token"
)

// TokenService issues, rotates and revokes session grants. It composes
// the TokenManager (signed access tokens) with the RefreshTokenStore
// (opaque refresh secrets, persisted as digests only).
type TokenService struct {
	users   model.UserStore
	store   model.RefreshTokenStore
	manager model.TokenManager
	audit   model.AuditSink

	refreshTTL time.Duration
	// singleSession revokes every prior grant of the user at issuance,
	// limiting the account to one live session across devices.
	singleSession bool

	logger *logger.Logger
}

func NewTokenService(
	users model.UserStore,
	store model.RefreshTokenStore,
	manager model.TokenManager,
	audit model.AuditSink,
	cfg config.Auth,
	logger *logger.Logger,
) *TokenService {
	return &TokenService{
		users:         users,
		store:         store,
		manager:       manager,
		audit:         audit,
		refreshTTL:    cfg.RefreshTTL,
		singleSession: cfg.SingleSession,
		logger:        logger,
	}
}

// Issue mints an access/refresh pair for an authenticated user and
// persists the refresh digest. The plaintext refresh secret exists only
// in the returned pair.
func (s *TokenService) Issue(ctx context.Context, user model.User, clientIP string) (model.TokenPair, error) {
	now := time.Now()

	access, accessExpiry, err := s.manager.Issue(user, now)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to issue access token: %w", err)
	}

	secret, digest, err := token.GenerateSecret()
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to generate refresh secret: %w", err)
	}

	if s.singleSession {
		if _, err := s.store.DeleteAllForUser(ctx, user.ID); err != nil {
			return model.TokenPair{}, fmt.Errorf("failed to drop prior sessions: %w", err)
		}
	}

	refreshExpiry := now.Add(s.refreshTTL)
	rt := model.RefreshToken{
		ID:          uuid.New(),
		UserID:      user.ID,
		TokenHash:   digest,
		ExpiresAt:   refreshExpiry,
		IsRevoked:   false,
		CreatedByIP: clientIP,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, rt); err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return model.TokenPair{
		AccessToken:      access,
		RefreshToken:     secret,
		AccessExpiresAt:  accessExpiry,
		RefreshExpiresAt: refreshExpiry,
	}, nil
}

// Rotate exchanges a presented refresh secret for a fresh pair. The
// presented grant is revoked through a conditional update before the
// replacement is issued, so concurrent calls with the same secret
// cannot both succeed.
func (s *TokenService) Rotate(ctx context.Context, presentedSecret, clientIP string) (model.TokenPair, error) {
	digest := token.Digest(presentedSecret)

	rt, err := s.store.GetByDigest(ctx, digest)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			metrics.TokenRotations.WithLabelValues("invalid").Inc()
			return model.TokenPair{}, model.ErrTokenInvalid
		}
		return model.TokenPair{}, fmt.Errorf("failed to get refresh token: %w", err)
	}

	now := time.Now()
	if rt.IsRevoked {
		s.logger.Warn("Token service: revoked refresh token presented",
			"user_id", rt.UserID,
			"client_ip", clientIP)
		s.audit.Record(ctx, model.AuditEvent{
			Kind:        model.AuditTokenReuse,
			UserID:      rt.UserID,
			Description: "revoked refresh token presented",
			Metadata:    map[string]string{"client_ip": clientIP},
		})
		metrics.TokenRotations.WithLabelValues("revoked").Inc()
		// A consumed grant coming back means the secret leaked
		// somewhere along the way; every session of the owner is
		// dropped and each device has to log in again.
		if err := s.RevokeAllForUser(ctx, rt.UserID); err != nil {
			s.logger.Error("Token service: failed to drop sessions after token reuse",
				"user_id", rt.UserID,
				"error", err.Error())
		}
		return model.TokenPair{}, model.ErrTokenRevoked
	}
	if now.After(rt.ExpiresAt) {
		metrics.TokenRotations.WithLabelValues("expired").Inc()
		return model.TokenPair{}, model.ErrTokenExpired
	}

	user, err := s.users.GetByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// Data fault: a live grant pointing at a missing user row.
			s.logger.Error("Token service: refresh token owner missing",
				"token_id", rt.ID,
				"user_id", rt.UserID)
			return model.TokenPair{}, model.ErrUserIntegrity
		}
		return model.TokenPair{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	// Consume the presented grant before issuing the replacement. Of N
	// concurrent calls with the same secret, exactly one wins this
	// compare-and-set.
	consumed, err := s.store.UpdateRevoked(ctx, rt.ID, false)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if !consumed {
		s.audit.Record(ctx, model.AuditEvent{
			Kind:        model.AuditTokenReuse,
			UserID:      rt.UserID,
			Description: "lost rotation race, token already consumed",
			Metadata:    map[string]string{"client_ip": clientIP},
		})
		metrics.TokenRotations.WithLabelValues("revoked").Inc()
		// Losing the race is still a second presentation of a consumed
		// secret, so it gets the same treatment as outright reuse.
		if err := s.RevokeAllForUser(ctx, rt.UserID); err != nil {
			s.logger.Error("Token service: failed to drop sessions after token reuse",
				"user_id", rt.UserID,
				"error", err.Error())
		}
		return model.TokenPair{}, model.ErrTokenRevoked
	}

	pair, err := s.Issue(ctx, user, clientIP)
	if err != nil {
		return model.TokenPair{}, err
	}

	s.logger.Debug("Token service: refresh token rotated",
		"user_id", user.ID)
	s.audit.Record(ctx, model.AuditEvent{
		Kind:        model.AuditTokenRotated,
		UserID:      user.ID,
		Description: "refresh token rotated",
		Metadata:    map[string]string{"client_ip": clientIP},
	})
	metrics.TokenRotations.WithLabelValues("success").Inc()

	return pair, nil
}

// Revoke marks the grant behind a presented secret unusable. Logout is
// always successful from the caller's view: unknown and already-revoked
// secrets are no-ops.
func (s *TokenService) Revoke(ctx context.Context, presentedSecret string) error {
	digest := token.Digest(presentedSecret)

	rt, err := s.store.GetByDigest(ctx, digest)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get refresh token: %w", err)
	}
	if rt.IsRevoked {
		return nil
	}

	if _, err := s.store.UpdateRevoked(ctx, rt.ID, false); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	s.audit.Record(ctx, model.AuditEvent{
		Kind:        model.AuditTokenRevoked,
		UserID:      rt.UserID,
		Description: "refresh token revoked on logout",
	})
	return nil
}

// RevokeAllForUser drops every grant for a user, forcing re-login on
// all devices.
func (s *TokenService) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	n, err := s.store.DeleteAllForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to drop sessions: %w", err)
	}
	if n > 0 {
		s.logger.Info("Token service: dropped all sessions",
			"user_id", userID,
			"count", n)
	}
	return nil
}

// VerifyAccess validates a signed access token and returns its claims.
func (s *TokenService) VerifyAccess(tokenString string) (model.AccessClaims, error) {
	return s.manager.Verify(tokenString)
}
