// Package mocks holds hand-kept testify mocks for the interfaces in
// internal/model.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Abdul-Aziz026/school-auth/internal/model"
)

// UserStore is a mock of model.UserStore.
type UserStore struct {
	mock.Mock
}

func (m *UserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) Update(ctx context.Context, user model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// RefreshTokenStore is a mock of model.RefreshTokenStore.
type RefreshTokenStore struct {
	mock.Mock
}

func (m *RefreshTokenStore) Create(ctx context.Context, token model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *RefreshTokenStore) GetByDigest(ctx context.Context, digest string) (model.RefreshToken, error) {
	args := m.Called(ctx, digest)
	return args.Get(0).(model.RefreshToken), args.Error(1)
}

func (m *RefreshTokenStore) UpdateRevoked(ctx context.Context, id uuid.UUID, expectedRevoked bool) (bool, error) {
	args := m.Called(ctx, id, expectedRevoked)
	return args.Bool(0), args.Error(1)
}

func (m *RefreshTokenStore) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// TokenManager is a mock of model.TokenManager.
type TokenManager struct {
	mock.Mock
}

func (m *TokenManager) Issue(user model.User, now time.Time) (string, time.Time, error) {
	args := m.Called(user, now)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *TokenManager) Verify(token string) (model.AccessClaims, error) {
	args := m.Called(token)
	return args.Get(0).(model.AccessClaims), args.Error(1)
}

// EmailDispatcher is a mock of model.EmailDispatcher.
type EmailDispatcher struct {
	mock.Mock
}

func (m *EmailDispatcher) Send(ctx context.Context, toAddress, toName, subject, htmlBody string) error {
	args := m.Called(ctx, toAddress, toName, subject, htmlBody)
	return args.Error(0)
}

// AuditSink is a mock of model.AuditSink.
type AuditSink struct {
	mock.Mock
}

func (m *AuditSink) Record(ctx context.Context, event model.AuditEvent) {
	m.Called(ctx, event)
}

// LoginLimiter is a mock of model.LoginLimiter.
type LoginLimiter struct {
	mock.Mock
}

func (m *LoginLimiter) Allowed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *LoginLimiter) RecordFailure(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *LoginLimiter) Reset(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
