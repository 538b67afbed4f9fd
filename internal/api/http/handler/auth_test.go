package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Abdul-Aziz026/school-auth/internal/api/http/middleware"
	"github.com/Abdul-Aziz026/school-auth/internal/model"
	"github.com/Abdul-Aziz026/school-auth/internal/service"
	"github.com/Abdul-Aziz026/school-auth/internal/testutil"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, input service.RegisterInput) (model.User, model.TokenPair, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(model.User), args.Get(1).(model.TokenPair), args.Error(2)
}

func (m *mockAuthService) Login(ctx context.Context, email, password, clientIP string) (model.TokenPair, error) {
	args := m.Called(ctx, email, password, clientIP)
	return args.Get(0).(model.TokenPair), args.Error(1)
}

func (m *mockAuthService) GetUserInfo(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) Rotate(ctx context.Context, refreshToken, clientIP string) (model.TokenPair, error) {
	args := m.Called(ctx, refreshToken, clientIP)
	return args.Get(0).(model.TokenPair), args.Error(1)
}

func (m *mockTokenService) Revoke(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

type mockResetService struct {
	mock.Mock
}

func (m *mockResetService) RequestReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *mockResetService) ConfirmReset(ctx context.Context, email, token, newPassword string) error {
	args := m.Called(ctx, email, token, newPassword)
	return args.Error(0)
}

type handlerFixture struct {
	auth    *mockAuthService
	tokens  *mockTokenService
	reset   *mockResetService
	handler *Auth
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	f := &handlerFixture{
		auth:   &mockAuthService{},
		tokens: &mockTokenService{},
		reset:  &mockResetService{},
	}
	f.handler = NewAuth(f.auth, f.tokens, f.reset, testutil.MakeNoopLogger())
	return f
}

func postJSON(t *testing.T, handlerFunc http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "10.0.0.1:54321"
	rec := httptest.NewRecorder()
	handlerFunc(rec, req)
	return rec
}

func samplePair() model.TokenPair {
	return model.TokenPair{
		AccessToken:      "access",
		RefreshToken:     "refresh",
		AccessExpiresAt:  time.Now().Add(15 * time.Minute),
		RefreshExpiresAt: time.Now().Add(720 * time.Hour),
	}
}

func TestAuthHandler_Register(t *testing.T) {
	f := newHandlerFixture(t)
	user := model.User{ID: uuid.New(), Email: "new@x.com", UserName: "student", Roles: []string{"User"}}

	f.auth.On("Register", mock.Anything, service.RegisterInput{
		UserName: "student",
		Email:    "new@x.com",
		Password: "hunter2hunter2",
		ClientIP: "10.0.0.1",
	}).Return(user, samplePair(), nil).Once()

	rec := postJSON(t, f.handler.Register, map[string]string{
		"user_name": "student",
		"email":     "new@x.com",
		"password":  "hunter2hunter2",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		Data authResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "new@x.com", body.Data.User.Email)
	assert.Equal(t, "access", body.Data.Tokens.AccessToken)
	f.auth.AssertExpectations(t)
}

func TestAuthHandler_Register_ValidationError(t *testing.T) {
	f := newHandlerFixture(t)

	rec := postJSON(t, f.handler.Register, map[string]string{
		"user_name": "student",
		"email":     "not-an-email",
		"password":  "short",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Error errorResponse `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.Contains(t, body.Error.Fields, "email")
	assert.Contains(t, body.Error.Fields, "password")
	f.auth.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	f := newHandlerFixture(t)

	f.auth.On("Register", mock.Anything, mock.Anything).
		Return(model.User{}, model.TokenPair{}, model.ErrEmailTaken).Once()

	rec := postJSON(t, f.handler.Register, map[string]string{
		"user_name": "student",
		"email":     "taken@x.com",
		"password":  "hunter2hunter2",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	f := newHandlerFixture(t)

	f.auth.On("Login", mock.Anything, "a@x.com", "hunter2hunter2", "10.0.0.1").
		Return(samplePair(), nil).Once()

	rec := postJSON(t, f.handler.Login, map[string]string{
		"email":    "a@x.com",
		"password": "hunter2hunter2",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data tokenPairResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "refresh", body.Data.RefreshToken)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	f := newHandlerFixture(t)

	f.auth.On("Login", mock.Anything, "a@x.com", "wrong", mock.Anything).
		Return(model.TokenPair{}, model.ErrInvalidCredentials).Once()

	rec := postJSON(t, f.handler.Login, map[string]string{
		"email":    "a@x.com",
		"password": "wrong",
	})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var body struct {
		Error errorResponse `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_CREDENTIALS", body.Error.Code)
}

func TestAuthHandler_Login_Locked(t *testing.T) {
	f := newHandlerFixture(t)

	f.auth.On("Login", mock.Anything, "a@x.com", "whatever", mock.Anything).
		Return(model.TokenPair{}, &model.LockoutError{Remaining: 7 * time.Minute}).Once()

	rec := postJSON(t, f.handler.Login, map[string]string{
		"email":    "a@x.com",
		"password": "whatever",
	})

	require.Equal(t, http.StatusLocked, rec.Code)
	var body struct {
		Error errorResponse `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ACCOUNT_LOCKED", body.Error.Code)
	assert.Equal(t, int64(420), body.Error.RetryAfterSeconds)
}

func TestAuthHandler_Refresh(t *testing.T) {
	f := newHandlerFixture(t)

	f.tokens.On("Rotate", mock.Anything, "old-secret", "10.0.0.1").
		Return(samplePair(), nil).Once()

	rec := postJSON(t, f.handler.Refresh, map[string]string{"refresh_token": "old-secret"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthHandler_Refresh_Revoked(t *testing.T) {
	f := newHandlerFixture(t)

	f.tokens.On("Rotate", mock.Anything, "reused-secret", mock.Anything).
		Return(model.TokenPair{}, model.ErrTokenRevoked).Once()

	rec := postJSON(t, f.handler.Refresh, map[string]string{"refresh_token": "reused-secret"})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var body struct {
		Error errorResponse `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_REFRESH_TOKEN", body.Error.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	f := newHandlerFixture(t)

	f.tokens.On("Revoke", mock.Anything, "secret").Return(nil).Once()

	rec := postJSON(t, f.handler.Logout, map[string]string{"refresh_token": "secret"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	f := newHandlerFixture(t)

	f.reset.On("RequestReset", mock.Anything, "ghost@x.com").Return(nil).Once()

	rec := postJSON(t, f.handler.ForgotPassword, map[string]string{"email": "ghost@x.com"})
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestAuthHandler_ResetPassword(t *testing.T) {
	f := newHandlerFixture(t)

	f.reset.On("ConfirmReset", mock.Anything, "a@x.com", "raw-token", "new password 1").
		Return(nil).Once()

	rec := postJSON(t, f.handler.ResetPassword, map[string]string{
		"email":        "a@x.com",
		"token":        "raw-token",
		"new_password": "new password 1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthHandler_ResetPassword_InvalidToken(t *testing.T) {
	f := newHandlerFixture(t)

	f.reset.On("ConfirmReset", mock.Anything, "a@x.com", "wrong", "new password 1").
		Return(model.ErrResetTokenInvalid).Once()

	rec := postJSON(t, f.handler.ResetPassword, map[string]string{
		"email":        "a@x.com",
		"token":        "wrong",
		"new_password": "new password 1",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Error errorResponse `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_RESET_TOKEN", body.Error.Code)
}

func TestAuthHandler_Me(t *testing.T) {
	f := newHandlerFixture(t)
	userID := uuid.New()

	f.auth.On("GetUserInfo", mock.Anything, userID).
		Return(model.User{ID: userID, Email: "a@x.com", UserName: "student"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(middleware.SetUserIDToContext(req.Context(), userID))
	rec := httptest.NewRecorder()
	f.handler.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data userResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "a@x.com", body.Data.Email)
}

func TestAuthHandler_Me_NoContext(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	f.handler.Me(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_MalformedBody(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	f.handler.Login(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
