package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/Abdul-Aziz026/school-auth/internal/api/http/middleware"
	"github.com/Abdul-Aziz026/school-auth/internal/logger"
	"github.com/Abdul-Aziz026/school-auth/internal/model"
	"github.com/Abdul-Aziz026/school-auth/internal/service"
)

// AuthService defines registration, login and profile operations.
type AuthService interface {
	Register(ctx context.Context, input service.RegisterInput) (model.User, model.TokenPair, error)
	Login(ctx context.Context, email, password, clientIP string) (model.TokenPair, error)
	GetUserInfo(ctx context.Context, id uuid.UUID) (model.User, error)
}

// TokenService defines refresh rotation and revocation operations.
type TokenService interface {
	Rotate(ctx context.Context, refreshToken, clientIP string) (model.TokenPair, error)
	Revoke(ctx context.Context, refreshToken string) error
}

// ResetService defines the password reset handshake.
type ResetService interface {
	RequestReset(ctx context.Context, email string) error
	ConfirmReset(ctx context.Context, email, token, newPassword string) error
}

// Auth handles the HTTP endpoints for authentication.
type Auth struct {
	authService  AuthService
	tokenService TokenService
	resetService ResetService
	logger       *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, tokenService TokenService, resetService ResetService, logger *logger.Logger) *Auth {
	return &Auth{
		authService:  authService,
		tokenService: tokenService,
		resetService: resetService,
		logger:       logger,
	}
}

type registerRequest struct {
	UserName string `json:"user_name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

type userResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	UserName    string    `json:"user_name"`
	Roles       []string  `json:"roles"`
	Permissions []string  `json:"permissions"`
}

type tokenPairResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	AccessExpiresAt  int64  `json:"access_expires_at"`
	RefreshExpiresAt int64  `json:"refresh_expires_at"`
}

type authResponse struct {
	User   userResponse      `json:"user"`
	Tokens tokenPairResponse `json:"tokens"`
}

func toUserResponse(u model.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		UserName:    u.UserName,
		Roles:       u.Roles,
		Permissions: u.Permissions,
	}
}

func toTokenPairResponse(p model.TokenPair) tokenPairResponse {
	return tokenPairResponse{
		AccessToken:      p.AccessToken,
		RefreshToken:     p.RefreshToken,
		AccessExpiresAt:  p.AccessExpiresAt.Unix(),
		RefreshExpiresAt: p.RefreshExpiresAt.Unix(),
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body"},
		})
		return false
	}
	if err := validate(dst); err != nil {
		writeValidationError(w, err)
		return false
	}
	return true
}

// Register handles POST /api/v1/auth/register.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}

	user, pair, err := h.authService.Register(r.Context(), service.RegisterInput{
		UserName: req.UserName,
		Email:    req.Email,
		Password: req.Password,
		ClientIP: middleware.ClientIP(r),
	})
	if err != nil {
		h.logger.Error("Auth handler: registration failed",
			"error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: authResponse{
		User:   toUserResponse(user),
		Tokens: toTokenPairResponse(pair),
	}})
}

// Login handles POST /api/v1/auth/login.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}

	pair, err := h.authService.Login(r.Context(), req.Email, req.Password, middleware.ClientIP(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: toTokenPairResponse(pair)})
}

// Refresh handles POST /api/v1/auth/refresh.
func (h *Auth) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decode(w, r, &req) {
		return
	}

	pair, err := h.tokenService.Rotate(r.Context(), req.RefreshToken, middleware.ClientIP(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: toTokenPairResponse(pair)})
}

// Logout handles POST /api/v1/auth/logout. Revocation is idempotent,
// so logging out twice with the same token still answers 204.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.tokenService.Revoke(r.Context(), req.RefreshToken); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ForgotPassword handles POST /api/v1/auth/forgot-password. The answer
// is 202 whether or not the email exists.
func (h *Auth) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.resetService.RequestReset(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, response{Data: map[string]string{
		"status": "if the account exists, a reset email has been sent",
	}})
}

// ResetPassword handles POST /api/v1/auth/reset-password.
func (h *Auth) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.resetService.ConfirmReset(r.Context(), req.Email, req.Token, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"status": "password updated"}})
}

// Me handles GET /api/v1/users/me.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "missing authentication"},
		})
		return
	}

	user, err := h.authService.GetUserInfo(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: toUserResponse(user)})
}
