package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Abdul-Aziz026/school-auth/internal/logger"
	"github.com/Abdul-Aziz026/school-auth/internal/model"
)

type contextKey string

const userIDKey contextKey = "user_id"

// TokenVerifier validates access tokens.
type TokenVerifier interface {
	VerifyAccess(token string) (model.AccessClaims, error)
}

// UserIDFromContext retrieves the authenticated user id set by the
// Authenticate middleware.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// SetUserIDToContext is exposed for handler tests.
func SetUserIDToContext(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// Authenticate validates bearer tokens and injects the user id into
// the request context.
type Authenticate struct {
	verifier TokenVerifier
	logger   *logger.Logger
}

func NewAuthenticate(verifier TokenVerifier, logger *logger.Logger) *Authenticate {
	return &Authenticate{verifier: verifier, logger: logger}
}

func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString := strings.TrimPrefix(header, "Bearer ")
		if header == "" || tokenString == header {
			unauthorized(w, "missing bearer token")
			return
		}

		claims, err := m.verifier.VerifyAccess(tokenString)
		if err != nil {
			m.logger.Debug("Auth middleware: token rejected",
				"error", err.Error())
			unauthorized(w, "invalid access token")
			return
		}

		ctx := SetUserIDToContext(r.Context(), claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": "UNAUTHORIZED", "message": message},
	})
}

// ClientIP extracts the caller address, preferring the first entry of
// X-Forwarded-For when a proxy sits in front.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
