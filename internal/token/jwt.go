package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Abdul-Aziz026/school-auth/internal/model"
)

// Verification failures, one per claim check so callers can log which
// check rejected the token.
var (
	ErrInvalidSignature = errors.New("access token signature invalid")
	ErrExpired          = errors.New("access token expired")
	ErrWrongIssuer      = errors.New("access token issuer mismatch")
	ErrWrongAudience    = errors.New("access token audience mismatch")
)

// Claims represents JWT claims carried by an access token.
type Claims struct {
	jwt.RegisteredClaims
	Email       string   `json:"email,omitempty"`
	Name        string   `json:"name,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// JWT implements model.TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey string
	ttl       time.Duration
	issuer    string
	audience  string
	leeway    time.Duration
}

// NewJWT creates a JWT token manager. leeway is the clock skew
// tolerated when verifying expiry.
func NewJWT(secretKey string, ttl time.Duration, issuer, audience string, leeway time.Duration) *JWT {
	return &JWT{
		secretKey: secretKey,
		ttl:       ttl,
		issuer:    issuer,
		audience:  audience,
		leeway:    leeway,
	}
}

// Issue creates a signed access token for the user with a fresh jti.
func (j *JWT) Issue(user model.User, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(j.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    j.issuer,
			Audience:  jwt.ClaimStrings{j.audience},
		},
		Email:       user.Email,
		Name:        user.UserName,
		Roles:       user.Roles,
		Permissions: user.Permissions,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// Verify checks signature, expiry, issuer and audience, and returns the
// verified claims.
func (j *JWT) Verify(tokenString string) (model.AccessClaims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	},
		jwt.WithIssuer(j.issuer),
		jwt.WithAudience(j.audience),
		jwt.WithLeeway(j.leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return model.AccessClaims{}, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return model.AccessClaims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return model.AccessClaims{}, ErrWrongIssuer
		case errors.Is(err, jwt.ErrTokenInvalidAudience):
			return model.AccessClaims{}, ErrWrongAudience
		default:
			return model.AccessClaims{}, fmt.Errorf("failed to parse access token: %w", err)
		}
	}
	if !token.Valid {
		return model.AccessClaims{}, ErrInvalidSignature
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.AccessClaims{}, fmt.Errorf("failed to parse token subject: %w", err)
	}

	out := model.AccessClaims{
		UserID:      userID,
		Email:       claims.Email,
		Name:        claims.Name,
		Roles:       claims.Roles,
		Permissions: claims.Permissions,
		TokenID:     claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
