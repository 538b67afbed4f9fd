package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdul-Aziz026/school-auth/internal/model"
	"github.com/Abdul-Aziz026/school-auth/internal/testutil"
)

type stubVerifier struct {
	claims model.AccessClaims
	err    error
}

func (v *stubVerifier) VerifyAccess(string) (model.AccessClaims, error) {
	return v.claims, v.err
}

func TestAuthenticate_ValidToken(t *testing.T) {
	userID := uuid.New()
	mw := NewAuthenticate(&stubVerifier{claims: model.AccessClaims{UserID: userID}}, testutil.MakeNoopLogger())

	var gotID uuid.UUID
	var gotOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, gotOK = UserIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	mw.Handle(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, gotOK)
	assert.Equal(t, userID, gotID)
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	mw := NewAuthenticate(&stubVerifier{}, testutil.MakeNoopLogger())
	called := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	mw.Handle(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestAuthenticate_NotBearer(t *testing.T) {
	mw := NewAuthenticate(&stubVerifier{}, testutil.MakeNoopLogger())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	mw.Handle(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_RejectedToken(t *testing.T) {
	mw := NewAuthenticate(&stubVerifier{err: errors.New("expired")}, testutil.MakeNoopLogger())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer stale")
	rec := httptest.NewRecorder()
	mw.Handle(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "10.0.0.1:51234",
			want:       "10.0.0.1",
		},
		{
			name:       "forwarded header wins",
			remoteAddr: "127.0.0.1:8080",
			forwarded:  "203.0.113.7",
			want:       "203.0.113.7",
		},
		{
			name:       "first entry of forwarded chain",
			remoteAddr: "127.0.0.1:8080",
			forwarded:  "203.0.113.7, 198.51.100.2",
			want:       "203.0.113.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}
