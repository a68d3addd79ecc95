package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-signing-secret"

func signToken(t *testing.T, secret string, expiresAt time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func runRequireAuth(t *testing.T, authHeader string) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	m := NewAuthMiddleware(testSecret, zap.NewNop())

	reached := false
	handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)
	return w, reached
}

func TestRequireAuth_ValidToken(t *testing.T) {
	token := signToken(t, testSecret, time.Now().Add(time.Hour))

	w, reached := runRequireAuth(t, "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, reached)
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	w, reached := runRequireAuth(t, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, reached)
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	w, reached := runRequireAuth(t, "Token abc123")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, reached)
}

func TestRequireAuth_WrongSecret(t *testing.T) {
	token := signToken(t, "other-secret", time.Now().Add(time.Hour))

	w, reached := runRequireAuth(t, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, reached)
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	token := signToken(t, testSecret, time.Now().Add(-time.Hour))

	w, reached := runRequireAuth(t, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, reached)
}

func TestRequireAuth_RejectsAlgNone(t *testing.T) {
	// header {"alg":"none","typ":"JWT"} with an empty signature
	token := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJzdWIiOiJ1c2VyLTEifQ."

	w, reached := runRequireAuth(t, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, reached)
}
