package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/llm-dispatch/config"
	"github.com/upb/llm-dispatch/dispatch"
	"github.com/upb/llm-dispatch/handlers"
	"github.com/upb/llm-dispatch/providers"
	"go.uber.org/zap"
)

type fakeDispatcher struct{}

func (fakeDispatcher) Complete(ctx context.Context, identifier string, messages []providers.ChatMessage, opts ...dispatch.RequestOption) (*providers.CompletionResponse, error) {
	return &providers.CompletionResponse{
		Provider:     "openai",
		Message:      providers.ChatMessage{Role: providers.RoleAssistant, Content: "ok"},
		FinishReason: providers.FinishReasonStop,
	}, nil
}

type fakeLister struct{}

func (fakeLister) Providers() []string { return []string{"openai"} }

func testHandler(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()

	logger := zap.NewNop()
	return SetupRoutes(&Dependencies{
		Config:     cfg,
		Completion: handlers.NewCompletionHandler(fakeDispatcher{}, nil, logger),
		Health:     handlers.NewHealthHandler(nil),
		Providers:  fakeLister{},
		Logger:     logger,
	})
}

func TestSetupRoutes_Health(t *testing.T) {
	handler := testHandler(t, &config.Config{})

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestSetupRoutes_ProvidersOpenWithoutAuth(t *testing.T) {
	handler := testHandler(t, &config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/v1/providers", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetupRoutes_AuthEnforcedWhenConfigured(t *testing.T) {
	cfg := &config.Config{Auth: config.AuthConfig{JWTSecret: "shh"}}
	handler := testHandler(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/v1/providers", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("shh"))
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/v1/providers", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	w = httptest.NewRecorder()

	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
