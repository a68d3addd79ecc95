// Package dispatch is the single entry point of the uniform dispatch layer.
// A Client parses a combined "provider:model" identifier, resolves the
// adapter through its registry, forwards the normalized request, and returns
// the normalized response.
package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/upb/llm-dispatch/config"
	"github.com/upb/llm-dispatch/providers"
	"go.uber.org/zap"
)

// Client is the router / facade over the adapter registry. It is stateless
// beyond the registry and config references and is safe to share across
// concurrent callers; the registry's resolve path is the only shared mutable
// state and serializes first-time construction per key.
type Client struct {
	cfg      *config.Config
	registry *providers.Registry
	logger   *zap.Logger
}

// Option customizes a Client at construction
type Option func(*Client)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client with the built-in provider factories registered
// (openai, anthropic, groq, mistral, fireworks). Each Client owns its own
// registry; callers that want isolation construct separate Clients.
func New(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		cfg:      cfg,
		registry: providers.NewRegistry(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.registerBuiltins()
	return c
}

// RegisterProvider registers an additional adapter factory under the given
// key. It fails with providers.ErrDuplicateProvider when the key is taken.
func (c *Client) RegisterProvider(providerKey string, factory providers.Factory) error {
	return c.registry.Register(providerKey, factory)
}

// ResetProvider evicts the cached adapter (or cached construction failure)
// for the key, forcing reconstruction on next use. Used after credential
// rotation.
func (c *Client) ResetProvider(providerKey string) {
	c.registry.Reset(providerKey)
}

// Providers returns the registered provider keys
func (c *Client) Providers() []string {
	return c.registry.Keys()
}

// Complete dispatches a chat completion. The identifier selects the provider
// and model ("openai:gpt-4o"); the conversation order is preserved
// end-to-end; opts set optional generation parameters. Failures from
// parsing, resolution, and the vendor call propagate unchanged so callers
// can branch on the error kind.
func (c *Client) Complete(ctx context.Context, identifier string, messages []providers.ChatMessage, opts ...RequestOption) (*providers.CompletionResponse, error) {
	providerKey, model, err := providers.ParseIdentifier(identifier)
	if err != nil {
		return nil, err
	}

	adapter, err := c.registry.Resolve(providerKey)
	if err != nil {
		return nil, err
	}

	req := &providers.CompletionRequest{
		Model:    model,
		Messages: messages,
	}
	for _, opt := range opts {
		opt(req)
	}

	requestID := uuid.New()
	start := time.Now()
	c.logger.Debug("dispatching completion",
		zap.String("request_id", requestID.String()),
		zap.String("provider", providerKey),
		zap.String("model", model),
		zap.Int("messages", len(messages)))

	resp, err := adapter.CompleteChat(ctx, req)
	if err != nil {
		c.logger.Warn("completion failed",
			zap.String("request_id", requestID.String()),
			zap.String("provider", providerKey),
			zap.String("model", model),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err))
		return nil, err
	}

	c.logger.Info("completion dispatched",
		zap.String("request_id", requestID.String()),
		zap.String("provider", providerKey),
		zap.String("model", model),
		zap.String("finish_reason", string(resp.FinishReason)),
		zap.Duration("latency", time.Since(start)))

	return resp, nil
}
