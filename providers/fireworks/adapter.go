// Package fireworks adapts the Fireworks AI inference API (OpenAI dialect).
package fireworks

import (
	"context"

	"github.com/upb/llm-dispatch/providers"
	"github.com/upb/llm-dispatch/providers/internal/openaicompat"
)

const defaultBaseURL = "https://api.fireworks.ai/inference/v1"

var finishReasons = map[string]providers.FinishReason{
	"stop":           providers.FinishReasonStop,
	"length":         providers.FinishReasonLength,
	"tool_calls":     providers.FinishReasonToolCall,
	"function_call":  providers.FinishReasonToolCall,
	"content_filter": providers.FinishReasonContentFilter,
	"error":          providers.FinishReasonError,
}

// Adapter implements the chat-completion contract for Fireworks AI.
//
// Recognized request parameters match the OpenAI dialect; Extra parameters
// are forwarded verbatim.
type Adapter struct {
	client *openaicompat.Client
}

// New creates a Fireworks adapter. Fails when the API key is missing.
func New(cfg providers.ProviderConfig) (*Adapter, error) {
	client, err := openaicompat.NewClient("fireworks", cfg, defaultBaseURL)
	if err != nil {
		return nil, err
	}
	return &Adapter{client: client}, nil
}

// Name returns the provider key
func (a *Adapter) Name() string {
	return "fireworks"
}

// CompleteChat performs a chat completion request against Fireworks
func (a *Adapter) CompleteChat(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openaicompat.FromRequest(req))
	if err != nil {
		return nil, err
	}
	return openaicompat.ToResponse(a.Name(), resp, finishReasons), nil
}
