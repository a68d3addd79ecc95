// Package mistral adapts the Mistral La Plateforme API, an OpenAI-dialect
// endpoint with a couple of vendor-specific finish values.
package mistral

import (
	"context"

	"github.com/upb/llm-dispatch/providers"
	"github.com/upb/llm-dispatch/providers/internal/openaicompat"
)

const defaultBaseURL = "https://api.mistral.ai/v1"

// finishReasons covers Mistral's documented values; "model_length" is their
// name for hitting the context limit.
var finishReasons = map[string]providers.FinishReason{
	"stop":         providers.FinishReasonStop,
	"length":       providers.FinishReasonLength,
	"model_length": providers.FinishReasonLength,
	"tool_calls":   providers.FinishReasonToolCall,
	"error":        providers.FinishReasonError,
}

// Adapter implements the chat-completion contract for Mistral.
//
// Recognized request parameters match the OpenAI dialect; Extra parameters
// are forwarded verbatim.
type Adapter struct {
	client *openaicompat.Client
}

// New creates a Mistral adapter. Fails when the API key is missing.
func New(cfg providers.ProviderConfig) (*Adapter, error) {
	client, err := openaicompat.NewClient("mistral", cfg, defaultBaseURL)
	if err != nil {
		return nil, err
	}
	return &Adapter{client: client}, nil
}

// Name returns the provider key
func (a *Adapter) Name() string {
	return "mistral"
}

// CompleteChat performs a chat completion request against Mistral
func (a *Adapter) CompleteChat(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openaicompat.FromRequest(req))
	if err != nil {
		return nil, err
	}
	return openaicompat.ToResponse(a.Name(), resp, finishReasons), nil
}
