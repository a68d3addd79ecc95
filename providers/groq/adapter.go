// Package groq adapts the Groq API, which speaks the OpenAI chat-completions
// dialect at its own endpoint.
package groq

import (
	"context"

	"github.com/upb/llm-dispatch/providers"
	"github.com/upb/llm-dispatch/providers/internal/openaicompat"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

var finishReasons = map[string]providers.FinishReason{
	"stop":           providers.FinishReasonStop,
	"length":         providers.FinishReasonLength,
	"tool_calls":     providers.FinishReasonToolCall,
	"function_call":  providers.FinishReasonToolCall,
	"content_filter": providers.FinishReasonContentFilter,
}

// Adapter implements the chat-completion contract for Groq.
//
// Recognized request parameters match the OpenAI dialect; Extra parameters
// are forwarded verbatim.
type Adapter struct {
	client *openaicompat.Client
}

// New creates a Groq adapter. Fails when the API key is missing.
func New(cfg providers.ProviderConfig) (*Adapter, error) {
	client, err := openaicompat.NewClient("groq", cfg, defaultBaseURL)
	if err != nil {
		return nil, err
	}
	return &Adapter{client: client}, nil
}

// Name returns the provider key
func (a *Adapter) Name() string {
	return "groq"
}

// CompleteChat performs a chat completion request against Groq
func (a *Adapter) CompleteChat(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openaicompat.FromRequest(req))
	if err != nil {
		return nil, err
	}
	return openaicompat.ToResponse(a.Name(), resp, finishReasons), nil
}
