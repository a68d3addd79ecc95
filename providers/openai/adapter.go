package openai

import (
	"context"

	"github.com/upb/llm-dispatch/providers"
	"github.com/upb/llm-dispatch/providers/internal/openaicompat"
)

const defaultBaseURL = "https://api.openai.com/v1"

// finishReasons maps OpenAI finish values to the normalized enum. Unmapped
// values fall back to "unknown".
var finishReasons = map[string]providers.FinishReason{
	"stop":           providers.FinishReasonStop,
	"length":         providers.FinishReasonLength,
	"tool_calls":     providers.FinishReasonToolCall,
	"function_call":  providers.FinishReasonToolCall,
	"content_filter": providers.FinishReasonContentFilter,
}

// Adapter implements the chat-completion contract for OpenAI.
//
// Recognized request parameters: model, messages (all roles), max_tokens,
// temperature, top_p, stop, tools, user. Extra parameters are forwarded
// verbatim in the request body; the OpenAI API accepts open parameters, so
// nothing is dropped.
type Adapter struct {
	client *openaicompat.Client
}

// New creates an OpenAI adapter. Fails when the API key is missing.
func New(cfg providers.ProviderConfig) (*Adapter, error) {
	client, err := openaicompat.NewClient("openai", cfg, defaultBaseURL)
	if err != nil {
		return nil, err
	}
	return &Adapter{client: client}, nil
}

// Name returns the provider key
func (a *Adapter) Name() string {
	return "openai"
}

// CompleteChat performs a chat completion request against OpenAI
func (a *Adapter) CompleteChat(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openaicompat.FromRequest(req))
	if err != nil {
		return nil, err
	}
	return openaicompat.ToResponse(a.Name(), resp, finishReasons), nil
}
