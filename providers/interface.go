package providers

import (
	"context"
	"time"
)

// Adapter is the normalized chat-completion capability every provider
// implementation exposes. Implementations translate the unified request into
// the vendor's native call and the native response back into the unified
// shape. Adapters never retry; vendor failures surface as *Error with kind
// ErrorKindProviderRequest.
type Adapter interface {
	// Name returns the provider key (e.g. "openai", "anthropic")
	Name() string

	// CompleteChat performs a chat completion request. The call may be
	// network-bound; cancellation is driven by ctx.
	CompleteChat(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}

// Role identifies the author of a chat message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ChatMessage represents a single message in a conversation. Message order
// is semantically significant and preserved end-to-end.
type ChatMessage struct {
	// Role can be "system", "user", "assistant", or "tool"
	Role Role `json:"role"`

	// Content is the message text
	Content string `json:"content"`

	// Name is an optional identifier for the message sender
	Name string `json:"name,omitempty"`

	// ToolCalls carries tool invocations requested by an assistant message
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID links a tool-role message to the call it answers
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// ToolCall represents a tool invocation requested by the model
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall holds the function name and raw JSON arguments
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Tool describes a tool the model may call
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction describes a callable function and its JSON-schema parameters
type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// CompletionRequest represents a unified chat completion request.
//
// The typed fields are the parameters every supported provider understands in
// some form. Extra is an open bag of provider-specific parameters: whether an
// adapter forwards or drops entries it does not recognize is an explicit,
// documented per-adapter policy.
type CompletionRequest struct {
	// Model identifier, passed through verbatim to the vendor
	Model string `json:"model"`

	// Messages in the conversation, in order
	Messages []ChatMessage `json:"messages"`

	// MaxTokens limits the response length (0 = provider default)
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness; nil leaves the provider default
	Temperature *float64 `json:"temperature,omitempty"`

	// TopP controls nucleus sampling; nil leaves the provider default
	TopP *float64 `json:"top_p,omitempty"`

	// Stop sequences
	Stop []string `json:"stop,omitempty"`

	// Tools the model may call
	Tools []Tool `json:"tools,omitempty"`

	// User identifier for abuse monitoring (where supported)
	User string `json:"user,omitempty"`

	// Extra holds provider-specific parameters by name
	Extra map[string]any `json:"extra,omitempty"`
}

// FinishReason is the normalized enum describing why generation stopped
type FinishReason string

const (
	FinishReasonStop          FinishReason = "stop"
	FinishReasonLength        FinishReason = "length"
	FinishReasonToolCall      FinishReason = "tool_call"
	FinishReasonContentFilter FinishReason = "content_filter"
	FinishReasonError         FinishReason = "error"

	// FinishReasonUnknown is the forward-compatible fallback for native
	// finish values without a mapping entry
	FinishReasonUnknown FinishReason = "unknown"
)

// Usage represents token usage statistics
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionResponse represents a unified chat completion response
type CompletionResponse struct {
	// ID is the vendor's identifier for this completion, when it has one
	ID string `json:"id,omitempty"`

	// Model that produced the completion
	Model string `json:"model"`

	// Provider key that handled the request
	Provider string `json:"provider"`

	// Message is the generated assistant message
	Message ChatMessage `json:"message"`

	// FinishReason indicates why generation stopped
	FinishReason FinishReason `json:"finish_reason"`

	// Usage statistics, when the vendor reports them
	Usage *Usage `json:"usage,omitempty"`

	// Created timestamp reported by the vendor
	Created time.Time `json:"created,omitzero"`
}

// ProviderConfig holds common per-provider settings consumed at adapter
// construction
type ProviderConfig struct {
	// APIKey for authentication
	APIKey string

	// BaseURL for the API (optional override)
	BaseURL string

	// Timeout for requests; zero means the adapter default
	Timeout time.Duration

	// OrgID for organization-scoped endpoints (OpenAI)
	OrgID string

	// Headers are additional headers sent on every request
	Headers map[string]string
}
