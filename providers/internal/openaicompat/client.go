// Package openaicompat implements the OpenAI chat-completions wire dialect
// shared by several vendors (OpenAI itself, Groq, Mistral, Fireworks). Each
// adapter owns its base URL, auth and finish-reason mapping; this package
// owns the request encoding, the HTTP call and the error translation.
package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/upb/llm-dispatch/providers"
)

const defaultTimeout = 60 * time.Second

// ChatRequest is the OpenAI-dialect chat completion request body
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	TopP        *float64  `json:"top_p,omitempty"`
	Stop        []string  `json:"stop,omitempty"`
	Tools       []Tool    `json:"tools,omitempty"`
	User        *string   `json:"user,omitempty"`

	// Extra holds open parameters merged into the body at the top level.
	// Entries never override the typed fields above.
	Extra map[string]any `json:"-"`
}

// Message is a single OpenAI-dialect chat message
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a tool invocation in an assistant message
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall holds a function name and raw JSON arguments
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Tool describes a callable tool
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction describes a function tool with JSON-schema parameters
type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// ChatResponse is the OpenAI-dialect chat completion response body
type ChatResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

// Choice is one completion candidate
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage is the token usage block
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// Encode marshals the request, merging Extra entries into the top-level JSON
// object. Typed fields win over Extra entries with the same name.
func (r *ChatRequest) Encode() ([]byte, error) {
	base, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	if len(r.Extra) == 0 {
		return base, nil
	}

	body := make(map[string]json.RawMessage, len(r.Extra)+8)
	for k, v := range r.Extra {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode extra parameter %q: %w", k, err)
		}
		body[k] = raw
	}

	var typed map[string]json.RawMessage
	if err := json.Unmarshal(base, &typed); err != nil {
		return nil, err
	}
	for k, v := range typed {
		body[k] = v
	}

	return json.Marshal(body)
}

// Client calls a single OpenAI-compatible chat completions endpoint
type Client struct {
	providerKey string
	baseURL     string
	apiKey      string
	headers     map[string]string
	httpClient  *http.Client
}

// NewClient creates a client for one vendor endpoint. The API key is
// required: adapters are only constructed when their provider is actually
// addressed, so a missing credential surfaces as a construction failure.
func NewClient(providerKey string, cfg providers.ProviderConfig, defaultBaseURL string) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: API key is missing", providerKey)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	headers := map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + cfg.APIKey,
	}
	if cfg.OrgID != "" {
		headers["OpenAI-Organization"] = cfg.OrgID
	}
	for k, v := range cfg.Headers {
		headers[k] = v
	}

	return &Client{
		providerKey: providerKey,
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		headers:     headers,
		httpClient:  &http.Client{Timeout: timeout},
	}, nil
}

// CreateChatCompletion posts the request to /chat/completions and decodes the
// response. Any vendor-side failure is returned as a dispatch error of kind
// ErrorKindProviderRequest; the client never retries.
func (c *Client) CreateChatCompletion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	body, err := req.Encode()
	if err != nil {
		return nil, providers.NewProviderRequestError(c.providerKey, req.Model, "failed to encode request", 0, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, providers.NewProviderRequestError(c.providerKey, req.Model, "failed to create request", 0, err)
	}
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, providers.NewProviderRequestError(c.providerKey, req.Model, "request failed", 0, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, providers.NewProviderRequestError(c.providerKey, req.Model, "failed to read response", httpResp.StatusCode, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, c.errorFromResponse(req.Model, httpResp.StatusCode, respBody)
	}

	var resp ChatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, providers.NewProviderRequestError(c.providerKey, req.Model, "failed to decode response", httpResp.StatusCode, err)
	}

	return &resp, nil
}

func (c *Client) errorFromResponse(model string, statusCode int, body []byte) error {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		return providers.NewProviderRequestError(c.providerKey, model,
			fmt.Sprintf("unexpected status %d", statusCode), statusCode, errors.New(string(body)))
	}

	message := errResp.Error.Message
	if errResp.Error.Type != "" {
		message = fmt.Sprintf("%s: %s", errResp.Error.Type, message)
	}
	return providers.NewProviderRequestError(c.providerKey, model, message, statusCode, errors.New(errResp.Error.Message))
}
