// Package anthropic adapts the Anthropic Messages API. Unlike the
// OpenAI-dialect vendors it keeps the system prompt outside the conversation
// array, requires max_tokens, and reports tool use as content blocks.
package anthropic

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
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"

	// defaultMaxTokens applies when the request does not set a limit; the
	// Messages API rejects requests without one.
	defaultMaxTokens = 4096

	defaultTimeout = 60 * time.Second
)

// finishReasons maps Anthropic stop_reason values to the normalized enum.
// Unmapped values fall back to "unknown".
var finishReasons = map[string]providers.FinishReason{
	"end_turn":      providers.FinishReasonStop,
	"stop_sequence": providers.FinishReasonStop,
	"max_tokens":    providers.FinishReasonLength,
	"tool_use":      providers.FinishReasonToolCall,
	"refusal":       providers.FinishReasonContentFilter,
}

// recognizedExtras is the subset of open parameters this adapter understands
// and forwards. Anything else in Extra is dropped with a warning: the
// Messages API rejects unknown fields, so silent forwarding is not an option.
var recognizedExtras = map[string]struct{}{
	"top_k":        {},
	"metadata":     {},
	"service_tier": {},
	"thinking":     {},
}

// Adapter implements the chat-completion contract for Anthropic.
//
// Request mapping: leading system-role messages become the dedicated system
// field; "tool" role messages become user messages carrying a tool_result
// block; assistant tool calls become tool_use blocks; max_tokens defaults to
// 4096 when unset; temperature, top_p, stop (as stop_sequences), tools and
// user (as metadata.user_id) map directly. Extra parameters outside the
// recognized subset are dropped with a structured warning.
type Adapter struct {
	cfg        providers.ProviderConfig
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates an Anthropic adapter. Fails when the API key is missing.
func New(cfg providers.ProviderConfig, logger *zap.Logger) (*Adapter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: API key is missing")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Adapter{
		cfg:        cfg,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// Name returns the provider key
func (a *Adapter) Name() string {
	return "anthropic"
}

// CompleteChat performs a chat completion request against the Messages API
func (a *Adapter) CompleteChat(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	body, err := json.Marshal(a.buildMessagesRequest(req))
	if err != nil {
		return nil, providers.NewProviderRequestError(a.Name(), req.Model, "failed to encode request", 0, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, providers.NewProviderRequestError(a.Name(), req.Model, "failed to create request", 0, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", apiVersion)
	for k, v := range a.cfg.Headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, providers.NewProviderRequestError(a.Name(), req.Model, "request failed", 0, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, providers.NewProviderRequestError(a.Name(), req.Model, "failed to read response", httpResp.StatusCode, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, a.errorFromResponse(req.Model, httpResp.StatusCode, respBody)
	}

	var resp messagesResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, providers.NewProviderRequestError(a.Name(), req.Model, "failed to decode response", httpResp.StatusCode, err)
	}

	return a.normalizeResponse(&resp), nil
}

// buildMessagesRequest translates the unified request into Messages API form
func (a *Adapter) buildMessagesRequest(req *providers.CompletionRequest) map[string]any {
	system, conversation := splitSystemPrompt(req.Messages)

	out := map[string]any{
		"model":    req.Model,
		"messages": conversation,
	}
	if system != "" {
		out["system"] = system
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	out["max_tokens"] = maxTokens

	if req.Temperature != nil {
		out["temperature"] = *req.Temperature
	}
	if req.TopP != nil {
		out["top_p"] = *req.TopP
	}
	if len(req.Stop) > 0 {
		out["stop_sequences"] = req.Stop
	}
	if req.User != "" {
		out["metadata"] = map[string]any{"user_id": req.User}
	}
	if len(req.Tools) > 0 {
		tools := make([]map[string]any, 0, len(req.Tools))
		for _, tool := range req.Tools {
			tools = append(tools, map[string]any{
				"name":         tool.Function.Name,
				"description":  tool.Function.Description,
				"input_schema": tool.Function.Parameters,
			})
		}
		out["tools"] = tools
	}

	for key, value := range req.Extra {
		if _, ok := recognizedExtras[key]; !ok {
			a.logger.Warn("dropping unrecognized parameter",
				zap.String("provider", a.Name()),
				zap.String("parameter", key))
			continue
		}
		if _, taken := out[key]; !taken {
			out[key] = value
		}
	}

	return out
}

// splitSystemPrompt peels leading system messages off the conversation and
// converts the remainder into Messages API messages.
func splitSystemPrompt(messages []providers.ChatMessage) (string, []map[string]any) {
	var system string
	rest := messages
	for len(rest) > 0 && rest[0].Role == providers.RoleSystem {
		if system != "" {
			system += "\n"
		}
		system += rest[0].Content
		rest = rest[1:]
	}

	conversation := make([]map[string]any, 0, len(rest))
	for _, msg := range rest {
		switch msg.Role {
		case providers.RoleTool:
			conversation = append(conversation, map[string]any{
				"role": "user",
				"content": []map[string]any{{
					"type":        "tool_result",
					"tool_use_id": msg.ToolCallID,
					"content":     msg.Content,
				}},
			})
		case providers.RoleAssistant:
			if len(msg.ToolCalls) > 0 {
				conversation = append(conversation, map[string]any{
					"role":    "assistant",
					"content": assistantBlocks(msg),
				})
				continue
			}
			conversation = append(conversation, map[string]any{
				"role":    "assistant",
				"content": msg.Content,
			})
		default:
			conversation = append(conversation, map[string]any{
				"role":    "user",
				"content": msg.Content,
			})
		}
	}

	return system, conversation
}

func assistantBlocks(msg providers.ChatMessage) []map[string]any {
	var blocks []map[string]any
	if msg.Content != "" {
		blocks = append(blocks, map[string]any{"type": "text", "text": msg.Content})
	}
	for _, tc := range msg.ToolCalls {
		var input map[string]any
		if tc.Function.Arguments != "" {
			_ = json.Unmarshal([]byte(tc.Function.Arguments), &input)
		}
		blocks = append(blocks, map[string]any{
			"type":  "tool_use",
			"id":    tc.ID,
			"name":  tc.Function.Name,
			"input": input,
		})
	}
	return blocks
}

// normalizeResponse translates the Messages API response into the unified
// shape: text blocks concatenate into the message content, tool_use blocks
// become tool calls, and stop_reason goes through the mapping table.
func (a *Adapter) normalizeResponse(resp *messagesResponse) *providers.CompletionResponse {
	msg := providers.ChatMessage{Role: providers.RoleAssistant}
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			msg.Content += block.Text
		case "tool_use":
			args, _ := json.Marshal(block.Input)
			msg.ToolCalls = append(msg.ToolCalls, providers.ToolCall{
				ID:   block.ID,
				Type: "function",
				Function: providers.FunctionCall{
					Name:      block.Name,
					Arguments: string(args),
				},
			})
		}
	}

	reason := providers.FinishReasonUnknown
	if mapped, ok := finishReasons[resp.StopReason]; ok {
		reason = mapped
	}

	out := &providers.CompletionResponse{
		ID:           resp.ID,
		Model:        resp.Model,
		Provider:     a.Name(),
		Message:      msg,
		FinishReason: reason,
	}
	if resp.Usage != nil {
		out.Usage = &providers.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		}
	}
	return out
}

func (a *Adapter) errorFromResponse(model string, statusCode int, body []byte) error {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		return providers.NewProviderRequestError(a.Name(), model,
			fmt.Sprintf("unexpected status %d", statusCode), statusCode, errors.New(string(body)))
	}

	message := errResp.Error.Message
	if errResp.Error.Type != "" {
		message = fmt.Sprintf("%s: %s", errResp.Error.Type, message)
	}
	return providers.NewProviderRequestError(a.Name(), model, message, statusCode, errors.New(errResp.Error.Message))
}

// Messages API wire types

type messagesResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Model      string         `json:"model"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      *usage         `json:"usage"`
}

type contentBlock struct {
	Type  string         `json:"type"`
	Text  string         `json:"text,omitempty"`
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
