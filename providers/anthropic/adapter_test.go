package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/upb/llm-dispatch/providers"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	adapter, err := New(providers.ProviderConfig{APIKey: "test-key"}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if adapter.Name() != "anthropic" {
		t.Errorf("Name() = %s, want anthropic", adapter.Name())
	}

	if adapter.baseURL != defaultBaseURL {
		t.Errorf("baseURL = %s, want %s", adapter.baseURL, defaultBaseURL)
	}
}

func TestNew_MissingAPIKey(t *testing.T) {
	_, err := New(providers.ProviderConfig{}, nil)

	if err == nil {
		t.Fatal("Expected error for missing API key")
	}
}

func TestBuildMessagesRequest_SystemExtraction(t *testing.T) {
	adapter, _ := New(providers.ProviderConfig{APIKey: "test-key"}, nil)

	req := &providers.CompletionRequest{
		Model: "claude-sonnet-4-0",
		Messages: []providers.ChatMessage{
			{Role: providers.RoleSystem, Content: "You are terse."},
			{Role: providers.RoleSystem, Content: "Answer in French."},
			{Role: providers.RoleUser, Content: "Hello"},
			{Role: providers.RoleAssistant, Content: "Bonjour"},
			{Role: providers.RoleUser, Content: "Merci"},
		},
	}

	body := adapter.buildMessagesRequest(req)

	if body["system"] != "You are terse.\nAnswer in French." {
		t.Errorf("system = %v, leading system messages must merge", body["system"])
	}

	conversation := body["messages"].([]map[string]any)
	if len(conversation) != 3 {
		t.Fatalf("len(messages) = %d, want 3", len(conversation))
	}

	if conversation[0]["role"] != "user" || conversation[0]["content"] != "Hello" {
		t.Errorf("messages[0] = %v", conversation[0])
	}

	if conversation[1]["role"] != "assistant" {
		t.Errorf("messages[1].role = %v, want assistant", conversation[1]["role"])
	}
}

func TestBuildMessagesRequest_DefaultMaxTokens(t *testing.T) {
	adapter, _ := New(providers.ProviderConfig{APIKey: "test-key"}, nil)

	body := adapter.buildMessagesRequest(&providers.CompletionRequest{
		Model:    "claude-sonnet-4-0",
		Messages: []providers.ChatMessage{{Role: providers.RoleUser, Content: "hi"}},
	})

	if body["max_tokens"] != defaultMaxTokens {
		t.Errorf("max_tokens = %v, want default %d", body["max_tokens"], defaultMaxTokens)
	}

	body = adapter.buildMessagesRequest(&providers.CompletionRequest{
		Model:     "claude-sonnet-4-0",
		Messages:  []providers.ChatMessage{{Role: providers.RoleUser, Content: "hi"}},
		MaxTokens: 256,
	})

	if body["max_tokens"] != 256 {
		t.Errorf("max_tokens = %v, want 256", body["max_tokens"])
	}
}

func TestBuildMessagesRequest_ToolMessages(t *testing.T) {
	adapter, _ := New(providers.ProviderConfig{APIKey: "test-key"}, nil)

	req := &providers.CompletionRequest{
		Model: "claude-sonnet-4-0",
		Messages: []providers.ChatMessage{
			{Role: providers.RoleUser, Content: "What is the weather?"},
			{Role: providers.RoleAssistant, ToolCalls: []providers.ToolCall{
				{ID: "toolu_1", Type: "function", Function: providers.FunctionCall{Name: "get_weather", Arguments: `{"city":"Bogota"}`}},
			}},
			{Role: providers.RoleTool, Content: "22C, sunny", ToolCallID: "toolu_1"},
		},
	}

	body := adapter.buildMessagesRequest(req)
	conversation := body["messages"].([]map[string]any)

	if len(conversation) != 3 {
		t.Fatalf("len(messages) = %d, want 3", len(conversation))
	}

	// Assistant tool call becomes a tool_use block
	blocks := conversation[1]["content"].([]map[string]any)
	if blocks[0]["type"] != "tool_use" || blocks[0]["name"] != "get_weather" {
		t.Errorf("assistant blocks = %v", blocks)
	}

	input := blocks[0]["input"].(map[string]any)
	if input["city"] != "Bogota" {
		t.Errorf("tool input = %v", input)
	}

	// Tool result becomes a user message with a tool_result block
	if conversation[2]["role"] != "user" {
		t.Errorf("tool message role = %v, want user", conversation[2]["role"])
	}

	result := conversation[2]["content"].([]map[string]any)[0]
	if result["type"] != "tool_result" || result["tool_use_id"] != "toolu_1" {
		t.Errorf("tool_result block = %v", result)
	}
}

func TestBuildMessagesRequest_ExtraPolicy(t *testing.T) {
	adapter, _ := New(providers.ProviderConfig{APIKey: "test-key"}, zap.NewNop())

	body := adapter.buildMessagesRequest(&providers.CompletionRequest{
		Model:    "claude-sonnet-4-0",
		Messages: []providers.ChatMessage{{Role: providers.RoleUser, Content: "hi"}},
		Extra: map[string]any{
			"top_k":             40,
			"frequency_penalty": 0.5,
		},
	})

	// Recognized extras forward
	if body["top_k"] != 40 {
		t.Errorf("top_k = %v, want 40", body["top_k"])
	}

	// Unrecognized extras drop
	if _, present := body["frequency_penalty"]; present {
		t.Error("frequency_penalty should be dropped, the API rejects unknown fields")
	}
}

func TestCompleteChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected path /v1/messages, got %s", r.URL.Path)
		}

		if r.Header.Get("x-api-key") != "test-key" {
			t.Error("x-api-key header missing")
		}

		if r.Header.Get("anthropic-version") != apiVersion {
			t.Errorf("anthropic-version = %s, want %s", r.Header.Get("anthropic-version"), apiVersion)
		}

		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		json.Unmarshal(body, &req)

		if req["system"] != "Be brief." {
			t.Errorf("system = %v, want Be brief.", req["system"])
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messagesResponse{
			ID:    "msg_test123",
			Type:  "message",
			Model: "claude-sonnet-4-0",
			Content: []contentBlock{
				{Type: "text", Text: "Hello"},
				{Type: "text", Text: " there"},
			},
			StopReason: "end_turn",
			Usage:      &usage{InputTokens: 12, OutputTokens: 4},
		})
	}))
	defer server.Close()

	adapter, err := New(providers.ProviderConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	resp, err := adapter.CompleteChat(context.Background(), &providers.CompletionRequest{
		Model: "claude-sonnet-4-0",
		Messages: []providers.ChatMessage{
			{Role: providers.RoleSystem, Content: "Be brief."},
			{Role: providers.RoleUser, Content: "Hi"},
		},
	})

	if err != nil {
		t.Fatalf("CompleteChat() error = %v", err)
	}

	if resp.Provider != "anthropic" {
		t.Errorf("Provider = %s, want anthropic", resp.Provider)
	}

	// Text blocks concatenate
	if resp.Message.Content != "Hello there" {
		t.Errorf("Content = %s, want Hello there", resp.Message.Content)
	}

	if resp.FinishReason != providers.FinishReasonStop {
		t.Errorf("FinishReason = %s, want stop", resp.FinishReason)
	}

	if resp.Usage == nil || resp.Usage.TotalTokens != 16 {
		t.Errorf("Usage = %+v, want total 16", resp.Usage)
	}
}

func TestCompleteChat_ToolUse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messagesResponse{
			ID:    "msg_tool",
			Model: "claude-sonnet-4-0",
			Content: []contentBlock{
				{Type: "tool_use", ID: "toolu_1", Name: "get_weather", Input: map[string]any{"city": "Bogota"}},
			},
			StopReason: "tool_use",
		})
	}))
	defer server.Close()

	adapter, _ := New(providers.ProviderConfig{APIKey: "test-key", BaseURL: server.URL}, nil)

	resp, err := adapter.CompleteChat(context.Background(), &providers.CompletionRequest{
		Model:    "claude-sonnet-4-0",
		Messages: []providers.ChatMessage{{Role: providers.RoleUser, Content: "weather?"}},
	})

	if err != nil {
		t.Fatalf("CompleteChat() error = %v", err)
	}

	if resp.FinishReason != providers.FinishReasonToolCall {
		t.Errorf("FinishReason = %s, want tool_call", resp.FinishReason)
	}

	if len(resp.Message.ToolCalls) != 1 {
		t.Fatalf("len(ToolCalls) = %d, want 1", len(resp.Message.ToolCalls))
	}

	tc := resp.Message.ToolCalls[0]
	if tc.ID != "toolu_1" || tc.Function.Name != "get_weather" {
		t.Errorf("ToolCall = %+v", tc)
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil || args["city"] != "Bogota" {
		t.Errorf("Arguments = %s", tc.Function.Arguments)
	}
}

func TestCompleteChat_UnknownStopReason(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messagesResponse{
			Content:    []contentBlock{{Type: "text", Text: "x"}},
			StopReason: "pause_turn",
		})
	}))
	defer server.Close()

	adapter, _ := New(providers.ProviderConfig{APIKey: "test-key", BaseURL: server.URL}, nil)

	resp, err := adapter.CompleteChat(context.Background(), &providers.CompletionRequest{
		Model:    "claude-sonnet-4-0",
		Messages: []providers.ChatMessage{{Role: providers.RoleUser, Content: "hi"}},
	})

	if err != nil {
		t.Fatalf("CompleteChat() error = %v", err)
	}

	if resp.FinishReason != providers.FinishReasonUnknown {
		t.Errorf("FinishReason = %s, want unknown fallback", resp.FinishReason)
	}
}

func TestCompleteChat_VendorError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"type": "error", "error": {"type": "invalid_request_error", "message": "max_tokens required"}}`))
	}))
	defer server.Close()

	adapter, _ := New(providers.ProviderConfig{APIKey: "test-key", BaseURL: server.URL}, nil)

	_, err := adapter.CompleteChat(context.Background(), &providers.CompletionRequest{
		Model:    "claude-sonnet-4-0",
		Messages: []providers.ChatMessage{{Role: providers.RoleUser, Content: "hi"}},
	})

	if err == nil {
		t.Fatal("Expected error but got none")
	}

	dispatchErr, ok := err.(*providers.Error)
	if !ok {
		t.Fatalf("Expected *providers.Error, got %T", err)
	}

	if dispatchErr.Kind != providers.ErrorKindProviderRequest {
		t.Errorf("Kind = %s, want provider_request", dispatchErr.Kind)
	}

	if dispatchErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", dispatchErr.StatusCode)
	}
}
