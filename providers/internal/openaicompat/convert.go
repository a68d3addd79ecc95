package openaicompat

import (
	"time"

	"github.com/upb/llm-dispatch/providers"
)

// FromRequest translates the unified request into the OpenAI wire shape.
// The conversation order is preserved; roles map one-to-one ("tool" included,
// since the dialect understands tool-role messages natively). Extra is
// attached for the caller to forward or prune per its own policy.
func FromRequest(req *providers.CompletionRequest) *ChatRequest {
	out := &ChatRequest{
		Model:    req.Model,
		Messages: make([]Message, len(req.Messages)),
		Extra:    req.Extra,
	}

	for i, msg := range req.Messages {
		m := Message{
			Role:       string(msg.Role),
			Content:    msg.Content,
			Name:       msg.Name,
			ToolCallID: msg.ToolCallID,
		}
		for _, tc := range msg.ToolCalls {
			m.ToolCalls = append(m.ToolCalls, ToolCall{
				ID:   tc.ID,
				Type: tc.Type,
				Function: FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		out.Messages[i] = m
	}

	if req.MaxTokens > 0 {
		out.MaxTokens = &req.MaxTokens
	}
	out.Temperature = req.Temperature
	out.TopP = req.TopP
	if len(req.Stop) > 0 {
		out.Stop = req.Stop
	}
	for _, tool := range req.Tools {
		out.Tools = append(out.Tools, Tool{
			Type: tool.Type,
			Function: ToolFunction{
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				Parameters:  tool.Function.Parameters,
			},
		})
	}
	if req.User != "" {
		out.User = &req.User
	}

	return out
}

// ToResponse translates the wire response into the unified shape using the
// caller's finish-reason mapping table. A native finish value without a
// mapping entry becomes FinishReasonUnknown so normalization never breaks on
// a vendor's future value.
func ToResponse(providerKey string, resp *ChatResponse, finishReasons map[string]providers.FinishReason) *providers.CompletionResponse {
	out := &providers.CompletionResponse{
		ID:           resp.ID,
		Model:        resp.Model,
		Provider:     providerKey,
		FinishReason: providers.FinishReasonUnknown,
	}

	if resp.Created > 0 {
		out.Created = time.Unix(resp.Created, 0).UTC()
	}
	if resp.Usage != nil {
		out.Usage = &providers.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	if len(resp.Choices) == 0 {
		out.Message = providers.ChatMessage{Role: providers.RoleAssistant}
		return out
	}

	choice := resp.Choices[0]
	msg := providers.ChatMessage{
		Role:    providers.RoleAssistant,
		Content: choice.Message.Content,
	}
	for _, tc := range choice.Message.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, providers.ToolCall{
			ID:   tc.ID,
			Type: tc.Type,
			Function: providers.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	out.Message = msg

	if reason, ok := finishReasons[choice.FinishReason]; ok {
		out.FinishReason = reason
	}
	return out
}
