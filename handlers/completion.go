package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/upb/llm-dispatch/audit"
	"github.com/upb/llm-dispatch/dispatch"
	"github.com/upb/llm-dispatch/providers"
	"github.com/upb/llm-dispatch/utils"
	"go.uber.org/zap"
)

// Dispatcher is the slice of the dispatch client the handler needs
type Dispatcher interface {
	Complete(ctx context.Context, identifier string, messages []providers.ChatMessage, opts ...dispatch.RequestOption) (*providers.CompletionResponse, error)
}

// ChatCompletionRequest is the gateway request body. Model carries the
// combined "provider:model" identifier.
type ChatCompletionRequest struct {
	Model       string         `json:"model" validate:"required"`
	Messages    []ChatMessage  `json:"messages" validate:"required,min=1,dive"`
	Temperature *float64       `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	MaxTokens   int            `json:"max_tokens,omitempty" validate:"omitempty,gt=0"`
	TopP        *float64       `json:"top_p,omitempty" validate:"omitempty,gte=0,lte=1"`
	Stop        []string       `json:"stop,omitempty"`
	User        string         `json:"user,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// ChatMessage is a single message in the gateway request body
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant tool"`
	Content string `json:"content" validate:"required"`
}

// CompletionHandler handles chat completion HTTP requests
type CompletionHandler struct {
	dispatcher Dispatcher
	recorder   audit.Recorder
	logger     *zap.Logger
}

// NewCompletionHandler creates a CompletionHandler
func NewCompletionHandler(dispatcher Dispatcher, recorder audit.Recorder, logger *zap.Logger) *CompletionHandler {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &CompletionHandler{
		dispatcher: dispatcher,
		recorder:   recorder,
		logger:     logger,
	}
}

// HandleChatCompletion handles POST /v1/chat/completions
func (h *CompletionHandler) HandleChatCompletion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var chatReq ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&chatReq); err != nil {
		h.logger.Warn("failed to parse request body", zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&chatReq); err != nil {
		h.logger.Warn("request validation failed", zap.Error(err))
		var verr *utils.ValidationError
		if errors.As(err, &verr) {
			details := make(map[string]interface{}, len(verr.Fields))
			for field, msg := range verr.Fields {
				details[field] = msg
			}
			_ = utils.WriteBadRequest(w, verr.Message, details)
			return
		}
		_ = utils.WriteBadRequest(w, "Invalid request", nil)
		return
	}

	messages := make([]providers.ChatMessage, len(chatReq.Messages))
	for i, msg := range chatReq.Messages {
		messages[i] = providers.ChatMessage{
			Role:    providers.Role(msg.Role),
			Content: msg.Content,
		}
	}

	var opts []dispatch.RequestOption
	if chatReq.MaxTokens > 0 {
		opts = append(opts, dispatch.WithMaxTokens(chatReq.MaxTokens))
	}
	if chatReq.Temperature != nil {
		opts = append(opts, dispatch.WithTemperature(*chatReq.Temperature))
	}
	if chatReq.TopP != nil {
		opts = append(opts, dispatch.WithTopP(*chatReq.TopP))
	}
	if len(chatReq.Stop) > 0 {
		opts = append(opts, dispatch.WithStop(chatReq.Stop...))
	}
	if chatReq.User != "" {
		opts = append(opts, dispatch.WithUser(chatReq.User))
	}
	if len(chatReq.Extra) > 0 {
		opts = append(opts, dispatch.WithExtras(chatReq.Extra))
	}

	start := time.Now()
	resp, err := h.dispatcher.Complete(ctx, chatReq.Model, messages, opts...)
	latency := time.Since(start)

	h.record(ctx, chatReq.Model, resp, err, latency)

	if err != nil {
		h.writeDispatchError(w, err)
		return
	}

	_ = utils.WriteJSON(w, http.StatusOK, resp)
}

// record persists an audit entry; failures are logged, never surfaced
func (h *CompletionHandler) record(ctx context.Context, identifier string, resp *providers.CompletionResponse, dispatchErr error, latency time.Duration) {
	entry := &audit.Entry{
		ID:        uuid.New(),
		LatencyMs: latency.Milliseconds(),
		CreatedAt: time.Now().UTC(),
	}

	if providerKey, model, err := providers.ParseIdentifier(identifier); err == nil {
		entry.Provider = providerKey
		entry.Model = model
	} else {
		entry.Model = identifier
	}

	if dispatchErr != nil {
		entry.Status = "error"
		entry.ErrorMessage = dispatchErr.Error()
	} else {
		entry.Status = "ok"
		entry.FinishReason = string(resp.FinishReason)
	}

	if err := h.recorder.Record(ctx, entry); err != nil {
		h.logger.Warn("failed to record completion", zap.Error(err))
	}
}

// writeDispatchError maps the dispatch error taxonomy to HTTP statuses
func (h *CompletionHandler) writeDispatchError(w http.ResponseWriter, err error) {
	var derr *providers.Error
	if !errors.As(err, &derr) {
		_ = utils.WriteInternalError(w, err.Error())
		return
	}

	switch derr.Kind {
	case providers.ErrorKindMalformedIdentifier, providers.ErrorKindUnknownProvider:
		_ = utils.WriteBadRequest(w, derr.Message, nil)
	case providers.ErrorKindAdapterInit:
		_ = utils.WriteInternalError(w, derr.Message)
	case providers.ErrorKindProviderRequest:
		_ = utils.WriteBadGateway(w, derr.Message)
	default:
		_ = utils.WriteInternalError(w, derr.Message)
	}
}
