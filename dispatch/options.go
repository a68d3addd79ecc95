package dispatch

import "github.com/upb/llm-dispatch/providers"

// RequestOption sets an optional generation parameter on a completion
// request built by Complete.
type RequestOption func(*providers.CompletionRequest)

// WithMaxTokens limits the response length
func WithMaxTokens(n int) RequestOption {
	return func(req *providers.CompletionRequest) {
		req.MaxTokens = n
	}
}

// WithTemperature sets the sampling temperature
func WithTemperature(t float64) RequestOption {
	return func(req *providers.CompletionRequest) {
		req.Temperature = &t
	}
}

// WithTopP sets the nucleus sampling parameter
func WithTopP(p float64) RequestOption {
	return func(req *providers.CompletionRequest) {
		req.TopP = &p
	}
}

// WithStop sets stop sequences
func WithStop(stop ...string) RequestOption {
	return func(req *providers.CompletionRequest) {
		req.Stop = stop
	}
}

// WithTools declares the tools the model may call
func WithTools(tools ...providers.Tool) RequestOption {
	return func(req *providers.CompletionRequest) {
		req.Tools = tools
	}
}

// WithUser sets the end-user identifier for abuse monitoring
func WithUser(user string) RequestOption {
	return func(req *providers.CompletionRequest) {
		req.User = user
	}
}

// WithExtra sets a provider-specific parameter by name. Whether the adapter
// forwards or drops unrecognized names is its documented per-adapter policy.
func WithExtra(key string, value any) RequestOption {
	return func(req *providers.CompletionRequest) {
		if req.Extra == nil {
			req.Extra = make(map[string]any)
		}
		req.Extra[key] = value
	}
}

// WithExtras merges provider-specific parameters into the request
func WithExtras(extra map[string]any) RequestOption {
	return func(req *providers.CompletionRequest) {
		if req.Extra == nil {
			req.Extra = make(map[string]any, len(extra))
		}
		for k, v := range extra {
			req.Extra[k] = v
		}
	}
}
