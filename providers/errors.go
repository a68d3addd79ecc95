package providers

import (
	"fmt"
)

// ErrorKind represents the category of a dispatch error
type ErrorKind string

const (
	// ErrorKindMalformedIdentifier means the "provider:model" string did not parse
	ErrorKindMalformedIdentifier ErrorKind = "malformed_identifier"

	// ErrorKindUnknownProvider means no factory is registered for the provider key
	ErrorKindUnknownProvider ErrorKind = "unknown_provider"

	// ErrorKindAdapterInit means adapter construction failed (missing
	// credential, invalid config); the key stays failed until an explicit reset
	ErrorKindAdapterInit ErrorKind = "adapter_init"

	// ErrorKindProviderRequest means the vendor call itself failed (auth,
	// quota, network, invalid request content)
	ErrorKindProviderRequest ErrorKind = "provider_request"
)

// Error is a structured dispatch error carrying the failure category and the
// provider/model context the caller needs to decide what to do next.
type Error struct {
	Kind     ErrorKind
	Provider string
	Model    string
	Message  string

	// StatusCode is the vendor HTTP status, when applicable
	StatusCode int

	// Err is the underlying cause
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Provider != "" {
		msg = fmt.Sprintf("%s: %s", e.Provider, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

// Unwrap implements errors.Unwrap
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same kind, so callers can branch on the failure
// category with errors.Is against the exported sentinel values below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinel values for errors.Is checks. Matching is by kind only.
var (
	ErrMalformedIdentifier = &Error{Kind: ErrorKindMalformedIdentifier, Message: "malformed model identifier"}
	ErrUnknownProvider     = &Error{Kind: ErrorKindUnknownProvider, Message: "unknown provider"}
	ErrAdapterInit         = &Error{Kind: ErrorKindAdapterInit, Message: "adapter construction failed"}
	ErrProviderRequest     = &Error{Kind: ErrorKindProviderRequest, Message: "provider request failed"}
)

// NewMalformedIdentifierError creates an error for an unparseable identifier
func NewMalformedIdentifierError(identifier, reason string) *Error {
	return &Error{
		Kind:    ErrorKindMalformedIdentifier,
		Message: fmt.Sprintf("invalid model identifier %q: %s", identifier, reason),
	}
}

// NewUnknownProviderError creates an error for an unregistered provider key
func NewUnknownProviderError(providerKey string) *Error {
	return &Error{
		Kind:     ErrorKindUnknownProvider,
		Provider: providerKey,
		Message:  fmt.Sprintf("no adapter registered for provider %q", providerKey),
	}
}

// NewAdapterInitError wraps an adapter construction failure
func NewAdapterInitError(providerKey string, cause error) *Error {
	return &Error{
		Kind:     ErrorKindAdapterInit,
		Provider: providerKey,
		Message:  "adapter construction failed",
		Err:      cause,
	}
}

// NewProviderRequestError wraps a vendor-side failure with request context
func NewProviderRequestError(providerKey, model, message string, statusCode int, cause error) *Error {
	return &Error{
		Kind:       ErrorKindProviderRequest,
		Provider:   providerKey,
		Model:      model,
		Message:    message,
		StatusCode: statusCode,
		Err:        cause,
	}
}
