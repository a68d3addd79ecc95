package providers

import "strings"

// IdentifierSeparator separates the provider key from the model name in a
// combined identifier such as "openai:gpt-4o".
const IdentifierSeparator = ":"

// ParseIdentifier splits a combined "provider:model" identifier on the first
// separator. The provider segment must be non-empty; the model segment is
// passed through verbatim and never validated here, model validation is the
// vendor's job.
func ParseIdentifier(identifier string) (providerKey, model string, err error) {
	idx := strings.Index(identifier, IdentifierSeparator)
	if idx < 0 {
		return "", "", NewMalformedIdentifierError(identifier, "expected \"provider:model\"")
	}

	providerKey = identifier[:idx]
	if providerKey == "" {
		return "", "", NewMalformedIdentifierError(identifier, "provider segment is empty")
	}

	return providerKey, identifier[idx+len(IdentifierSeparator):], nil
}
