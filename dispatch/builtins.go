package dispatch

import (
	"github.com/upb/llm-dispatch/config"
	"github.com/upb/llm-dispatch/providers"
	"github.com/upb/llm-dispatch/providers/anthropic"
	"github.com/upb/llm-dispatch/providers/fireworks"
	"github.com/upb/llm-dispatch/providers/groq"
	"github.com/upb/llm-dispatch/providers/mistral"
	"github.com/upb/llm-dispatch/providers/openai"
)

// registerBuiltins wires the built-in provider factories. Factories close
// over the config snapshot taken at Client construction; adapters are only
// constructed (and credentials only required) when their key is first
// resolved.
func (c *Client) registerBuiltins() {
	builtins := map[string]providers.Factory{
		"openai": func() (providers.Adapter, error) {
			return openai.New(providerConfig(c.cfg.Providers.OpenAI))
		},
		"anthropic": func() (providers.Adapter, error) {
			return anthropic.New(providerConfig(c.cfg.Providers.Anthropic), c.logger)
		},
		"groq": func() (providers.Adapter, error) {
			return groq.New(providerConfig(c.cfg.Providers.Groq))
		},
		"mistral": func() (providers.Adapter, error) {
			return mistral.New(providerConfig(c.cfg.Providers.Mistral))
		},
		"fireworks": func() (providers.Adapter, error) {
			return fireworks.New(providerConfig(c.cfg.Providers.Fireworks))
		},
	}

	for key, factory := range builtins {
		// Keys are distinct literals; registration cannot collide here
		_ = c.registry.Register(key, factory)
	}
}

func providerConfig(s config.ProviderSettings) providers.ProviderConfig {
	return providers.ProviderConfig{
		APIKey:  s.APIKey,
		BaseURL: s.BaseURL,
		Timeout: s.Timeout,
		OrgID:   s.OrgID,
	}
}
