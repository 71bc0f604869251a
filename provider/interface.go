// Package provider implements the transport adapters for the supported LLM
// backends.
//
// Every backend satisfies model.Provider: one Complete call translates an
// ordered message list, a model name and a temperature into a single network
// request and returns the generated text plus a usage signal. Providers do not
// retry, log or reinterpret failures; that is the job of the exchange package.
//
// # Backends
//
//   - OpenAIProvider: OpenAI chat completions (openai-go)
//   - OpenRouterProvider: any OpenAI-compatible endpoint, OpenRouter by default
//   - AnthropicProvider: Anthropic messages API (anthropic-sdk-go)
//   - OllamaProvider: local Ollama server
//
// # Usage
//
//	p, err := provider.NewProvider(provider.Config{
//	    Type:   provider.ProviderTypeOpenAI,
//	    Model:  "gpt-4",
//	    APIKey: key,
//	})
//	if err != nil {
//	    // handle error
//	}
//	completion, err := p.Complete(ctx, messages, "gpt-4", 0.1)
package provider

import "chatbot/model"

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOllama     ProviderType = "ollama"
	ProviderTypeOpenRouter ProviderType = "openrouter"
	ProviderTypeOpenAI     ProviderType = "openai"
	ProviderTypeAnthropic  ProviderType = "anthropic"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // unused for Ollama
}

// ProfileFor returns the capability profile of a provider type.
//
// Anthropic is message-count driven; its budget is the number of stored turns.
func ProfileFor(t ProviderType) model.Profile {
	switch t {
	case ProviderTypeAnthropic:
		return model.MessageCounted
	default:
		return model.TokenMetered
	}
}
