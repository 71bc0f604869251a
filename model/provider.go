package model

import (
	"context"
	"encoding/json"
)

// Provider abstracts the completion endpoint of an LLM backend
// (OpenAI, OpenRouter, Anthropic, Ollama).
//
// This interface is defined in the model package (not provider package) to avoid
// import cycles: provider implementations import model, and the exchange engine
// can use the Provider interface without importing the provider package.
//
// A Provider performs exactly one network call per Complete. It never retries,
// never logs request bodies and never mutates the messages it is given; the
// error it returns carries whatever the remote endpoint or SDK reported.
type Provider interface {
	// Complete sends messages and returns the generated reply.
	Complete(ctx context.Context, messages []Message, model string, temperature float64) (*Completion, error)

	// Profile returns the static capability profile of the backend.
	Profile() Profile

	// Name returns the provider ID ("openai", "anthropic", ...).
	Name() string

	// GetModel returns the default model configured for this provider.
	GetModel() string

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}

// Completion is the raw outcome of a successful Complete call.
type Completion struct {
	Text string

	// TotalTokens is prompt + completion tokens as reported by the backend.
	// Zero when the backend does not meter tokens.
	TotalTokens int64

	// Raw is the backend response body, kept for the response artifact.
	Raw json.RawMessage
}
