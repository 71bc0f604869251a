package provider

import (
	"context"
	"fmt"

	"chatbot/model"
	"chatbot/ollama"
)

// OllamaProvider wraps ollama.Client to implement model.Provider.
//
// This provider handles the type conversions between the chatbot's
// provider-agnostic messages and Ollama's api.Message.
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates a new Ollama provider instance.
//
// Parameters:
//   - baseURL: The Ollama server URL (e.g., "http://localhost:11434").
//     If empty, defaults to "http://localhost:11434".
//   - model: The default model name (e.g., "llama3.1:latest").
//     If empty, defaults to "llama3.1:latest".
//
// Returns an error if the baseURL is invalid.
func NewOllamaProvider(baseURL, model string) (*OllamaProvider, error) {
	client, err := ollama.NewClient(baseURL, model)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	return &OllamaProvider{
		client: client,
	}, nil
}

// Complete implements model.Provider.
//
// Token usage is prompt_eval_count + eval_count as reported by the server.
func (p *OllamaProvider) Complete(ctx context.Context, messages []model.Message, modelName string, temperature float64) (*model.Completion, error) {
	reply, err := p.client.Chat(ctx, ConvertToOllamaMessages(messages), modelName, temperature)
	if err != nil {
		return nil, err
	}

	return &model.Completion{
		Text:        reply.Content,
		TotalTokens: int64(reply.PromptEvalCount + reply.EvalCount),
		Raw:         reply.Raw,
	}, nil
}

// Profile implements model.Provider.
func (p *OllamaProvider) Profile() model.Profile {
	return ProfileFor(ProviderTypeOllama)
}

// Name implements model.Provider.
func (p *OllamaProvider) Name() string {
	return string(ProviderTypeOllama)
}

// GetModel implements model.Provider (direct passthrough).
func (p *OllamaProvider) GetModel() string {
	return p.client.GetModel()
}

// Ping implements model.Provider (direct passthrough).
//
// Checks if the Ollama server is reachable by making a lightweight API call.
func (p *OllamaProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}
