package provider

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"chatbot/model"
)

// OpenRouterProvider implements model.Provider using OpenAI's official Go SDK
// against an OpenAI-compatible endpoint. It defaults to OpenRouter but is also
// used for self-hosted compatible servers (e.g. a Gorilla deployment).
type OpenRouterProvider struct {
	client  openai.Client
	model   string
	baseURL string
	apiKey  string
}

// NewOpenRouterProvider creates a new OpenRouter provider instance.
//
// Parameters:
//   - baseURL: API base URL (default: "https://openrouter.ai/api/v1")
//   - apiKey: API key; required for OpenRouter itself. Self-hosted
//     endpoints that ignore authentication get the placeholder "EMPTY".
//   - model: Default model
func NewOpenRouterProvider(baseURL, apiKey, model string) (*OpenRouterProvider, error) {
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	if apiKey == "" {
		if baseURL == "https://openrouter.ai/api/v1" {
			return nil, fmt.Errorf("OpenRouter API key is required")
		}
		apiKey = "EMPTY"
	}
	if model == "" {
		model = "meta-llama/llama-3.2-90b-instruct"
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	)

	return &OpenRouterProvider{
		client:  client,
		model:   model,
		baseURL: baseURL,
		apiKey:  apiKey,
	}, nil
}

// Complete implements model.Provider.
func (p *OpenRouterProvider) Complete(ctx context.Context, messages []model.Message, modelName string, temperature float64) (*model.Completion, error) {
	return completeOpenAICompatible(ctx, p.client, messages, orDefault(modelName, p.model), temperature)
}

// Profile implements model.Provider.
func (p *OpenRouterProvider) Profile() model.Profile {
	return ProfileFor(ProviderTypeOpenRouter)
}

// Name implements model.Provider.
func (p *OpenRouterProvider) Name() string {
	return string(ProviderTypeOpenRouter)
}

// GetModel implements model.Provider.
func (p *OpenRouterProvider) GetModel() string {
	return p.model
}

// Ping implements model.Provider by attempting to list models.
func (p *OpenRouterProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return fmt.Errorf("OpenRouter ping failed: %w", err)
	}
	return nil
}
