package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"chatbot/model"
)

// OpenAIProvider implements model.Provider using OpenAI's official Go SDK.
type OpenAIProvider struct {
	client  openai.Client
	model   string
	baseURL string
	apiKey  string
}

// NewOpenAIProvider creates a new OpenAI provider instance.
//
// Parameters:
//   - baseURL: OpenAI API base URL (default: "https://api.openai.com/v1")
//   - apiKey: OpenAI API key (required)
//   - model: Default model (default: "gpt-4")
//
// Returns an error if the API key is missing.
func NewOpenAIProvider(baseURL, apiKey, model string) (*OpenAIProvider, error) {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = "gpt-4"
	}

	// Retries are owned by the exchange controller, not the SDK.
	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	)

	return &OpenAIProvider{
		client:  client,
		model:   model,
		baseURL: baseURL,
		apiKey:  apiKey,
	}, nil
}

// Complete implements model.Provider.
func (p *OpenAIProvider) Complete(ctx context.Context, messages []model.Message, modelName string, temperature float64) (*model.Completion, error) {
	return completeOpenAICompatible(ctx, p.client, messages, orDefault(modelName, p.model), temperature)
}

// Profile implements model.Provider.
func (p *OpenAIProvider) Profile() model.Profile {
	return ProfileFor(ProviderTypeOpenAI)
}

// Name implements model.Provider.
func (p *OpenAIProvider) Name() string {
	return string(ProviderTypeOpenAI)
}

// GetModel implements model.Provider.
func (p *OpenAIProvider) GetModel() string {
	return p.model
}

// Ping implements model.Provider by attempting to list models.
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return fmt.Errorf("OpenAI ping failed: %w", err)
	}
	return nil
}

// completeOpenAICompatible performs one chat completion call against any
// endpoint that speaks the OpenAI wire format.
func completeOpenAICompatible(ctx context.Context, client openai.Client, messages []model.Message, modelName string, temperature float64) (*model.Completion, error) {
	params := openai.ChatCompletionNewParams{
		Messages:    ConvertToOpenAIMessages(messages),
		Model:       openai.ChatModel(modelName),
		Temperature: openai.Float(temperature),
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("completion for model %s returned no choices", modelName)
	}

	completion := &model.Completion{
		Text:        resp.Choices[0].Message.Content,
		TotalTokens: resp.Usage.TotalTokens,
	}
	if raw := resp.RawJSON(); raw != "" && json.Valid([]byte(raw)) {
		completion.Raw = json.RawMessage(raw)
	}

	return completion, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
