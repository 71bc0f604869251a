package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
)

type Client struct {
	client *api.Client
	model  string
}

// Reply is the result of a non-streaming chat call.
type Reply struct {
	Content         string
	PromptEvalCount int
	EvalCount       int
	Raw             json.RawMessage
}

func NewClient(baseURL, model string) (*Client, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.1:latest"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}

	client := api.NewClient(parsedURL, http.DefaultClient)

	return &Client{
		client: client,
		model:  model,
	}, nil
}

// Chat sends one non-streaming chat request. An empty model falls back to the
// client's default model.
func (c *Client) Chat(ctx context.Context, messages []api.Message, model string, temperature float64) (*Reply, error) {
	if model == "" {
		model = c.model
	}

	req := &api.ChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   func(b bool) *bool { return &b }(false),
		Options: map[string]any{
			"temperature": temperature,
		},
	}

	var reply *Reply
	respFunc := func(resp api.ChatResponse) error {
		raw, err := json.Marshal(resp)
		if err != nil {
			raw = nil
		}
		reply = &Reply{
			Content:         resp.Message.Content,
			PromptEvalCount: resp.PromptEvalCount,
			EvalCount:       resp.EvalCount,
			Raw:             raw,
		}
		return nil
	}

	if err := c.client.Chat(ctx, req, respFunc); err != nil {
		return nil, err
	}
	if reply == nil {
		return nil, fmt.Errorf("ollama returned no response for model %s", model)
	}

	return reply, nil
}

func (c *Client) GetModel() string {
	return c.model
}

func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.client.List(ctx)
	return err
}
