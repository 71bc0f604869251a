package testutil

import (
	"context"
	"sync"

	"chatbot/model"
)

// CompleteCall records the arguments of one Complete call.
type CompleteCall struct {
	Messages    []model.Message
	Model       string
	Temperature float64
}

// MockProvider implements model.Provider for testing
type MockProvider struct {
	// Configurable responses
	CompleteFunc func(ctx context.Context, messages []model.Message, modelName string, temperature float64) (*model.Completion, error)
	PingFunc     func(ctx context.Context) error

	// State
	currentModel string
	profile      model.Profile

	mu    sync.Mutex
	calls []CompleteCall
}

// NewMockProvider creates a token-metered mock provider with default implementations
func NewMockProvider(modelName string) *MockProvider {
	mock := &MockProvider{
		currentModel: modelName,
		profile:      model.TokenMetered,
	}
	mock.CompleteFunc = mock.defaultComplete
	mock.PingFunc = mock.defaultPing
	return mock
}

// WithProfile sets the capability profile reported by the mock.
func (m *MockProvider) WithProfile(p model.Profile) *MockProvider {
	m.profile = p
	return m
}

func (m *MockProvider) defaultComplete(ctx context.Context, messages []model.Message, modelName string, temperature float64) (*model.Completion, error) {
	return &model.Completion{Text: "Mock response", TotalTokens: 42}, nil
}

func (m *MockProvider) defaultPing(ctx context.Context) error {
	return nil
}

func (m *MockProvider) Complete(ctx context.Context, messages []model.Message, modelName string, temperature float64) (*model.Completion, error) {
	m.mu.Lock()
	m.calls = append(m.calls, CompleteCall{
		Messages:    model.CloneMessages(messages),
		Model:       modelName,
		Temperature: temperature,
	})
	m.mu.Unlock()

	return m.CompleteFunc(ctx, messages, modelName, temperature)
}

// Calls returns every Complete call made so far.
func (m *MockProvider) Calls() []CompleteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CompleteCall(nil), m.calls...)
}

func (m *MockProvider) Profile() model.Profile {
	return m.profile
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) GetModel() string {
	return m.currentModel
}

func (m *MockProvider) Ping(ctx context.Context) error {
	return m.PingFunc(ctx)
}

// Script returns a CompleteFunc that answers with the given errors in order
// and then with the given completion.
func Script(final *model.Completion, errs ...error) func(context.Context, []model.Message, string, float64) (*model.Completion, error) {
	var mu sync.Mutex
	i := 0
	return func(ctx context.Context, messages []model.Message, modelName string, temperature float64) (*model.Completion, error) {
		mu.Lock()
		defer mu.Unlock()
		if i < len(errs) {
			err := errs[i]
			i++
			return nil, err
		}
		return final, nil
	}
}
