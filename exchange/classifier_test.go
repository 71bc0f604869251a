package exchange

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
)

// The SDK error types format their request and response in Error(), so test
// values need both.
func newOpenAIError(status int, code string) *openai.Error {
	req, _ := http.NewRequest(http.MethodPost, "https://api.openai.com/v1/chat/completions", nil)
	return &openai.Error{
		Code:       code,
		StatusCode: status,
		Request:    req,
		Response:   &http.Response{StatusCode: status},
	}
}

func newAnthropicError(status int) *anthropic.Error {
	req, _ := http.NewRequest(http.MethodPost, "https://api.anthropic.com/v1/messages", nil)
	return &anthropic.Error{
		StatusCode: status,
		Request:    req,
		Response:   &http.Response{StatusCode: status},
	}
}

func TestPhraseClassifier(t *testing.T) {
	c := NewPhraseClassifier()

	tests := []struct {
		name string
		err  error
		want Outcome
	}{
		{"maximum context length", errors.New("This model's maximum context length is 4097 tokens"), ContextWindowExceeded},
		{"upper case", errors.New("MAXIMUM CONTEXT LENGTH exceeded"), ContextWindowExceeded},
		{"error code in body", errors.New(`400 Bad Request {"code":"context_length_exceeded"}`), ContextWindowExceeded},
		{"anthropic wording", errors.New("prompt is too long: 210000 tokens > 200000 maximum"), ContextWindowExceeded},
		{"wrapped", fmt.Errorf("attempt 2: %w", errors.New("maximum context length")), ContextWindowExceeded},
		{"rate limit", errors.New("rate limit exceeded"), Transient},
		{"timeout", errors.New("context deadline exceeded"), Transient},
		{"nil", nil, Transient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.err, nil))
		})
	}
}

func TestPhraseClassifierCustomPhrases(t *testing.T) {
	c := NewPhraseClassifier("Input Too Large")

	assert.Equal(t, ContextWindowExceeded, c.Classify(errors.New("input too large for model"), nil))
	assert.Equal(t, Transient, c.Classify(errors.New("maximum context length"), nil))
}

func TestAPIErrorClassifier(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Outcome
	}{
		{
			name: "openai context_length_exceeded",
			err:  newOpenAIError(http.StatusBadRequest, "context_length_exceeded"),
			want: ContextWindowExceeded,
		},
		{
			name: "openai rate limit",
			err:  newOpenAIError(http.StatusTooManyRequests, "rate_limit_exceeded"),
			want: Transient,
		},
		{
			name: "wrapped openai error",
			err:  fmt.Errorf("request failed: %w", newOpenAIError(http.StatusBadRequest, "context_length_exceeded")),
			want: ContextWindowExceeded,
		},
		{
			name: "plain error",
			err:  errors.New("connection reset by peer"),
			want: Transient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, APIErrorClassifier{}.Classify(tt.err, nil))
		})
	}
}

func TestAPIErrorClassifierAnthropicServerError(t *testing.T) {
	err := newAnthropicError(http.StatusServiceUnavailable)
	assert.Equal(t, Transient, APIErrorClassifier{}.Classify(err, nil))
}

func TestChainClassifier(t *testing.T) {
	always := ClassifierFunc(func(error, *Request) Outcome { return ContextWindowExceeded })
	never := ClassifierFunc(func(error, *Request) Outcome { return Transient })

	assert.Equal(t, ContextWindowExceeded, ChainClassifier{never, always}.Classify(errors.New("x"), nil))
	assert.Equal(t, Transient, ChainClassifier{never, never}.Classify(errors.New("x"), nil))
	assert.Equal(t, Transient, ChainClassifier{}.Classify(errors.New("x"), nil))
}

func TestDefaultClassifier(t *testing.T) {
	c := DefaultClassifier()

	assert.Equal(t, ContextWindowExceeded, c.Classify(errors.New("maximum context length"), nil))
	assert.Equal(t, ContextWindowExceeded, c.Classify(newOpenAIError(http.StatusBadRequest, "context_length_exceeded"), nil))
	assert.Equal(t, Transient, c.Classify(errors.New("rate limit exceeded"), nil))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "transient", Transient.String())
	assert.Equal(t, "context_window_exceeded", ContextWindowExceeded.String())
}
