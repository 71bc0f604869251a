package exchange

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go/v3"
)

// Outcome is the verdict of a Classifier.
type Outcome int

const (
	// Transient failures are retried after a backoff delay.
	Transient Outcome = iota

	// ContextWindowExceeded failures are retried immediately with the oldest
	// turn removed from the request.
	ContextWindowExceeded
)

func (o Outcome) String() string {
	switch o {
	case ContextWindowExceeded:
		return "context_window_exceeded"
	default:
		return "transient"
	}
}

// Classifier decides how the controller reacts to a failed attempt.
type Classifier interface {
	Classify(err error, req *Request) Outcome
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(err error, req *Request) Outcome

func (f ClassifierFunc) Classify(err error, req *Request) Outcome {
	return f(err, req)
}

// DefaultContextPhrases are the error texts known to mean the request did not
// fit the model's context window.
var DefaultContextPhrases = []string{
	"maximum context length",
	"context_length_exceeded",
	"prompt is too long",
}

// PhraseClassifier matches the error text against known phrases,
// case-insensitively. This is a heuristic over free-form provider messages,
// not a structural error code; prefer APIErrorClassifier where the SDK
// exposes one.
type PhraseClassifier struct {
	phrases []string
}

// NewPhraseClassifier creates a PhraseClassifier. Without phrases it uses
// DefaultContextPhrases.
func NewPhraseClassifier(phrases ...string) *PhraseClassifier {
	if len(phrases) == 0 {
		phrases = DefaultContextPhrases
	}
	lowered := make([]string, len(phrases))
	for i, p := range phrases {
		lowered[i] = strings.ToLower(p)
	}
	return &PhraseClassifier{phrases: lowered}
}

func (c *PhraseClassifier) Classify(err error, _ *Request) Outcome {
	if err == nil {
		return Transient
	}
	text := strings.ToLower(err.Error())
	for _, phrase := range c.phrases {
		if strings.Contains(text, phrase) {
			return ContextWindowExceeded
		}
	}
	return Transient
}

// APIErrorClassifier inspects the typed errors of the OpenAI and Anthropic
// SDKs.
type APIErrorClassifier struct{}

func (APIErrorClassifier) Classify(err error, _ *Request) Outcome {
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) && openaiErr.Code == "context_length_exceeded" {
		return ContextWindowExceeded
	}

	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) && anthropicErr.StatusCode == http.StatusBadRequest &&
		strings.Contains(strings.ToLower(anthropicErr.Error()), "too long") {
		return ContextWindowExceeded
	}

	return Transient
}

// ChainClassifier asks each classifier in turn; the first non-transient
// verdict wins.
type ChainClassifier []Classifier

func (c ChainClassifier) Classify(err error, req *Request) Outcome {
	for _, classifier := range c {
		if outcome := classifier.Classify(err, req); outcome != Transient {
			return outcome
		}
	}
	return Transient
}

// DefaultClassifier checks SDK error codes first, then known phrases.
func DefaultClassifier() Classifier {
	return ChainClassifier{
		APIErrorClassifier{},
		NewPhraseClassifier(),
	}
}
