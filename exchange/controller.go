// Package exchange runs one conversation exchange against a provider: it
// builds the request, dispatches it, classifies failures, trims or backs off,
// and records every attempt through the artifact logger.
//
// An exchange moves through
//
//	BUILDING → DISPATCHING → (SUCCESS | CLASSIFYING_FAILURE)
//	         → [TRIMMING → DISPATCHING]* → (SUCCESS | EXHAUSTED)
//
// Context-window failures drop the oldest turn of the request and retry at
// once. Any other failure waits BaseDelay*2^n, n being the number of earlier
// transient failures in the same exchange. Both kinds use up attempts.
// Exhaustion terminates the process with status 1.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chatbot/model"
	"chatbot/storage"
)

const (
	DefaultMaxRetry  = 7
	DefaultBaseDelay = 5 * time.Second
)

// Request is the per-exchange snapshot sent to the provider: the history
// followed by one synthesized system turn. Only the controller trims it.
type Request struct {
	ExchangeID  string
	Turns       []model.Message
	Model       string
	Temperature float64
}

// Result is the outcome of a successful exchange.
type Result struct {
	Text string

	// Usage is the metric the memory budget is checked against: total
	// tokens for token-metered backends, elapsed seconds otherwise.
	Usage float64

	Duration    time.Duration
	TotalTokens int64
	Attempts    int
}

// ArtifactLogger records requests and responses. Failures are reported and
// never abort the exchange.
type ArtifactLogger interface {
	LogRequest(req storage.RequestArtifact, label string) error
	LogResponse(resp storage.ResponseArtifact, label string) error
}

// Options configures a Controller. Zero values select the defaults.
type Options struct {
	MaxRetry   int
	BaseDelay  time.Duration
	Classifier Classifier
	Artifacts  ArtifactLogger
	Logger     *zap.Logger

	// Sleep blocks for the backoff delay. Defaults to time.Sleep.
	Sleep func(time.Duration)

	// Exit terminates the process on exhaustion. Defaults to os.Exit.
	Exit func(code int)

	// Now measures attempt duration. Defaults to time.Now.
	Now func() time.Time
}

// Controller runs exchanges against one provider.
type Controller struct {
	provider   model.Provider
	profile    model.Profile
	maxRetry   int
	baseDelay  time.Duration
	classifier Classifier
	artifacts  ArtifactLogger
	logger     *zap.Logger
	sleep      func(time.Duration)
	exit       func(int)
	now        func() time.Time
}

// NewController creates a Controller for p.
func NewController(p model.Provider, opts Options) *Controller {
	c := &Controller{
		provider:   p,
		profile:    p.Profile(),
		maxRetry:   opts.MaxRetry,
		baseDelay:  opts.BaseDelay,
		classifier: opts.Classifier,
		artifacts:  opts.Artifacts,
		logger:     opts.Logger,
		sleep:      opts.Sleep,
		exit:       opts.Exit,
		now:        opts.Now,
	}

	if c.maxRetry <= 0 {
		c.maxRetry = DefaultMaxRetry
	}
	if c.baseDelay <= 0 {
		c.baseDelay = DefaultBaseDelay
	}
	if c.classifier == nil {
		c.classifier = DefaultClassifier()
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.sleep == nil {
		c.sleep = time.Sleep
	}
	if c.exit == nil {
		c.exit = os.Exit
	}
	if c.now == nil {
		c.now = time.Now
	}

	return c
}

// Backoff returns the wait after the n-th transient failure (0-based).
func (c *Controller) Backoff(n int) time.Duration {
	return c.baseDelay * time.Duration(1<<n)
}

// Exchange runs one exchange and returns its result. If every attempt fails
// the process exits with status 1 and Exchange does not return. A cancelled
// ctx ends the process with status 0.
func (c *Controller) Exchange(ctx context.Context, history []model.Message, system model.Message, modelName string, temperature float64) Result {
	result, err := c.TryExchange(ctx, history, system, modelName, temperature)
	switch {
	case err == nil:
		return result
	case errors.Is(err, ErrRetryExhausted):
		c.logger.Error("Exiting due to excessive errors in API", zap.Error(err))
		_ = c.logger.Sync()
		c.exit(1)
	default:
		c.logger.Info("Exchange cancelled", zap.Error(err))
		_ = c.logger.Sync()
		c.exit(0)
	}
	return result
}

// TryExchange runs one exchange and returns an *ExhaustedError instead of
// exiting when every attempt fails.
//
// history is copied; neither it nor the caller's History is modified, even
// when the request is trimmed.
func (c *Controller) TryExchange(ctx context.Context, history []model.Message, system model.Message, modelName string, temperature float64) (Result, error) {
	if modelName == "" {
		modelName = c.provider.GetModel()
	}

	req := &Request{
		ExchangeID:  uuid.NewString(),
		Turns:       append(model.CloneMessages(history), system),
		Model:       modelName,
		Temperature: temperature,
	}

	var lastErr error
	transientFailures := 0

	for attempt := 1; attempt <= c.maxRetry; attempt++ {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("exchange cancelled: %w", err)
		}

		c.logRequest(req, attempt)
		c.logger.Info("Processing...",
			zap.String("provider", c.provider.Name()),
			zap.String("model", req.Model),
			zap.Int("attempt", attempt),
			zap.Int("turns", len(req.Turns)))

		start := c.now()
		completion, err := c.provider.Complete(ctx, model.CloneMessages(req.Turns), req.Model, req.Temperature)
		elapsed := c.now().Sub(start)

		if err == nil {
			result := c.resultFor(completion, elapsed, attempt)
			c.logResponse(req, result, completion, attempt)
			return result, nil
		}

		// A failure caused by cancellation is not retried.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, fmt.Errorf("exchange cancelled: %w", ctxErr)
		}

		lastErr = err
		outcome := c.classifier.Classify(err, req)
		c.logger.Warn("Error communicating with provider",
			zap.String("provider", c.provider.Name()),
			zap.Int("attempt", attempt),
			zap.Stringer("outcome", outcome),
			zap.Error(err))

		// The system turn sits at the tail; with nothing else left there is
		// nothing to trim and the failure is treated as transient.
		if outcome == ContextWindowExceeded && len(req.Turns) > 1 {
			req.Turns = req.Turns[1:]
			c.logger.Info("Trimming oldest message", zap.Int("remaining_turns", len(req.Turns)))
			continue
		}

		if attempt == c.maxRetry {
			break
		}

		wait := c.Backoff(transientFailures)
		transientFailures++
		c.logger.Info(fmt.Sprintf("Retrying in %d seconds...", int(wait.Seconds())), zap.Int("next_attempt", attempt+1))
		c.sleep(wait)
	}

	return Result{}, &ExhaustedError{Attempts: c.maxRetry, Err: lastErr}
}

func (c *Controller) resultFor(completion *model.Completion, elapsed time.Duration, attempt int) Result {
	result := Result{
		Text:        completion.Text,
		Duration:    elapsed,
		TotalTokens: completion.TotalTokens,
		Attempts:    attempt,
	}

	if c.profile.TokenUsage {
		result.Usage = float64(completion.TotalTokens)
	} else {
		result.Usage = elapsed.Seconds()
	}

	return result
}

func (c *Controller) logRequest(req *Request, attempt int) {
	if c.artifacts == nil {
		return
	}

	artifact := storage.RequestArtifact{
		ExchangeID:  req.ExchangeID,
		Model:       req.Model,
		Temperature: req.Temperature,
		Attempt:     attempt,
		Messages:    model.CloneMessages(req.Turns),
	}
	label := fmt.Sprintf("_%s_request_%d", req.Model, attempt)

	if err := c.artifacts.LogRequest(artifact, label); err != nil {
		c.logger.Warn("failed to write request artifact", zap.Error(err))
	}
}

func (c *Controller) logResponse(req *Request, result Result, completion *model.Completion, attempt int) {
	if c.artifacts == nil {
		return
	}

	artifact := storage.ResponseArtifact{
		ExchangeID:      req.ExchangeID,
		Model:           req.Model,
		Temperature:     req.Temperature,
		Attempt:         attempt,
		Text:            result.Text,
		TotalTokens:     result.TotalTokens,
		DurationSeconds: result.Duration.Seconds(),
		Raw:             completion.Raw,
	}

	usageLabel := req.Model
	if c.profile.TokenUsage {
		usageLabel = strconv.FormatInt(result.TotalTokens, 10)
	}
	label := fmt.Sprintf("_%s_response", usageLabel)

	if err := c.artifacts.LogResponse(artifact, label); err != nil {
		c.logger.Warn("failed to write response artifact", zap.Error(err))
	}
}
