package provider

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"chatbot/model"
)

// DefaultPingTimeout bounds a connectivity check.
const DefaultPingTimeout = 15 * time.Second

// PingResult is the outcome of a connectivity check.
type PingResult struct {
	Provider string
	Model    string
	Latency  time.Duration
	Err      error
}

// Valid reports whether the provider answered.
func (r PingResult) Valid() bool {
	return r.Err == nil
}

// PingProvider validates credentials and reachability by calling Ping once.
// It never retries; `chatbot ping` uses it before a session is started.
func PingProvider(ctx context.Context, p model.Provider, timeout time.Duration, logger *zap.Logger) PingResult {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultPingTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result := PingResult{
		Provider: p.Name(),
		Model:    p.GetModel(),
	}

	start := time.Now()
	err := p.Ping(ctx)
	result.Latency = time.Since(start)

	if err != nil {
		result.Err = fmt.Errorf("connection failed: %w", err)
		logger.Debug("provider ping failed", zap.String("provider", result.Provider), zap.Error(err))
		return result
	}

	logger.Debug("provider ping successful",
		zap.String("provider", result.Provider),
		zap.Duration("latency", result.Latency))

	return result
}
