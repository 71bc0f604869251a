package provider

import (
	"go.uber.org/zap"

	"chatbot/config"
	"chatbot/model"
)

// FromConfig creates the provider selected by cfg.
//
// This is the single entry point the CLI uses to build a transport. It maps
// the configured provider ID (including the "claude", "gorilla" and
// "compatible" aliases) to a ProviderType and hands the endpoint, model and
// API key to the factory. An empty model selects the provider default.
//
// Example:
//
//	cfg, _ := config.Load("")
//	key, _ := config.LoadAPIKey(cfg)
//	p, err := provider.FromConfig(cfg, key, logger)
func FromConfig(cfg *config.Config, apiKey string, logger *zap.Logger) (model.Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	providerType := MapProviderIDToType(cfg.Provider)

	p, err := NewProvider(Config{
		Type:    providerType,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		APIKey:  apiKey,
	})
	if err != nil {
		logger.Debug("provider initialization failed",
			zap.String("provider", cfg.Provider),
			zap.Error(err))
		return nil, err
	}

	logger.Debug("initialized provider",
		zap.String("provider", cfg.Provider),
		zap.String("type", string(providerType)),
		zap.String("model", p.GetModel()))

	return p, nil
}
