package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chatbot/config"
	"chatbot/exchange"
	"chatbot/memory"
	"chatbot/model"
	"chatbot/prompt"
	"chatbot/provider"
	"chatbot/storage"
	"chatbot/ui"
)

// rootFlags are the command-line overrides applied on top of the config file.
type rootFlags struct {
	configPath  string
	provider    string
	model       string
	temperature float64
	baseURL     string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "chatbot",
		Short:         "Terminal chat assistant with a scratchpad-driven system prompt",
		Long:          "chatbot runs an interactive conversation with an OpenAI, OpenRouter-compatible, Anthropic or Ollama model. Every request and response is written to the log directory.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, flags)
		},
	}

	bindRootFlags(rootCmd, flags)

	rootCmd.AddCommand(
		newInitCmd(),
		newPingCmd(flags),
	)

	return rootCmd
}

func bindRootFlags(cmd *cobra.Command, flags *rootFlags) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "config file (default ./chatbot.toml or ~/.config/chatbot/config.toml)")
	pf.StringVarP(&flags.provider, "provider", "p", "", "backend: openai, openrouter, anthropic, ollama")
	pf.StringVarP(&flags.model, "model", "m", "", "model name")
	pf.Float64VarP(&flags.temperature, "temperature", "t", 0, "sampling temperature")
	pf.StringVar(&flags.baseURL, "base-url", "", "API endpoint override")
}

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a commented default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.GetConfigFilePath()
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteConfigTemplate(path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func newPingCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the configured provider is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}

			logger, err := config.NewLogger(cfg.Logging, config.CheckDebug(), cfg.LogDirectory())
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			p, err := newProvider(cfg, logger)
			if err != nil {
				return err
			}

			result := provider.PingProvider(cmd.Context(), p, provider.DefaultPingTimeout, logger)
			if !result.Valid() {
				return result.Err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) reachable in %s\n",
				result.Provider, result.Model, result.Latency.Round(time.Millisecond))
			return nil
		},
	}
}

// loadConfig loads the config file and applies the command-line overrides
// the user actually set.
func loadConfig(cmd *cobra.Command, flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("provider") {
		cfg.Provider = flags.provider
	}
	if changed("model") {
		cfg.Model = flags.model
	}
	if changed("temperature") {
		cfg.Temperature = flags.temperature
	}
	if changed("base-url") {
		cfg.BaseURL = flags.baseURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newProvider(cfg *config.Config, logger *zap.Logger) (model.Provider, error) {
	apiKey, err := config.LoadAPIKey(cfg)
	if err != nil {
		return nil, err
	}

	p, err := provider.FromConfig(cfg, apiKey, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize provider %s: %w", cfg.Provider, err)
	}
	return p, nil
}

func runChat(cmd *cobra.Command, flags *rootFlags) error {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}

	logger, err := config.NewLogger(cfg.Logging, config.CheckDebug(), cfg.LogDirectory())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	p, err := newProvider(cfg, logger)
	if err != nil {
		return err
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = p.GetModel()
	}

	profile := p.Profile()
	history := memory.NewHistory(memory.NewBudget(profile, cfg.Memory.MaxTokens, cfg.Memory.MaxMessages))

	controller := exchange.NewController(p, exchange.Options{
		MaxRetry:  cfg.Retry.MaxAttempts,
		BaseDelay: cfg.Retry.BaseDelay,
		Artifacts: storage.NewArtifactLogger(cfg.LogDirectory(), logger),
		Logger:    logger,
	})

	template := prompt.NewTemplate(config.ExpandPath(cfg.SystemMessage), config.ExpandPath(cfg.Scratchpad))

	logger.Debug("session started",
		zap.String("config", cfg.Path()),
		zap.String("provider", p.Name()),
		zap.String("model", modelName),
		zap.String("eviction", string(profile.Eviction)),
		zap.String("log_dir", cfg.LogDirectory()))

	// The first interrupt ends the session at the prompt, or after the
	// exchange in flight. A second one gets the default behavior.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		stop()
	}()

	console := ui.NewConsole(cmd.InOrStdin(), cmd.OutOrStdout(), ui.Settings{
		Model:          modelName,
		Temperature:    cfg.Temperature,
		Profile:        profile,
		WrapWidth:      cfg.WrapWidth,
		RenderMarkdown: cfg.RenderMarkdown,
	}, controller, history, template, logger)

	if err := console.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
