package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

type RetryConfig struct {
	MaxAttempts int           `toml:"max_attempts"`
	BaseDelay   time.Duration `toml:"base_delay"`
}

type MemoryConfig struct {
	MaxTokens   int `toml:"max_tokens"`
	MaxMessages int `toml:"max_messages"`
}

type LoggingConfig struct {
	Level    string `toml:"level"`
	Encoding string `toml:"encoding"`
	File     string `toml:"file,omitempty"`
}

type Config struct {
	Provider       string  `toml:"provider"`
	Model          string  `toml:"model"`
	Temperature    float64 `toml:"temperature"`
	BaseURL        string  `toml:"base_url,omitempty"`
	KeyFile        string  `toml:"key_file,omitempty"`
	SystemMessage  string  `toml:"system_message"`
	Scratchpad     string  `toml:"scratchpad"`
	LogDir         string  `toml:"log_dir,omitempty"`
	RenderMarkdown bool    `toml:"render_markdown"`
	WrapWidth      int     `toml:"wrap_width"`

	Retry   RetryConfig   `toml:"retry"`
	Memory  MemoryConfig  `toml:"memory"`
	Logging LoggingConfig `toml:"logging"`

	// path is the file the config was loaded from; empty for pure defaults.
	path string
}

var knownProviders = map[string]bool{
	"openai":     true,
	"openrouter": true,
	"gorilla":    true,
	"compatible": true,
	"anthropic":  true,
	"claude":     true,
	"ollama":     true,
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// LogDirectory returns the artifact directory, log/<provider> unless set.
func (c *Config) LogDirectory() string {
	if c.LogDir != "" {
		return ExpandPath(c.LogDir)
	}
	return filepath.Join("log", c.Provider)
}

// KeyFilePath returns the API key file, key_<provider>.txt unless set.
func (c *Config) KeyFilePath() string {
	if c.KeyFile != "" {
		return ExpandPath(c.KeyFile)
	}
	switch c.Provider {
	case "anthropic", "claude":
		return "key_claude.txt"
	default:
		return fmt.Sprintf("key_%s.txt", c.Provider)
	}
}

func (c *Config) applyEnvOverrides() {
	if p := os.Getenv("CHATBOT_PROVIDER"); p != "" {
		c.Provider = p
	}
	if m := os.Getenv("CHATBOT_MODEL"); m != "" {
		c.Model = m
	}
	if u := os.Getenv("CHATBOT_BASE_URL"); u != "" {
		c.BaseURL = u
	}
}

// Validate checks the values that the exchange engine depends on.
func (c *Config) Validate() error {
	if !knownProviders[c.Provider] {
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, c.Provider)
	}
	if c.Temperature < 0 {
		return fmt.Errorf("%w: temperature must not be negative, got %v", ErrInvalidConfig, c.Temperature)
	}
	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("%w: retry.max_attempts must be positive, got %d", ErrInvalidConfig, c.Retry.MaxAttempts)
	}
	if c.Retry.BaseDelay <= 0 {
		return fmt.Errorf("%w: retry.base_delay must be positive, got %s", ErrInvalidConfig, c.Retry.BaseDelay)
	}
	if c.Memory.MaxTokens <= 0 || c.Memory.MaxMessages <= 0 {
		return fmt.Errorf("%w: memory budgets must be positive (max_tokens=%d, max_messages=%d)",
			ErrInvalidConfig, c.Memory.MaxTokens, c.Memory.MaxMessages)
	}
	return nil
}

func CheckDebug() bool {
	debug := os.Getenv("CHATBOT_DEBUG")
	return debug == "true" || debug == "1"
}

// FindConfigFile returns the first existing config file among ./chatbot.toml
// and the user config file, or "" when neither exists.
func FindConfigFile() string {
	for _, candidate := range []string{LocalConfigFile, GetConfigFilePath()} {
		if FileExists(candidate) {
			return candidate
		}
	}
	return ""
}

// Load reads the config at path. An empty path searches the default
// locations and falls back to DefaultConfig when nothing is found. Env
// overrides are applied last, then the result is validated.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = FindConfigFile()
	} else if !FileExists(path) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		cfg.path = path
	}

	cfg.applyEnvOverrides()
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
