package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// apiKeyEnvVars maps provider IDs to the environment variable checked first.
var apiKeyEnvVars = map[string]string{
	"openai":     "OPENAI_API_KEY",
	"anthropic":  "ANTHROPIC_API_KEY",
	"claude":     "ANTHROPIC_API_KEY",
	"openrouter": "OPENROUTER_API_KEY",
}

// CredentialStore holds plain-text API credentials keyed by provider ID.
type CredentialStore struct {
	credentials map[string]string // providerID → API key
}

// NewCredentialStore creates an empty credential store
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		credentials: make(map[string]string),
	}
}

// Load loads credentials.toml from dir. A missing file leaves the store empty.
func (c *CredentialStore) Load(dir string) error {
	creds, err := loadPlainText(dir)
	if err != nil {
		return err
	}
	c.credentials = creds
	return nil
}

// Get retrieves a credential for a provider
func (c *CredentialStore) Get(providerID string) string {
	return c.credentials[providerID]
}

// credentialsPath returns the path to the plain text credentials file
func credentialsPath(dir string) string {
	return filepath.Join(dir, "credentials.toml")
}

// loadPlainText loads credentials from plain text TOML file
func loadPlainText(dir string) (map[string]string, error) {
	path := credentialsPath(dir)

	if !FileExists(path) {
		return make(map[string]string), nil
	}

	type credentialsFile struct {
		Credentials map[string]string `toml:"credentials"`
	}

	var cf credentialsFile
	if _, err := toml.DecodeFile(path, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	if cf.Credentials == nil {
		cf.Credentials = make(map[string]string)
	}

	return cf.Credentials, nil
}

// LoadAPIKey resolves the API key for the configured provider. Sources are
// tried in order: provider env var, key file, credentials.toml in the config
// directory. Ollama needs no key. An empty result with a nil error means no
// source had a key; provider constructors report that case.
func LoadAPIKey(cfg *Config) (string, error) {
	if cfg.Provider == "ollama" {
		return "", nil
	}

	if env, ok := apiKeyEnvVars[cfg.Provider]; ok {
		if key := strings.TrimSpace(os.Getenv(env)); key != "" {
			return key, nil
		}
	}

	keyFile := cfg.KeyFilePath()
	if FileExists(keyFile) {
		data, err := os.ReadFile(keyFile)
		if err != nil {
			return "", fmt.Errorf("failed to read key file %s: %w", keyFile, err)
		}
		if key := strings.TrimSpace(string(data)); key != "" {
			return key, nil
		}
	}

	store := NewCredentialStore()
	if err := store.Load(GetConfigDir()); err != nil {
		return "", err
	}

	return store.Get(cfg.Provider), nil
}
