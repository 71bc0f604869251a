package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteConfigTemplate writes the commented default config to path. An
// existing file is left untouched unless force is set.
func WriteConfigTemplate(path string, force bool) error {
	if path == "" {
		path = GetConfigFilePath()
	}
	if FileExists(path) && !force {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := EnsureDir(dir); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	// 0600 - the config may point at key files and private endpoints
	if err := os.WriteFile(path, []byte(GenerateConfigTemplate()), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
