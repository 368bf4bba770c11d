package config

import (
	"errors"
	"fmt"
	"os"
)

// WriteDefaultConfig creates the default global configuration file with helpful comments.
// If the config file already exists, it returns nil without overwriting.
// The config directory is created if it doesn't exist.
// The file is written with 0600 permissions (user read/write only).
func WriteDefaultConfig() error {
	path := GlobalConfigPath()

	// Check if file already exists
	_, err := os.Stat(path)
	if err == nil {
		// File exists, don't overwrite
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}

	return ResetDefaultConfig()
}

// ResetDefaultConfig writes the default configuration file, replacing any
// existing one.
func ResetDefaultConfig() error {
	if err := EnsureDir(); err != nil {
		return err
	}

	if err := os.WriteFile(GlobalConfigPath(), []byte(defaultConfigTemplate), 0o600); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

// WriteGlobalConfig writes a global configuration to the config directory.
// The config file is written to GlobalConfigPath(), overwriting any
// existing file. The file is written with 0600 permissions.
func WriteGlobalConfig(cfg *GlobalConfig) error {
	path := GlobalConfigPath()

	if err := EnsureDir(); err != nil {
		return err
	}

	data, err := MarshalGlobalConfig(cfg)
	if err != nil {
		return err
	}

	if err = os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write global config: %w", err)
	}
	return nil
}
