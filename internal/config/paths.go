package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Chargde-Porcupine/SHtack/internal/pathutil"
)

// Dir returns the shtack configuration directory path.
// By default, this is ~/.config/shtack. If the XDG_CONFIG_HOME
// environment variable is set, it uses $XDG_CONFIG_HOME/shtack instead.
func Dir() string {
	return pathutil.ConfigDir()
}

// EnsureDir creates the shtack configuration directory if it
// doesn't exist. It uses 0700 permissions for security (user-only access).
// Returns nil if the directory already exists or was successfully created.
func EnsureDir() error {
	if err := os.MkdirAll(Dir(), 0o700); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}
	return nil
}

// GlobalConfigPath returns the full path to the global configuration file.
func GlobalConfigPath() string {
	return filepath.Join(Dir(), "config.yaml")
}
