package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/Chargde-Porcupine/SHtack/internal/clog"
	"github.com/Chargde-Porcupine/SHtack/internal/pathutil"
)

// LoadGlobalConfig loads the global configuration from the default config path.
// If the config file doesn't exist, the default file is written and
// DefaultGlobalConfig() is returned.
// If the file exists but cannot be read or parsed, it returns an error.
func LoadGlobalConfig() (*GlobalConfig, error) {
	path := GlobalConfigPath()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		clog.Debug("config: %s not found, creating defaults", path)
		if writeErr := WriteDefaultConfig(); writeErr != nil {
			clog.Warn("config: failed to create default config: %v", writeErr)
		}
		cfg := DefaultGlobalConfig()
		expandGlobalPaths(cfg)
		return cfg, nil
	}

	return LoadFile(path)
}

// LoadFile loads, validates, and completes the configuration at path.
// Missing listener settings and log level take their default values.
// Missing log and audit files stay empty, which disables them.
func LoadFile(path string) (*GlobalConfig, error) {
	clog.Debug("config: loading %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg, err := ParseGlobalConfig(data)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := ValidateGlobalConfig(cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	applyDefaults(cfg, DefaultGlobalConfig())
	expandGlobalPaths(cfg)
	return cfg, nil
}

// applyDefaults fills empty fields of cfg from def.
// Booleans are left alone: their zero value is the default.
func applyDefaults(cfg, def *GlobalConfig) {
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = def.Server.Listen
	}
	if cfg.Server.ReadHeaderTimeout == "" {
		cfg.Server.ReadHeaderTimeout = def.Server.ReadHeaderTimeout
	}
	if cfg.Server.ShutdownTimeout == "" {
		cfg.Server.ShutdownTimeout = def.Server.ShutdownTimeout
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
}

// expandGlobalPaths expands ~ to the home directory in all path fields.
func expandGlobalPaths(cfg *GlobalConfig) {
	cfg.Log.File = pathutil.ExpandHome(cfg.Log.File)
	cfg.Audit.File = pathutil.ExpandHome(cfg.Audit.File)
}
