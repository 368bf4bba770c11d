// Package config provides configuration types for the shtack server.
// These types map to the YAML configuration file.
package config

// GlobalConfig represents the top-level configuration for shtack.
// It is typically stored at ~/.config/shtack/config.yaml.
type GlobalConfig struct {
	Server ServerConfig `yaml:"server,omitempty"`
	Token  TokenConfig  `yaml:"token,omitempty"`
	Audit  AuditConfig  `yaml:"audit,omitempty"`
	Log    LogConfig    `yaml:"log,omitempty"`
}

// ServerConfig contains HTTP listener settings.
type ServerConfig struct {
	Listen            string `yaml:"listen,omitempty"`
	ReadHeaderTimeout string `yaml:"read_header_timeout,omitempty"`
	ShutdownTimeout   string `yaml:"shutdown_timeout,omitempty"`
}

// TokenConfig controls capability token minting.
type TokenConfig struct {
	// Wide draws tokens from 64 bits instead of 31.
	Wide bool `yaml:"wide,omitempty"`
}

// AuditConfig contains workflow audit log settings.
type AuditConfig struct {
	// File is the audit log path. Empty disables audit logging.
	File string `yaml:"file,omitempty"`
}

// LogConfig contains operational logging settings.
type LogConfig struct {
	File  string `yaml:"file,omitempty"`
	Level string `yaml:"level,omitempty"`
}
