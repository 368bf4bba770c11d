package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// validLogLevels defines the allowed log level values.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidateGlobalConfig validates a parsed GlobalConfig, checking that all
// fields contain valid values. It validates:
//   - server.listen is ":port" or "host:port" with a port in 1-65535
//   - Duration strings are parseable and non-negative
//   - log.level is one of: debug, info, warn, error (if non-empty)
//
// Returns nil if the config is valid, or an error with a clear message
// indicating which field is invalid.
func ValidateGlobalConfig(cfg *GlobalConfig) error {
	if cfg.Server.Listen != "" {
		if err := validateListenAddr(cfg.Server.Listen, "server.listen"); err != nil {
			return err
		}
	}
	if cfg.Server.ReadHeaderTimeout != "" {
		if err := validateDuration(cfg.Server.ReadHeaderTimeout, "server.read_header_timeout"); err != nil {
			return err
		}
	}
	if cfg.Server.ShutdownTimeout != "" {
		if err := validateDuration(cfg.Server.ShutdownTimeout, "server.shutdown_timeout"); err != nil {
			return err
		}
	}

	if cfg.Log.Level != "" {
		if !validLogLevels[cfg.Log.Level] {
			return fmt.Errorf("log.level: invalid value %q, must be one of: debug, info, warn, error", cfg.Log.Level)
		}
	}

	return nil
}

// validateListenAddr validates a listen address in the format ":port" or "host:port".
// Port must be in the range 1-65535.
func validateListenAddr(addr, field string) error {
	// Find the port portion (after the last colon)
	colonIdx := strings.LastIndex(addr, ":")
	if colonIdx == -1 {
		return fmt.Errorf("%s: invalid format %q, expected host:port or :port", field, addr)
	}

	portStr := addr[colonIdx+1:]
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("%s: invalid port %q in %q", field, portStr, addr)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s: invalid port number %d, must be 1-65535", field, port)
	}

	return nil
}

// validateDuration validates that a duration string can be parsed by
// time.ParseDuration and is not negative.
func validateDuration(d, field string) error {
	parsed, err := time.ParseDuration(d)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q", field, d)
	}
	if parsed < 0 {
		return fmt.Errorf("%s: must be non-negative, got %q", field, d)
	}
	return nil
}

// Durations returns the parsed server timeouts. It assumes cfg has been
// validated; unparseable values yield zero.
func (c ServerConfig) Durations() (readHeader, shutdown time.Duration) {
	readHeader, _ = time.ParseDuration(c.ReadHeaderTimeout)
	shutdown, _ = time.ParseDuration(c.ShutdownTimeout)
	return readHeader, shutdown
}
