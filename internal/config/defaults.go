package config

// DefaultGlobalConfig returns a GlobalConfig with all defaults populated.
// Paths are returned unexpanded.
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Server: ServerConfig{
			Listen:            ":8000",
			ReadHeaderTimeout: "30s",
			ShutdownTimeout:   "5s",
		},
		Token: TokenConfig{
			Wide: false,
		},
		Audit: AuditConfig{
			File: "~/.local/state/shtack/audit.log",
		},
		Log: LogConfig{
			File:  "~/.local/state/shtack/shtack.log",
			Level: "info",
		},
	}
}

// defaultConfigTemplate is written by WriteDefaultConfig. It carries the same
// values as DefaultGlobalConfig, with comments.
const defaultConfigTemplate = `# shtack configuration

server:
  # Address the HTTP server listens on.
  listen: ":8000"
  # Maximum time to read request headers.
  read_header_timeout: "30s"
  # Grace period for in-flight requests on shutdown.
  shutdown_timeout: "5s"

token:
  # Draw capability tokens from 64 bits instead of 31. Collisions between
  # live capabilities are never detected; widening makes them unlikely.
  wide: false

audit:
  # Workflow transition log (STAGE, RELEASE, EMPTY, REJECT). Empty disables it.
  file: "~/.local/state/shtack/audit.log"

log:
  # Operational log file. Empty disables file logging.
  file: "~/.local/state/shtack/shtack.log"
  # One of: debug, info, warn, error.
  level: "info"
`
