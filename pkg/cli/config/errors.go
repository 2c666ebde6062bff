package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound     = goerr.New("configuration file not found")
	ErrInvalidConfig      = goerr.New("invalid configuration")
	ErrMissingCredential  = goerr.New("required credential is not set")
	ErrInvalidBackend     = goerr.New("invalid repository backend")
	ErrInvalidLogLevel    = goerr.New("invalid log level")
	ErrInvalidLogFormat   = goerr.New("invalid log format")
	ErrInvalidRowCount    = goerr.New("row count must be positive")
	ErrInvalidTicketLimit = goerr.New("chat ticket limit must not exceed the chat row count")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	FlagKey       = "flag"
	ValueKey      = "value"
)
