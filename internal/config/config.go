// Package config provides centralized configuration for mobcsv.
// Settings come from environment variables (optionally seeded from a .env
// file) with sensible defaults, and are validated on load so a bad value
// fails before any file is touched. Command-line flags override them.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Pipeline PipelineConfig
	Logging  LoggingConfig
	Server   ServerConfig
	Database DatabaseConfig
}

// PipelineConfig holds CSV processing settings.
type PipelineConfig struct {
	// Rule is the validation rule: strict or legacy (default: strict)
	Rule string `env:"MOBCSV_RULE" default:"strict" validate:"oneof=strict legacy"`

	// BufferSize is the read and write buffer size in bytes (default: 64KiB)
	BufferSize int `env:"MOBCSV_BUFFER_SIZE" default:"65536" validate:"min=4096,max=67108864"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error (default: info)
	Level string `env:"MOBCSV_LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error"`

	// Format is the log format: text or json (default: text)
	Format string `env:"MOBCSV_LOG_FORMAT" default:"text" validate:"oneof=text json"`
}

// ServerConfig holds settings for "mobcsv serve".
type ServerConfig struct {
	// Addr is the listen address (default: :8080)
	Addr string `env:"MOBCSV_ADDR" default:":8080" validate:"required"`

	// MaxUploadSize is the largest accepted upload in bytes (default: 32MB)
	MaxUploadSize int64 `env:"MOBCSV_MAX_UPLOAD_SIZE" default:"33554432" validate:"gt=0"`

	// ReadTimeout is the maximum duration for reading a request (default: 30s)
	ReadTimeout time.Duration `env:"MOBCSV_READ_TIMEOUT" default:"30s" validate:"gte=0"`

	// RequestTimeout bounds a single normalize request (default: 60s)
	RequestTimeout time.Duration `env:"MOBCSV_REQUEST_TIMEOUT" default:"60s" validate:"gt=0"`

	// MaxConcurrent bounds simultaneous normalize requests (default: 4)
	MaxConcurrent int `env:"MOBCSV_MAX_CONCURRENT" default:"4" validate:"gt=0"`

	// QueueTimeout is how long a request waits for a free slot (default: 10s)
	QueueTimeout time.Duration `env:"MOBCSV_QUEUE_TIMEOUT" default:"10s" validate:"gt=0"`

	// ShutdownTimeout is how long to wait for in-flight requests (default: 15s)
	ShutdownTimeout time.Duration `env:"MOBCSV_SHUTDOWN_TIMEOUT" default:"15s" validate:"gt=0"`
}

// DatabaseConfig holds the optional run-history database.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Empty disables run history.
	// Supports both DATABASE_URL and DB_URL env vars.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of pooled connections (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4" validate:"gt=0"`

	// ConnectTimeout bounds the initial connection and ping (default: 5s)
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" default:"5s" validate:"gt=0"`
}

// HistoryEnabled reports whether a database URL is configured.
func (c *DatabaseConfig) HistoryEnabled() bool {
	return strings.TrimSpace(c.URL) != ""
}

// String returns a safe string representation of the config for logging.
// The database URL is masked.
func (c *Config) String() string {
	db := "disabled"
	if c.Database.HistoryEnabled() {
		db = "[MASKED]"
	}
	return fmt.Sprintf(
		"Config{Pipeline: {Rule: %q, BufferSize: %d}, Logging: {Level: %q, Format: %q}, Server: {Addr: %q, MaxUploadSize: %d}, Database: {URL: %s, MaxConns: %d}}",
		c.Pipeline.Rule, c.Pipeline.BufferSize,
		c.Logging.Level, c.Logging.Format,
		c.Server.Addr, c.Server.MaxUploadSize,
		db, c.Database.MaxConns,
	)
}
