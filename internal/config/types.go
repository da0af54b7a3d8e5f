// Package config handles configuration loading and defaults.
package config

import "time"

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, in load order.
	Files []string
}

// Default values.
const (
	DefaultBaseURL   = "https://jsonplaceholder.typicode.com"
	DefaultLogDir    = "~/.todolist"
	DefaultWorkers   = 4
	DefaultServeAddr = "127.0.0.1:8080"
	DefaultServeDB   = ":memory:"
)

// Config holds the full configuration for todolist.
type Config struct {
	// API
	BaseURL               string `toml:"base_url"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"` // 0 means no timeout
	UserAgent             string `toml:"user_agent"`
	SchemaCheck           bool   `toml:"schema_check"`

	// Bulk actions (done/undo/rm with several ids)
	Workers int `toml:"workers"`

	// Request journal
	LogDir  string `toml:"log_dir"`
	Journal bool   `toml:"journal"`
	Trace   bool   `toml:"trace"` // echo journal events to stderr

	// Console logging
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Local API server
	Serve ServeConfig `toml:"serve"`

	// Working directory (computed)
	WorkDir string `toml:"-"`
}

// ServeConfig configures the bundled JSONPlaceholder-compatible server.
type ServeConfig struct {
	Addr string `toml:"addr"`
	DB   string `toml:"db"`
}

// RequestTimeout returns the HTTP client timeout. Zero disables it.
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"base_url",
		"request_timeout_seconds",
		"user_agent",
		"schema_check",
		"workers",
		"log_dir",
		"journal",
		"trace",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
		"serve.addr",
		"serve.db",
	}
}
