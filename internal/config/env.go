package config

import (
	"fmt"
	"os"
	"strings"
)

// loadFromEnv overrides config from TODOLIST_* environment variables.
// If sources is non-nil, it tracks the source of each value.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	mark := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}

	if v := os.Getenv("TODOLIST_BASE_URL"); v != "" {
		cfg.BaseURL = v
		mark("base_url")
	}
	if v := os.Getenv("TODOLIST_TIMEOUT"); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			cfg.RequestTimeoutSeconds = i
			mark("request_timeout_seconds")
		}
	}
	if v := os.Getenv("TODOLIST_USER_AGENT"); v != "" {
		cfg.UserAgent = v
		mark("user_agent")
	}
	if v := os.Getenv("TODOLIST_SCHEMA_CHECK"); v != "" {
		cfg.SchemaCheck = boolFromString(v)
		mark("schema_check")
	}
	if v := os.Getenv("TODOLIST_WORKERS"); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			cfg.Workers = i
			mark("workers")
		}
	}
	if v := os.Getenv("TODOLIST_LOG_DIR"); v != "" {
		cfg.LogDir = v
		mark("log_dir")
	}
	if v := os.Getenv("TODOLIST_JOURNAL"); v != "" {
		cfg.Journal = boolFromString(v)
		mark("journal")
	}
	if v := os.Getenv("TODOLIST_TRACE"); v != "" {
		cfg.Trace = boolFromString(v)
		mark("trace")
	}

	// Logging configuration
	if v := os.Getenv("TODOLIST_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		mark("log_level")
	}
	if v := os.Getenv("TODOLIST_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
		mark("log_format")
	}
	if v := os.Getenv("TODOLIST_LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = boolFromString(v)
		mark("log_timestamps")
	}
	if v := os.Getenv("TODOLIST_LOG_CALLER"); v != "" {
		cfg.LogCaller = boolFromString(v)
		mark("log_caller")
	}

	if v := os.Getenv("TODOLIST_SERVE_ADDR"); v != "" {
		cfg.Serve.Addr = v
		mark("serve.addr")
	}
	if v := os.Getenv("TODOLIST_SERVE_DB"); v != "" {
		cfg.Serve.DB = v
		mark("serve.db")
	}
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
