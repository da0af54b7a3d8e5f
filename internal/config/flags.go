package config

import "flag"

// flagToSource maps flag names to source field names.
var flagToSource = map[string]string{
	"base-url":       "base_url",
	"timeout":        "request_timeout_seconds",
	"user-agent":     "user_agent",
	"schema-check":   "schema_check",
	"workers":        "workers",
	"log-dir":        "log_dir",
	"journal":        "journal",
	"trace":          "trace",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
	"log-caller":     "log_caller",
}

// parseFlags defines the global CLI flags on fs, bound to cfg, and parses args.
// If sources is non-nil, explicitly set flags are attributed to SourceFlag.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("todolist", flag.ContinueOnError)
	}

	// API
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "Base URL of the to-do REST API")
	fs.IntVar(&cfg.RequestTimeoutSeconds, "timeout", cfg.RequestTimeoutSeconds, "Request timeout in seconds (0 = none)")
	fs.StringVar(&cfg.UserAgent, "user-agent", cfg.UserAgent, "User-Agent header sent with requests")
	fs.BoolVar(&cfg.SchemaCheck, "schema-check", cfg.SchemaCheck, "Validate response bodies against JSON Schema")

	// Bulk actions
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Concurrent requests for bulk done/undo/rm")

	// Journal
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Request journal directory")
	fs.BoolVar(&cfg.Journal, "journal", cfg.Journal, "Record requests to a per-session JSONL journal")
	fs.BoolVar(&cfg.Trace, "trace", cfg.Trace, "Echo journal events as JSON lines on stderr")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if sources != nil {
		fs.Visit(func(f *flag.Flag) {
			if fieldName, ok := flagToSource[f.Name]; ok {
				sources[fieldName] = SourceFlag
			}
		})
	}

	return nil
}
