package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# todolist configuration file
# Values can be overridden by TODOLIST_* environment variables or CLI flags

# Base URL of the to-do REST API
base_url = "https://jsonplaceholder.typicode.com"

# Request timeout in seconds (0 = wait as long as the server takes)
request_timeout_seconds = 0

# User-Agent header (empty = Go default)
# user_agent = "todolist"

# Validate response bodies against the built-in JSON Schemas
schema_check = true

# Concurrent requests for bulk done/undo/rm
workers = 4

# Request journal (one JSONL file per session, supports ~ expansion)
log_dir = "~/.todolist"
journal = true
# Echo every journal event as a JSON line on stderr (ignored by the TUI)
trace = false

# Console logging
log_level = "info"     # debug, info, warn, error
log_format = "text"    # text, json, logfmt
log_timestamps = false
log_caller = false

# Local API server started by "todolist serve"
[serve]
addr = "127.0.0.1:8080"
db = ":memory:"        # or a file path for a persistent sqlite database
`
}
