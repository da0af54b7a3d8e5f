package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const configFileName = "todolist.toml"

// findProjectConfigFile returns the first project config file present in
// the current directory.
func findProjectConfigFile() string {
	return firstExisting(configFileName, "."+configFileName)
}

// findUserConfigFile returns the user-level config file. ~/.todolist wins
// over the OS-specific config directory.
func findUserConfigFile() string {
	var candidates []string
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".todolist", configFileName))
	}
	if cfgDir := osUserConfigDir(); cfgDir != "" {
		candidates = append(candidates, filepath.Join(cfgDir, "todolist", configFileName))
	}
	return firstExisting(candidates...)
}

func firstExisting(paths ...string) string {
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// osUserConfigDir returns the OS-specific user config directory.
// Returns empty string if the directory cannot be determined.
func osUserConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return os.Getenv("APPDATA")
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	case "linux", "openbsd", "freebsd", "netbsd":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.BaseURL = DefaultBaseURL
	cfg.RequestTimeoutSeconds = 0
	cfg.SchemaCheck = true
	cfg.Workers = DefaultWorkers
	cfg.LogDir = DefaultLogDir
	cfg.Journal = true

	// Logging defaults
	cfg.LogLevel = "info"
	cfg.LogFormat = "text"

	cfg.Serve = ServeConfig{
		Addr: DefaultServeAddr,
		DB:   DefaultServeDB,
	}
}

// ConfigFile returns the config file that was applied last, if any.
func (cws *ConfigWithSources) ConfigFile() string {
	if len(cws.Files) == 0 {
		return ""
	}
	return cws.Files[len(cws.Files)-1]
}
