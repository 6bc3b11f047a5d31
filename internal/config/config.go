// Package config loads diffview configuration from TOML files.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds diffview settings.
type Config struct {
	// DebounceMS is the diff recomputation debounce in milliseconds.
	DebounceMS int `toml:"debounce_ms"`

	// LogLevel is the minimum log level ("debug", "info", "warn", "error").
	LogLevel string `toml:"log_level"`

	// WatchFiles enables reloading documents when their backing files
	// change on disk.
	WatchFiles bool `toml:"watch_files"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		DebounceMS: 250,
		LogLevel:   "info",
		WatchFiles: false,
	}
}

// Load reads configuration from path, applying it over the defaults.
// A missing file is not an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if cfg.DebounceMS < 0 {
		return Default(), fmt.Errorf("config %s: debounce_ms must not be negative", path)
	}

	return cfg, nil
}

// Debounce returns the debounce as a duration.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}
