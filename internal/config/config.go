// Package config loads user preferences from a TOML file and layout
// presets from YAML, with live reload over fsnotify.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/loomterm/loom/internal/logging"
)

// Config represents the main configuration
type Config struct {
	// Shell is the command spawned in new panes. Empty means $SHELL,
	// falling back to sh.
	Shell string `toml:"shell"`

	// Scrollback is the per-pane history line cap.
	Scrollback int `toml:"scrollback"`

	// EscWindowMS is the double-Esc window in milliseconds. Zero uses
	// the platform default.
	EscWindowMS int `toml:"esc_window_ms"`

	StatusBar    bool `toml:"status_bar"`
	MouseCapture bool `toml:"mouse_capture"`
	Clipboard    bool `toml:"clipboard"`

	// Preset names the YAML layout preset loaded at startup.
	Preset string `toml:"preset"`

	Log LogConfig `toml:"log"`
}

// LogConfig controls the debug log file.
type LogConfig struct {
	Path  string `toml:"path"`  // empty uses the default state dir
	Level string `toml:"level"` // debug, info, warn, error
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Scrollback:   2000,
		StatusBar:    true,
		MouseCapture: true,
		Clipboard:    true,
		Log:          LogConfig{Level: "info"},
	}
}

// Dir returns the config directory, honoring LOOM_CONFIG_DIR and
// XDG_CONFIG_HOME.
func Dir() string {
	if dir := os.Getenv("LOOM_CONFIG_DIR"); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "loom")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "loom")
}

// DefaultPath returns the config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config at path, or the default location when path is
// empty. A missing file is not an error; defaults are returned.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Scrollback < 0 {
		return fmt.Errorf("scrollback must be >= 0, got %d", c.Scrollback)
	}
	if c.EscWindowMS < 0 {
		return fmt.Errorf("esc_window_ms must be >= 0, got %d", c.EscWindowMS)
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}

// EscWindow returns the configured double-Esc window, or zero when the
// platform default should apply.
func (c *Config) EscWindow() time.Duration {
	return time.Duration(c.EscWindowMS) * time.Millisecond
}

// ShellCommand resolves the pane command: config, then $SHELL, then sh.
func (c *Config) ShellCommand() string {
	if c.Shell != "" {
		return c.Shell
	}
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "sh"
}

// LogLevel maps the configured level name to a logging level.
func (c *Config) LogLevel() logging.Level {
	switch c.Log.Level {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

// LogPath resolves the log file location.
func (c *Config) LogPath() string {
	if c.Log.Path != "" {
		return c.Log.Path
	}
	if p := os.Getenv("LOOM_LOG"); p != "" {
		return p
	}
	return logging.DefaultPath()
}
