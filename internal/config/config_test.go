package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/loomterm/loom/internal/logging"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.StatusBar || !cfg.MouseCapture || !cfg.Clipboard {
		t.Error("defaults should enable status bar, mouse capture, and clipboard")
	}
	if cfg.Scrollback != 2000 {
		t.Errorf("default scrollback = %d, want 2000", cfg.Scrollback)
	}
	if cfg.EscWindow() != 0 {
		t.Errorf("default esc window = %v, want 0 (platform default)", cfg.EscWindow())
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
shell = "zsh"
scrollback = 500
esc_window_ms = 900
status_bar = false
clipboard = false

[log]
level = "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Shell != "zsh" || cfg.Scrollback != 500 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.StatusBar {
		t.Error("status_bar = false not honored")
	}
	if !cfg.MouseCapture {
		t.Error("unset mouse_capture should keep its default")
	}
	if cfg.Clipboard {
		t.Error("clipboard = false not honored")
	}
	if cfg.EscWindow() != 900*time.Millisecond {
		t.Errorf("esc window = %v, want 900ms", cfg.EscWindow())
	}
	if cfg.LogLevel() != logging.LevelDebug {
		t.Errorf("log level = %v, want debug", cfg.LogLevel())
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", "shell = [unclosed"},
		{"negative scrollback", "scrollback = -1"},
		{"negative esc window", "esc_window_ms = -5"},
		{"unknown log level", "[log]\nlevel = \"loud\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			writeFile(t, path, tt.content)
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestShellCommandFallback(t *testing.T) {
	t.Setenv("SHELL", "/bin/bash")
	cfg := Default()
	if got := cfg.ShellCommand(); got != "/bin/bash" {
		t.Errorf("ShellCommand = %q, want $SHELL", got)
	}

	cfg.Shell = "fish"
	if got := cfg.ShellCommand(); got != "fish" {
		t.Errorf("ShellCommand = %q, want configured shell", got)
	}

	t.Setenv("SHELL", "")
	cfg.Shell = ""
	if got := cfg.ShellCommand(); got != "sh" {
		t.Errorf("ShellCommand = %q, want sh", got)
	}
}

func TestDirHonorsEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOOM_CONFIG_DIR", dir)
	if got := DefaultPath(); got != filepath.Join(dir, "config.toml") {
		t.Errorf("DefaultPath = %q", got)
	}
}

func TestLoadPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.yaml")
	writeFile(t, path, `
name: dev
panes:
  - command: nvim
    contract: app
  - command: sh
    args: ["-c", "make watch"]
    title: build
  - command: htop
    floating: true
`)

	p, err := LoadPreset(path)
	if err != nil {
		t.Fatalf("LoadPreset: %v", err)
	}
	if p.Name != "dev" || len(p.Panes) != 3 {
		t.Fatalf("unexpected preset %+v", p)
	}
	if p.Panes[0].Contract != "app" {
		t.Errorf("pane 0 contract = %q", p.Panes[0].Contract)
	}
	if len(p.Panes[1].Args) != 2 || p.Panes[1].Title != "build" {
		t.Errorf("pane 1 = %+v", p.Panes[1])
	}
	if !p.Panes[2].Floating {
		t.Error("pane 2 should float")
	}
}

func TestLoadPresetRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no panes", "name: empty\npanes: []"},
		{"missing command", "panes:\n  - title: x"},
		{"bad contract", "panes:\n  - command: sh\n    contract: sideways"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "p.yaml")
			writeFile(t, path, tt.content)
			if _, err := LoadPreset(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "scrollback = 100\n")

	got := make(chan *Config, 1)
	stop, err := Watch(path, func(c *Config) {
		select {
		case got <- c:
		default:
		}
	}, nil)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer stop()

	// Give the watcher a moment to register before writing.
	time.Sleep(50 * time.Millisecond)
	writeFile(t, path, "scrollback = 777\n")

	select {
	case cfg := <-got:
		if cfg.Scrollback != 777 {
			t.Errorf("reloaded scrollback = %d, want 777", cfg.Scrollback)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never delivered the reload")
	}
}
