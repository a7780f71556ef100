package clipboard

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func newStubDetector(goos string, env map[string]string, bins map[string]bool, version string) detector {
	getenv := func(key string) string {
		if env == nil {
			return ""
		}
		return env[key]
	}
	lookPath := func(bin string) error {
		if bins != nil && bins[bin] {
			return nil
		}
		return fmt.Errorf("not found")
	}
	readFile := func(path string) ([]byte, error) {
		if path == "/proc/version" && version != "" {
			return []byte(version), nil
		}
		return nil, os.ErrNotExist
	}
	return detector{
		goos:     goos,
		getenv:   getenv,
		lookPath: lookPath,
		readFile: readFile,
	}
}

func TestChooseBackend(t *testing.T) {
	tests := []struct {
		name    string
		goos    string
		env     map[string]string
		bins    map[string]bool
		version string
		want    string
	}{
		{
			name: "darwin uses system",
			goos: "darwin",
			want: "system",
		},
		{
			name: "windows uses system",
			goos: "windows",
			want: "system",
		},
		{
			name: "wayland prefers wl-copy",
			goos: "linux",
			env:  map[string]string{"XDG_SESSION_TYPE": "wayland"},
			bins: map[string]bool{"wl-copy": true, "wl-paste": true},
			want: "wl-copy",
		},
		{
			name: "wayland display var alone is enough",
			goos: "linux",
			env:  map[string]string{"WAYLAND_DISPLAY": "wayland-0"},
			bins: map[string]bool{"wl-copy": true},
			want: "wl-copy",
		},
		{
			name: "x11 with xclip uses system",
			goos: "linux",
			env:  map[string]string{"DISPLAY": ":0"},
			bins: map[string]bool{"xclip": true},
			want: "system",
		},
		{
			name:    "wsl env prefers clip.exe",
			goos:    "linux",
			env:     map[string]string{"WSL_DISTRO_NAME": "Ubuntu"},
			bins:    map[string]bool{"clip.exe": true, "powershell.exe": true},
			want:    "clip.exe",
		},
		{
			name:    "wsl detected via proc version",
			goos:    "linux",
			bins:    map[string]bool{"clip.exe": true},
			version: "Linux version 5.15.0-microsoft-standard",
			want:    "clip.exe",
		},
		{
			name: "headless inside tmux uses buffers",
			goos: "linux",
			env:  map[string]string{"TMUX": "/tmp/tmux-1000/default,123,0"},
			bins: map[string]bool{"tmux": true},
			want: "tmux-buffer",
		},
		{
			name: "headless ssh session uses osc52",
			goos: "linux",
			env:  map[string]string{"SSH_TTY": "/dev/pts/3"},
			want: "osc52",
		},
		{
			name: "headless without tools falls back to memory",
			goos: "linux",
			want: "memory",
		},
		{
			name: "x11 without xclip or xsel falls back to memory",
			goos: "linux",
			env:  map[string]string{"DISPLAY": ":0"},
			want: "memory",
		},
		{
			name: "unknown platform falls back to memory",
			goos: "plan9",
			want: "memory",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := choose(newStubDetector(tt.goos, tt.env, tt.bins, tt.version))
			if b.Name() != tt.want {
				t.Errorf("backend = %s, want %s", b.Name(), tt.want)
			}
			// Only the in-memory floor reports itself unavailable.
			if avail := b.Available(); avail == (tt.want == "memory") {
				t.Errorf("Available() = %v for %s", avail, tt.want)
			}
		})
	}
}

func TestNewNeverNil(t *testing.T) {
	if New() == nil {
		t.Fatal("New must always return a backend")
	}
}

func TestMemoryBackend(t *testing.T) {
	m := NewMemory()

	if m.Available() {
		t.Error("memory backend must report unavailable")
	}

	if _, err := m.Paste(); !errors.Is(err, ErrEmpty) {
		t.Fatalf("empty paste = %v, want ErrEmpty", err)
	}

	if err := m.Copy("hello"); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	got, err := m.Paste()
	if err != nil || got != "hello" {
		t.Fatalf("Paste = %q, %v", got, err)
	}

	// Empty string is a valid copied value, distinct from never-set.
	if err := m.Copy(""); err != nil {
		t.Fatalf("Copy empty: %v", err)
	}
	if got, err := m.Paste(); err != nil || got != "" {
		t.Errorf("Paste after empty copy = %q, %v", got, err)
	}
}
