// Package clipboard supplies the selection controller's pluggable copy/paste
// backend. Detection prefers native tooling for the session type (wl-copy on
// Wayland, clip.exe under WSL, tmux buffers inside tmux) and otherwise hands
// off to the cross-platform atotto backend. When nothing system-level is
// usable, an in-memory backend keeps copy/paste working inside the session.
package clipboard

import (
	"bytes"
	"encoding/base64"
	"errors"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
)

// ErrEmpty is returned by Paste when the clipboard holds nothing.
var ErrEmpty = errors.New("clipboard: empty")

// ErrUnavailable reports that no system clipboard could be reached; text
// went no further than the in-session buffer.
var ErrUnavailable = errors.New("clipboard: no system clipboard available")

// Backend is a destination for selected text. Implementations must be safe
// for use from the tick goroutine; none of them are called concurrently.
type Backend interface {
	Copy(text string) error
	Paste() (string, error)
	// Name identifies the backend in the status bar, e.g. "wl-copy".
	Name() string
	// Available reports whether copies leave the session. The in-memory
	// floor returns false so the UI can flag degraded mode.
	Available() bool
}

// detector abstracts the probes backend selection needs, so tests can
// exercise every platform branch on one machine.
type detector struct {
	goos     string
	getenv   func(string) string
	lookPath func(string) error
	readFile func(string) ([]byte, error)
}

func defaultDetector() detector {
	return detector{
		goos:   runtime.GOOS,
		getenv: os.Getenv,
		lookPath: func(bin string) error {
			_, err := exec.LookPath(bin)
			return err
		},
		readFile: os.ReadFile,
	}
}

// New picks the best backend for the current environment. It never fails;
// the in-memory backend is the floor.
func New() Backend {
	return choose(defaultDetector())
}

func choose(det detector) Backend {
	if det.goos == "linux" {
		if isWSL(det) && det.lookPath("clip.exe") == nil {
			return &wslBackend{hasPaste: det.lookPath("powershell.exe") == nil}
		}
		if isWayland(det) && det.lookPath("wl-copy") == nil {
			return &wlBackend{hasPaste: det.lookPath("wl-paste") == nil}
		}
		if det.getenv("DISPLAY") == "" {
			// Headless or console session: atotto needs X tooling, so try
			// tmux buffers, then OSC 52 over SSH, before giving up on the
			// system clipboard.
			if det.getenv("TMUX") != "" && det.lookPath("tmux") == nil {
				return &tmuxBackend{}
			}
			if det.getenv("SSH_TTY") != "" || det.getenv("SSH_CONNECTION") != "" {
				return &osc52Backend{}
			}
			return NewMemory()
		}
		if det.lookPath("xclip") != nil && det.lookPath("xsel") != nil {
			return NewMemory()
		}
	}
	switch det.goos {
	case "linux", "darwin", "windows":
		return &systemBackend{}
	default:
		return NewMemory()
	}
}

func isWSL(det detector) bool {
	if det.getenv("WSL_DISTRO_NAME") != "" || det.getenv("WSL_INTEROP") != "" {
		return true
	}
	data, err := det.readFile("/proc/version")
	return err == nil && bytes.Contains(bytes.ToLower(data), []byte("microsoft"))
}

func isWayland(det detector) bool {
	if strings.EqualFold(det.getenv("XDG_SESSION_TYPE"), "wayland") {
		return true
	}
	return det.getenv("WAYLAND_DISPLAY") != ""
}

// systemBackend delegates to atotto/clipboard: pbcopy/pbpaste on macOS,
// xclip/xsel on X11, the win32 API on Windows.
type systemBackend struct{}

func (systemBackend) Copy(text string) error { return clipboard.WriteAll(text) }

func (systemBackend) Paste() (string, error) {
	s, err := clipboard.ReadAll()
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", ErrEmpty
	}
	return s, nil
}

func (systemBackend) Name() string { return "system" }

func (systemBackend) Available() bool { return true }

type wlBackend struct{ hasPaste bool }

func (wlBackend) Copy(text string) error {
	cmd := exec.Command("wl-copy")
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

func (b wlBackend) Paste() (string, error) {
	if !b.hasPaste {
		return "", errors.New("clipboard: wl-paste not available")
	}
	out, err := exec.Command("wl-paste", "--no-newline").Output()
	return string(out), err
}

func (wlBackend) Name() string { return "wl-copy" }

func (wlBackend) Available() bool { return true }

type wslBackend struct{ hasPaste bool }

func (wslBackend) Copy(text string) error {
	cmd := exec.Command("clip.exe")
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

func (b wslBackend) Paste() (string, error) {
	if !b.hasPaste {
		return "", errors.New("clipboard: paste needs powershell.exe under WSL")
	}
	out, err := exec.Command("powershell.exe", "Get-Clipboard").Output()
	return strings.TrimRight(string(out), "\r\n"), err
}

func (wslBackend) Name() string { return "clip.exe" }

func (wslBackend) Available() bool { return true }

type tmuxBackend struct{}

func (tmuxBackend) Copy(text string) error {
	cmd := exec.Command("tmux", "load-buffer", "-")
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

func (tmuxBackend) Paste() (string, error) {
	out, err := exec.Command("tmux", "show-buffer").Output()
	return string(out), err
}

func (tmuxBackend) Name() string { return "tmux-buffer" }

func (tmuxBackend) Available() bool { return true }

// osc52Backend forwards the selection to the outer terminal emulator with
// an OSC 52 sequence written straight to the controlling tty. This is the
// only channel that reaches the local clipboard across SSH. Paste would
// need a terminal query round trip, so it is not supported.
type osc52Backend struct{}

func (osc52Backend) Copy(text string) error {
	tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer tty.Close()
	_, err = tty.WriteString("\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte(text)) + "\x07")
	return err
}

func (osc52Backend) Paste() (string, error) {
	return "", errors.New("clipboard: osc52 backend cannot paste")
}

func (osc52Backend) Name() string { return "osc52" }

func (osc52Backend) Available() bool { return true }

// Memory is the session-local fallback backend. It also serves tests that
// need a deterministic clipboard.
type Memory struct {
	mu   sync.Mutex
	text string
	set  bool
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Copy(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	m.set = true
	return nil
}

func (m *Memory) Paste() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return "", ErrEmpty
	}
	return m.text, nil
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Available() bool { return false }
