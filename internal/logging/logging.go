// Package logging writes leveled log lines to a file under the user's
// state directory. The terminal itself is the UI, so nothing may ever
// be printed to stdout or stderr while the program runs.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// Level is the severity of a log line.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the level name used in log lines.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

const (
	// maxFileSize is the rotation threshold. One rotated file is kept.
	maxFileSize = 1 << 20

	// tailSize is how many recent lines are retained in memory for
	// the debug window.
	tailSize = 200
)

// Logger appends timestamped lines to a single log file.
type Logger struct {
	mu      sync.Mutex
	file    *os.File
	path    string
	min     Level
	written int64
	tail    []string
}

// DefaultPath returns the log file location, honoring XDG_STATE_HOME.
func DefaultPath() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "loom", "loom.log")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "loom.log")
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(home, "AppData", "Local", "loom", "loom.log")
	}
	return filepath.Join(home, ".local", "state", "loom", "loom.log")
}

// Open creates or appends to the log file at path, creating parent
// directories as needed.
func Open(path string, min Level) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat log file: %w", err)
	}
	return &Logger{file: f, path: path, min: min, written: info.Size()}, nil
}

// Nop returns a logger that records to the in-memory tail only.
// Used when the log file cannot be opened and in tests.
func Nop() *Logger {
	return &Logger{min: LevelDebug}
}

// SetLevel changes the minimum level recorded.
func (l *Logger) SetLevel(min Level) {
	l.mu.Lock()
	l.min = min
	l.mu.Unlock()
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...any) { l.logf(LevelInfo, format, args...) }

// Warnf logs at warn level.
func (l *Logger) Warnf(format string, args ...any) { l.logf(LevelWarn, format, args...) }

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }

func (l *Logger) logf(level Level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.min {
		return
	}

	line := fmt.Sprintf("%s %-5s %s",
		time.Now().Format("2006-01-02 15:04:05.000"),
		level.String(),
		fmt.Sprintf(format, args...))

	l.tail = append(l.tail, line)
	if len(l.tail) > tailSize {
		l.tail = l.tail[len(l.tail)-tailSize:]
	}

	if l.file == nil {
		return
	}
	n, err := fmt.Fprintln(l.file, line)
	if err != nil {
		return
	}
	l.written += int64(n)
	if l.written >= maxFileSize {
		l.rotate()
	}
}

// rotate renames the current file to .old and starts a fresh one.
// Called with the mutex held.
func (l *Logger) rotate() {
	l.file.Close()
	os.Rename(l.path, l.path+".old")
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		l.file = nil
		return
	}
	l.file = f
	l.written = 0
}

// Tail returns up to n of the most recent log lines, oldest first.
func (l *Logger) Tail(n int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n <= 0 || n > len(l.tail) {
		n = len(l.tail)
	}
	out := make([]string, n)
	copy(out, l.tail[len(l.tail)-n:])
	return out
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
