// Package pane supervises one child process on a pseudo-terminal and owns
// the screen grid its output renders into. A dedicated reader goroutine
// forwards PTY output to a buffered channel; the session loop drains that
// channel once per tick, so the grid itself is only ever touched from the
// tick goroutine.
package pane

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"

	"github.com/loomterm/loom/internal/grid"
)

// ID uniquely identifies a pane for the lifetime of a session. IDs are
// assigned by the session arena and never reused.
type ID uint64

// termForChild is advertised to children via TERM. The emulator covers the
// xterm control set the common TUIs emit.
const termForChild = "xterm-256color"

// killGrace is how long Close waits after SIGTERM before sending SIGKILL.
const killGrace = 500 * time.Millisecond

// ErrPaneClosed is returned by operations on a pane after Close.
var ErrPaneClosed = errors.New("pane: closed")

// Spec describes the child to spawn.
type Spec struct {
	Command    string
	Args       []string
	Dir        string
	Env        []string
	Rows       int
	Cols       int
	Scrollback int
	Title      string
}

// Pane is one supervised child process plus its emulated screen.
type Pane struct {
	id   ID
	spec Spec

	cmd  *exec.Cmd
	tty  *os.File // PTY master
	grid *grid.Grid

	chunks   chan []byte
	cancel   context.CancelFunc
	waitDone chan struct{}
	waitErr  error

	mu     sync.Mutex // guards tty writes and the closed flag
	closed bool
}

// Start spawns the child on a fresh PTY and begins reading its output.
// The context bounds the reader goroutine, not the child's lifetime.
func Start(ctx context.Context, id ID, spec Spec) (*Pane, error) {
	if spec.Command == "" {
		return nil, errors.New("pane: empty command")
	}
	rows := spec.Rows
	cols := spec.Cols
	if rows <= 0 {
		rows = 24
	}
	if cols <= 0 {
		cols = 80
	}
	scrollback := spec.Scrollback
	if scrollback == 0 {
		scrollback = grid.DefaultScrollback
	}

	cmd := exec.Command(spec.Command, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = childEnv(spec.Env)

	tty, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return nil, fmt.Errorf("pane: start %s: %w", spec.Command, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &Pane{
		id:       id,
		spec:     spec,
		cmd:      cmd,
		tty:      tty,
		chunks:   make(chan []byte, 64),
		cancel:   cancel,
		waitDone: make(chan struct{}),
	}
	p.grid = grid.New(rows, cols,
		grid.WithScrollback(scrollback),
		grid.WithReply(func(b []byte) { _, _ = p.write(b) }),
	)

	go p.readLoop(ctx)
	go func() {
		p.waitErr = cmd.Wait()
		close(p.waitDone)
	}()
	return p, nil
}

func childEnv(extra []string) []string {
	env := os.Environ()
	out := make([]string, 0, len(env)+len(extra)+2)
	for _, kv := range env {
		if strings.HasPrefix(kv, "TERM=") || strings.HasPrefix(kv, "COLORTERM=") {
			continue
		}
		out = append(out, kv)
	}
	out = append(out, "TERM="+termForChild, "COLORTERM=truecolor")
	return append(out, extra...)
}

// readLoop forwards PTY output chunks until EOF or cancellation. Chunks are
// copied because the read buffer is reused; a full channel applies
// backpressure to the child rather than dropping output.
func (p *Pane) readLoop(ctx context.Context) {
	defer close(p.chunks)
	buf := make([]byte, 32*1024)
	for {
		n, err := p.tty.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case p.chunks <- chunk:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// ID returns the pane's session-assigned identity.
func (p *Pane) ID() ID { return p.id }

// Grid returns the pane's screen. Only the tick goroutine may use it.
func (p *Pane) Grid() *grid.Grid { return p.grid }

// Title returns the OSC-set title when present, else the spec title, else
// the command name.
func (p *Pane) Title() string {
	if t := p.grid.Title(); t != "" {
		return t
	}
	if p.spec.Title != "" {
		return p.spec.Title
	}
	return p.spec.Command
}

// Command returns the spawned command name.
func (p *Pane) Command() string { return p.spec.Command }

// Drain consumes all queued output into the grid without blocking and
// reports whether anything arrived.
func (p *Pane) Drain() bool {
	got := false
	for {
		select {
		case chunk, ok := <-p.chunks:
			if !ok {
				return got
			}
			p.grid.Write(chunk)
			got = true
		default:
			return got
		}
	}
}

// SendInput writes keyboard/paste bytes to the child.
func (p *Pane) SendInput(b []byte) error {
	_, err := p.write(b)
	return err
}

func (p *Pane) write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, ErrPaneClosed
	}
	return p.tty.Write(b)
}

// Resize grows or shrinks the emulated screen first, then the PTY, so the
// child's WINCH handler reads a size the grid can already represent.
func (p *Pane) Resize(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("pane: invalid size %dx%d", rows, cols)
	}
	p.grid.Resize(rows, cols)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPaneClosed
	}
	if err := pty.Setsize(p.tty, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)}); err != nil {
		return fmt.Errorf("pane: resize: %w", err)
	}
	return nil
}

// Alive reports whether the child is still running.
func (p *Pane) Alive() bool {
	select {
	case <-p.waitDone:
		return false
	default:
		return true
	}
}

// ExitErr returns the child's wait result once it has exited.
func (p *Pane) ExitErr() error {
	select {
	case <-p.waitDone:
		return p.waitErr
	default:
		return nil
	}
}

// Close tears the pane down: stop IO, close the PTY, then terminate the
// child, escalating from SIGTERM to SIGKILL after a grace period. Close is
// idempotent and safe to call on an already-exited pane.
func (p *Pane) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	_ = p.tty.Close()

	if p.cmd.Process != nil {
		select {
		case <-p.waitDone:
			return nil
		default:
		}
		_ = terminate(p.cmd.Process)
		select {
		case <-p.waitDone:
		case <-time.After(killGrace):
			_ = p.cmd.Process.Kill()
			<-p.waitDone
		}
	}
	return nil
}
