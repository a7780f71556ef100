//go:build windows

package pane

import "os"

// Windows has no SIGTERM; Kill is the only portable stop.
func terminate(proc *os.Process) error {
	return proc.Kill()
}
