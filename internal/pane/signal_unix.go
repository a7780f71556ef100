//go:build !windows

package pane

import (
	"os"
	"syscall"
)

// terminate asks the child to exit; Close escalates to Kill if it does not.
func terminate(proc *os.Process) error {
	return proc.Signal(syscall.SIGTERM)
}
