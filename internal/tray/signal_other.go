//go:build !windows

package tray

import (
	"os"
	"syscall"
)

// interrupt asks a child to shut down cleanly so it can remove its icon.
func interrupt(p *os.Process) error {
	if p == nil {
		return nil
	}
	return p.Signal(syscall.SIGTERM)
}
