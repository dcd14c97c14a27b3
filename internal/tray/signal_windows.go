//go:build windows

package tray

import "os"

// interrupt kills the child; Windows has no portable graceful signal for a
// windowless process.
func interrupt(p *os.Process) error {
	if p == nil {
		return nil
	}
	return p.Kill()
}
