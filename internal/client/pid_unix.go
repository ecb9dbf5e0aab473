//go:build !windows

package client

import "golang.org/x/sys/unix"

// processAlive reports whether pid names a running process, signalling it
// with signal 0 (no-op delivery, error-only probe).
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	return unix.Kill(pid, 0) == nil
}
