// Package lockfile provides a cross-platform exclusive advisory lock used
// by the Store to serialize the load-mutate-save transaction cycle across
// cooperating processes.
package lockfile

import (
	"os"
	"time"
)

// Handle represents a held lock. Close releases it.
type Handle struct {
	file *os.File
}

// Acquire opens (creating if necessary) the file at path and blocks until an
// exclusive advisory lock is obtained or timeout elapses, whichever comes
// first. A timeout of zero means try once and fail immediately if held.
func Acquire(path string, timeout time.Duration) (*Handle, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(timeout)
	backoff := 5 * time.Millisecond
	for {
		err := tryLock(f)
		if err == nil {
			return &Handle{file: f}, nil
		}
		if !isLockBusy(err) {
			f.Close()
			return nil, err
		}
		if timeout <= 0 || time.Now().After(deadline) {
			f.Close()
			return nil, errTimeout
		}
		time.Sleep(backoff)
		if backoff < 100*time.Millisecond {
			backoff *= 2
		}
	}
}

// Close releases the lock and closes the underlying file.
func (h *Handle) Close() error {
	if h == nil || h.file == nil {
		return nil
	}
	_ = unlock(h.file)
	return h.file.Close()
}
