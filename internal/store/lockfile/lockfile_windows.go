//go:build windows

package lockfile

import (
	"os"

	"golang.org/x/sys/windows"
)

// byteRangeMax is the number of bytes covered by the mandatory-region lock;
// one byte at offset zero is sufficient to serialize the whole file.
const byteRangeMax = 1

func tryLock(f *os.File) error {
	ol := new(windows.Overlapped)
	return windows.LockFileEx(
		windows.Handle(f.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0,
		byteRangeMax,
		0,
		ol,
	)
}

func unlock(f *os.File) error {
	ol := new(windows.Overlapped)
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, byteRangeMax, 0, ol)
}

func isLockBusy(err error) bool {
	return err == windows.ERROR_LOCK_VIOLATION || err == windows.ERROR_IO_PENDING
}
