//go:build linux || darwin || freebsd || netbsd || openbsd

package memlock

import "golang.org/x/sys/unix"

// Lock pins buf's backing pages so the kernel will not swap them to disk.
// Locking an empty slice is a no-op success.
func Lock(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	return unix.Mlock(buf)
}

// Unlock releases a lock previously established by Lock. Unlocking an empty
// slice is a no-op success.
func Unlock(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	return unix.Munlock(buf)
}

// Supported reports whether this build can actually lock memory.
func Supported() bool { return true }
