// Package memlock advises the OS not to page a byte slice's backing memory
// to disk. Locking is a hardening measure, not a correctness requirement:
// every exported function reports failure so the caller can log it once, but
// callers must never treat a failure as fatal.
//
// The package is split the same way the cb-mpc bindings split cgo and
// non-cgo builds: memlock_unix.go carries the real mlock(2)/munlock(2) calls
// (via golang.org/x/sys/unix) on linux, darwin, freebsd, netbsd and openbsd,
// memlock_stub.go is the fallback everywhere else.
package memlock
