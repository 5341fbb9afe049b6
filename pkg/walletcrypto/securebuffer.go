package walletcrypto

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"sync"

	"github.com/coinbase/cb-wallet-crypto-go/internal/entropy"
	"github.com/coinbase/cb-wallet-crypto-go/internal/memlock"
	"github.com/coinbase/cb-wallet-crypto-go/pkg/walletcrypto/logging"
)

var (
	processLogger   logging.Logger = logging.Noop()
	processLoggerMu sync.Mutex
	lockFailureOnce sync.Once
)

// SetLogger installs the Logger used for the one-per-process page-lock
// failure notice. It is safe to call before any SecureBuffer is created;
// calling it later only affects subsequent failures.
func SetLogger(l logging.Logger) {
	processLoggerMu.Lock()
	defer processLoggerMu.Unlock()
	if l == nil {
		l = logging.Noop()
	}
	processLogger = l
}

func logger() logging.Logger {
	processLoggerMu.Lock()
	defer processLoggerMu.Unlock()
	return processLogger
}

// PageLockingSupported reports whether this build can actually page-lock a
// SecureBuffer's backing memory on the current platform. A false result
// means every SecureBuffer on this build runs unlocked; callers that care
// about that distinction (rather than just "did this one lock fail") should
// check it instead of reading a single buffer's IsLocked.
func PageLockingSupported() bool {
	return memlock.Supported()
}

func reportLockFailure(op string, err error) {
	lockFailureOnce.Do(func() {
		logger().Warn(context.Background(), "page-lock unavailable; continuing without it",
			"op", op, "error", err.Error())
	})
}

// SecureBuffer is a variable-length byte container that is page-locked
// while non-empty and zeroized before its backing storage is released.
// It is the substrate every other type in this package uses to carry
// secret material. It is not safe for concurrent use by multiple
// goroutines without external synchronization.
type SecureBuffer struct {
	data   []byte
	locked bool
}

func lockNewStorage(op string, data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if err := memlock.Lock(data); err != nil {
		reportLockFailure(op, err)
		return false
	}
	return true
}

func releaseStorage(data []byte, locked bool) {
	if len(data) == 0 {
		return
	}
	zeroBytes(data)
	if locked {
		_ = memlock.Unlock(data)
	}
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// NewSecureBuffer allocates a zero-initialized, page-locked buffer of the
// given size. size == 0 is valid and produces an empty, unlocked buffer.
func NewSecureBuffer(size int) *SecureBuffer {
	data := make([]byte, size)
	locked := lockNewStorage("NewSecureBuffer", data)
	return &SecureBuffer{data: data, locked: locked}
}

// SecureBufferFromBytes allocates a page-locked buffer and copies src into
// it without truncation. The caller's slice is not retained.
func SecureBufferFromBytes(src []byte) *SecureBuffer {
	data := make([]byte, len(src))
	copy(data, src)
	locked := lockNewStorage("SecureBufferFromBytes", data)
	return &SecureBuffer{data: data, locked: locked}
}

// SecureBufferFromHex parses an even-length hex string into a page-locked
// buffer. It fails with KindBadEncoding on odd length or a non-hex
// character.
func SecureBufferFromHex(text string) (*SecureBuffer, error) {
	if len(text)%2 != 0 {
		return nil, newErr("SecureBufferFromHex", KindBadEncoding, "odd-length hex string (%d chars)", len(text))
	}
	data, err := hex.DecodeString(text)
	if err != nil {
		return nil, newErr("SecureBufferFromHex", KindBadEncoding, "%w", err)
	}
	locked := lockNewStorage("SecureBufferFromHex", data)
	return &SecureBuffer{data: data, locked: locked}, nil
}

// GenerateRandomSecureBuffer fills a new page-locked buffer with n
// cryptographically strong random bytes drawn from src. A nil src uses the
// process default (crypto/rand). Fails with KindEntropyUnavailable if src
// cannot be read in full.
func GenerateRandomSecureBuffer(src entropy.Source, n int) (*SecureBuffer, error) {
	data := make([]byte, n)
	if err := entropy.Fill(src, data); err != nil {
		return nil, newErr("GenerateRandomSecureBuffer", KindEntropyUnavailable, "%w", err)
	}
	locked := lockNewStorage("GenerateRandomSecureBuffer", data)
	return &SecureBuffer{data: data, locked: locked}, nil
}

// Len returns the buffer's current logical length.
func (b *SecureBuffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// IsLocked reports whether the backing storage is currently page-locked.
// It is always false for an empty buffer.
func (b *SecureBuffer) IsLocked() bool {
	return b != nil && b.locked
}

// view returns the live backing slice for use inside this package only.
// Callers outside the package must go through Bytes, which copies.
func (b *SecureBuffer) view() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

// Bytes returns an independent copy of the buffer's contents, suitable for
// crossing the package boundary. The returned slice is ordinary memory: it
// is not locked and the caller is responsible for wiping it if it stays
// sensitive.
func (b *SecureBuffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// ToHex returns the hex encoding of the buffer's contents.
func (b *SecureBuffer) ToHex() string {
	return hex.EncodeToString(b.view())
}

// Resize changes the buffer's logical length to n. Growing zero-fills the
// new tail. Any reallocation zeroizes and unlocks the abandoned storage and
// re-locks the new storage.
func (b *SecureBuffer) Resize(n int) {
	if n == len(b.data) {
		return
	}
	newData := make([]byte, n)
	copy(newData, b.data)
	oldData, oldLocked := b.data, b.locked
	b.locked = lockNewStorage("Resize", newData)
	b.data = newData
	releaseStorage(oldData, oldLocked)
}

// Reserve grows the buffer through Resize: there is no separate capacity
// concept, so reserving n bytes simply ensures the buffer's length is at
// least n, extending with zeros if needed. Unlike Resize, it never shrinks.
func (b *SecureBuffer) Reserve(n int) {
	if n <= len(b.data) {
		return
	}
	b.Resize(n)
}

// Fill overwrites every byte of the buffer in place with v.
func (b *SecureBuffer) Fill(v byte) {
	for i := range b.data {
		b.data[i] = v
	}
}

// Clear zeroizes the backing storage, unlocks it, and sets the logical
// length to zero.
func (b *SecureBuffer) Clear() {
	if b == nil {
		return
	}
	releaseStorage(b.data, b.locked)
	b.data = nil
	b.locked = false
}

// Append copies other's contents onto the end of b, reallocating (and thus
// re-locking) the backing storage.
func (b *SecureBuffer) Append(other *SecureBuffer) {
	if other.Len() == 0 {
		return
	}
	newData := make([]byte, len(b.data)+other.Len())
	copy(newData, b.data)
	copy(newData[len(b.data):], other.view())
	oldData, oldLocked := b.data, b.locked
	b.locked = lockNewStorage("Append", newData)
	b.data = newData
	releaseStorage(oldData, oldLocked)
}

// Concat returns a new SecureBuffer holding b's contents followed by
// other's, leaving both inputs unmodified.
func (b *SecureBuffer) Concat(other *SecureBuffer) *SecureBuffer {
	out := make([]byte, b.Len()+other.Len())
	copy(out, b.view())
	copy(out[b.Len():], other.view())
	locked := lockNewStorage("Concat", out)
	return &SecureBuffer{data: out, locked: locked}
}

// Copy returns an independent, page-locked buffer with identical contents.
// Mutating the copy never affects the original and vice versa.
func (b *SecureBuffer) Copy() *SecureBuffer {
	return SecureBufferFromBytes(b.view())
}

// Equal reports whether two buffers have the same length and contents,
// using a constant-time comparison so the timing of the check does not
// leak information about where two buffers first differ.
func (b *SecureBuffer) Equal(other *SecureBuffer) bool {
	if b.Len() != other.Len() {
		return false
	}
	if b.Len() == 0 {
		return true
	}
	return subtle.ConstantTimeCompare(b.view(), other.view()) == 1
}
