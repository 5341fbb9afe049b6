package walletcrypto

import (
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/coinbase/cb-wallet-crypto-go/internal/entropy"
)

const (
	kdfHashOutputBytes  = 64 // SHA-512 digest size
	kdfOutputBytes      = 32 // derived key size
	kdfMinMemoryBytes   = 64
	kdfDefaultTarget    = 0.25
	kdfDefaultMaxMemory = 32 << 20 // 32 MiB
)

// KdfParams is the tuple that fully determines a KdfRomix derivation:
// memory footprint, iteration count, and salt. hashName/hashOutputBytes are
// fixed by this implementation (SHA-512, 64 bytes) and outputBytes is fixed
// at 32; they are not fields because there is nothing for a caller to vary.
type KdfParams struct {
	MemoryBytes uint32
	Iterations  uint32
	Salt        []byte
}

// SequenceCount returns memoryBytes / 64, the number of 64-byte slots in
// the ROMix lookup table.
func (p KdfParams) SequenceCount() uint32 {
	return p.MemoryBytes / kdfHashOutputBytes
}

func (p KdfParams) validate() error {
	if p.MemoryBytes < kdfMinMemoryBytes || p.MemoryBytes%kdfHashOutputBytes != 0 {
		return newErr("KdfParams", KindBadParams, "memory_bytes must be a positive multiple of %d (got %d)", kdfHashOutputBytes, p.MemoryBytes)
	}
	if p.Iterations < 1 {
		return newErr("KdfParams", KindBadParams, "iterations must be >= 1 (got %d)", p.Iterations)
	}
	if len(p.Salt) == 0 {
		return newErr("KdfParams", KindBadParams, "salt must not be empty")
	}
	return nil
}

// MarshalBinary implements the host wire contract from the external
// interfaces section: memory_bytes (uint32 LE), iterations (uint32 LE),
// salt_length (uint8), salt.
func (p KdfParams) MarshalBinary() ([]byte, error) {
	if len(p.Salt) > 255 {
		return nil, newErr("KdfParams.MarshalBinary", KindBadParams, "salt longer than 255 bytes (%d)", len(p.Salt))
	}
	out := make([]byte, 4+4+1+len(p.Salt))
	binary.LittleEndian.PutUint32(out[0:4], p.MemoryBytes)
	binary.LittleEndian.PutUint32(out[4:8], p.Iterations)
	out[8] = byte(len(p.Salt))
	copy(out[9:], p.Salt)
	return out, nil
}

// UnmarshalBinary is the inverse of MarshalBinary.
func (p *KdfParams) UnmarshalBinary(data []byte) error {
	if len(data) < 9 {
		return newErr("KdfParams.UnmarshalBinary", KindBadParams, "header too short (%d bytes)", len(data))
	}
	memoryBytes := binary.LittleEndian.Uint32(data[0:4])
	iterations := binary.LittleEndian.Uint32(data[4:8])
	saltLen := int(data[8])
	if len(data) < 9+saltLen {
		return newErr("KdfParams.UnmarshalBinary", KindBadParams, "truncated salt (want %d bytes)", saltLen)
	}
	salt := make([]byte, saltLen)
	copy(salt, data[9:9+saltLen])
	p.MemoryBytes = memoryBytes
	p.Iterations = iterations
	p.Salt = salt
	return nil
}

// KdfRomix is Colin Percival's ROMix construction applied over SHA-512: a
// memory-hard password -> key derivation. An instance owns a scratch lookup
// table sized to its parameters; the table is reused across Derive calls
// and is not safe for concurrent use on a single instance.
type KdfRomix struct {
	params KdfParams
	table  *SecureBuffer
}

// NewKdfRomix constructs a KdfRomix from explicit parameters, validating
// them against the edge cases in the data model (memory_bytes a positive
// multiple of 64, iterations >= 1).
func NewKdfRomix(params KdfParams) (*KdfRomix, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	return &KdfRomix{
		params: params,
		table:  NewSecureBuffer(int(params.MemoryBytes)),
	}, nil
}

// UsePrecomputedParams reconstructs a KdfRomix from parameters stored in a
// wallet header, bypassing calibration.
func UsePrecomputedParams(memoryBytes, iterations uint32, salt []byte) (*KdfRomix, error) {
	saltCopy := make([]byte, len(salt))
	copy(saltCopy, salt)
	return NewKdfRomix(KdfParams{MemoryBytes: memoryBytes, Iterations: iterations, Salt: saltCopy})
}

// Params returns the parameters this instance was constructed with.
func (k *KdfRomix) Params() KdfParams { return k.params }

// Close zeroizes the scratch lookup table. After Close, the instance must
// not be used again.
func (k *KdfRomix) Close() {
	if k == nil || k.table == nil {
		return
	}
	k.table.Clear()
}

// Derive applies DeriveOneIter k.params.Iterations times, feeding each
// iteration's output as the password to the next, and returns the final
// 32-byte derived key.
func (k *KdfRomix) Derive(password *SecureBuffer) (*SecureBuffer, error) {
	current := password
	owned := false
	for i := uint32(0); i < k.params.Iterations; i++ {
		next, err := k.deriveOneIter(current)
		if err != nil {
			if owned {
				current.Clear()
			}
			return nil, err
		}
		if owned {
			current.Clear()
		}
		current = next
		owned = true
	}
	return current, nil
}

// DeriveOneIter runs a single ROMix pass: fill the scratch table with a
// hash chain starting at H(password||salt), then mix sequenceCount times by
// XORing the running hash with a pseudorandomly indexed table entry and
// rehashing. It returns the first 32 bytes of the final hash.
func (k *KdfRomix) DeriveOneIter(password *SecureBuffer) (*SecureBuffer, error) {
	return k.deriveOneIter(password)
}

func (k *KdfRomix) deriveOneIter(password *SecureBuffer) (*SecureBuffer, error) {
	sequenceCount := k.params.SequenceCount()
	table := k.table.view()

	seed := sha512.New()
	seed.Write(password.view())
	seed.Write(k.params.Salt)
	x := seed.Sum(nil) // 64 bytes

	// Fill phase.
	for i := uint32(0); i < sequenceCount; i++ {
		copy(table[i*kdfHashOutputBytes:(i+1)*kdfHashOutputBytes], x)
		x = sha512Sum(x)
	}

	// Mix phase.
	for i := uint32(0); i < sequenceCount; i++ {
		v := binary.LittleEndian.Uint64(x[:8])
		j := uint32(v % uint64(sequenceCount))
		slot := table[j*kdfHashOutputBytes : (j+1)*kdfHashOutputBytes]
		mixed := make([]byte, kdfHashOutputBytes)
		for b := range mixed {
			mixed[b] = x[b] ^ slot[b]
		}
		x = sha512Sum(mixed)
	}

	return SecureBufferFromBytes(x[:kdfOutputBytes]), nil
}

func sha512Sum(data []byte) []byte {
	sum := sha512.Sum512(data)
	return sum[:]
}

// ComputeParams self-calibrates memory and iteration parameters so that a
// single Derive call runs within [targetSeconds/2, targetSeconds] on the
// current host, then returns a ready KdfRomix plus the parameters a host
// should persist. targetSeconds <= 0 defaults to 0.25s; maxMemory == 0
// defaults to 32 MiB.
func ComputeParams(src entropy.Source, targetSeconds float64, maxMemory uint32) (*KdfRomix, KdfParams, error) {
	if targetSeconds <= 0 {
		targetSeconds = kdfDefaultTarget
	}
	if maxMemory == 0 {
		maxMemory = kdfDefaultMaxMemory
	}

	salt := make([]byte, 32)
	if err := entropy.Fill(src, salt); err != nil {
		return nil, KdfParams{}, newErr("ComputeParams", KindEntropyUnavailable, "%w", err)
	}

	probe := SecureBufferFromBytes([]byte("kdf-romix-calibration-probe"))
	defer probe.Clear()

	memory := uint32(1024) // 16 sequence entries
	var lastElapsed time.Duration

	for {
		candidate, err := NewKdfRomix(KdfParams{MemoryBytes: memory, Iterations: 1, Salt: salt})
		if err != nil {
			return nil, KdfParams{}, err
		}
		start := time.Now()
		out, err := candidate.deriveOneIter(probe)
		lastElapsed = time.Since(start)
		candidate.Close()
		if err != nil {
			return nil, KdfParams{}, err
		}
		out.Clear()

		nextMemory := memory * 2
		if lastElapsed.Seconds() >= targetSeconds/4 || nextMemory > maxMemory || nextMemory < memory {
			break
		}
		memory = nextMemory
	}

	t1 := lastElapsed.Seconds()
	if t1 <= 0 {
		t1 = 1e-9
	}
	iterations := uint32(targetSeconds / t1)
	if iterations < 1 {
		iterations = 1
	}

	params := KdfParams{MemoryBytes: memory, Iterations: iterations, Salt: salt}
	kdf, err := NewKdfRomix(params)
	if err != nil {
		return nil, KdfParams{}, fmt.Errorf("walletcrypto: calibrated params rejected: %w", err)
	}
	return kdf, params, nil
}
