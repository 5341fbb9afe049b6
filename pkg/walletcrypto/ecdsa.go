package walletcrypto

import (
	"crypto/sha256"
	"crypto/subtle"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/coinbase/cb-wallet-crypto-go/internal/entropy"
)

// Sizes fixed by the secp256k1 curve and the SHA-256 digest used for
// signing: a private key is a 32-byte scalar, an uncompressed public key is
// a 0x04 prefix plus two 32-byte coordinates, and a signature is r||s.
const (
	PrivateKeyLength = 32
	PublicKeyLength  = 65
	SignatureLength  = 64
)

// EcdsaEngine performs secp256k1 ECDSA key generation, parsing,
// serialization, signing, and verification with a SHA-256 digest. The only
// state it carries is its injected entropy source, so it is safe for
// concurrent use from multiple goroutines.
type EcdsaEngine struct {
	src entropy.Source
}

// NewEcdsaEngine returns an engine backed by the process default entropy
// source (crypto/rand).
func NewEcdsaEngine() *EcdsaEngine {
	return &EcdsaEngine{src: entropy.Default}
}

// NewEcdsaEngineWithSource returns an engine backed by a caller-supplied
// entropy source, letting tests inject deterministic randomness for
// GeneratePrivateKey.
func NewEcdsaEngineWithSource(src entropy.Source) *EcdsaEngine {
	if src == nil {
		src = entropy.Default
	}
	return &EcdsaEngine{src: src}
}

func isAllZeroBytes(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// GeneratePrivateKey returns a uniform random scalar in [1, n-1], rejection
// sampling any draw that is zero or >= the curve order.
func (e *EcdsaEngine) GeneratePrivateKey() (*SecureBuffer, error) {
	candidate := make([]byte, PrivateKeyLength)
	defer zeroBytes(candidate)

	for {
		if err := entropy.Fill(e.src, candidate); err != nil {
			return nil, newErr("GeneratePrivateKey", KindEntropyUnavailable, "%w", err)
		}
		var scalar secp256k1.ModNScalar
		overflow := scalar.SetByteSlice(candidate)
		if overflow || scalar.IsZero() {
			continue
		}
		scalarBytes := scalar.Bytes()
		out := SecureBufferFromBytes(scalarBytes[:])
		zeroBytes(scalarBytes[:])
		scalar.Zero()
		return out, nil
	}
}

// parsePrivateKeyScalar validates priv's bytes as a scalar in [1, n-1]. The
// caller owns the returned scalar and should Zero it once finished.
func parsePrivateKeyScalar(priv *SecureBuffer) (*secp256k1.ModNScalar, error) {
	b := priv.view()
	if len(b) != PrivateKeyLength {
		return nil, newErr("ParsePrivateKey", KindBadKeyFormat, "private key must be %d bytes (got %d)", PrivateKeyLength, len(b))
	}
	var scalar secp256k1.ModNScalar
	overflow := scalar.SetByteSlice(b)
	if overflow || scalar.IsZero() {
		return nil, newErr("ParsePrivateKey", KindOutOfRange, "scalar must lie in [1, n-1]")
	}
	return &scalar, nil
}

// ParsePrivateKey validates that priv holds a well-formed 32-byte scalar in
// [1, n-1], without returning anything new: it exists so callers can
// validate a decrypted blob before using it.
func (e *EcdsaEngine) ParsePrivateKey(priv *SecureBuffer) error {
	scalar, err := parsePrivateKeyScalar(priv)
	if err != nil {
		return err
	}
	scalar.Zero()
	return nil
}

// SerializePrivateKey returns an independent copy of priv's 32-byte
// big-endian scalar in a fresh SecureBuffer.
func (e *EcdsaEngine) SerializePrivateKey(priv *SecureBuffer) (*SecureBuffer, error) {
	if err := e.ParsePrivateKey(priv); err != nil {
		return nil, err
	}
	return priv.Copy(), nil
}

// parsePublicKeyBytes validates the uncompressed 0x04||X||Y encoding and
// returns the parsed point.
func parsePublicKeyBytes(op string, data []byte) (*secp256k1.PublicKey, error) {
	if len(data) != PublicKeyLength {
		return nil, newErr(op, KindBadKeyFormat, "public key must be %d bytes (got %d)", PublicKeyLength, len(data))
	}
	if isAllZeroBytes(data) {
		return nil, newErr(op, KindIsIdentity, "public key is the point at infinity")
	}
	if data[0] != 0x04 {
		return nil, newErr(op, KindBadKeyFormat, "uncompressed public key must start with 0x04 (got 0x%02x)", data[0])
	}
	pub, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return nil, newErr(op, KindNotOnCurve, "%w", err)
	}
	return pub, nil
}

// ParsePublicKey validates a 65-byte 0x04-prefixed uncompressed public key
// and returns its canonical serialization.
func (e *EcdsaEngine) ParsePublicKey(data []byte) ([]byte, error) {
	pub, err := parsePublicKeyBytes("ParsePublicKey", data)
	if err != nil {
		return nil, err
	}
	return pub.SerializeUncompressed(), nil
}

// ParsePublicKeyXY validates a public key given as separate 32-byte X and Y
// coordinates (no 0x04 prefix) and returns the canonical 65-byte
// uncompressed serialization.
func (e *EcdsaEngine) ParsePublicKeyXY(x, y []byte) ([]byte, error) {
	if len(x) != 32 || len(y) != 32 {
		return nil, newErr("ParsePublicKeyXY", KindBadKeyFormat, "x and y must each be 32 bytes")
	}
	if isAllZeroBytes(x) && isAllZeroBytes(y) {
		return nil, newErr("ParsePublicKeyXY", KindIsIdentity, "point is the identity")
	}
	buf := make([]byte, PublicKeyLength)
	buf[0] = 0x04
	copy(buf[1:33], x)
	copy(buf[33:65], y)
	pub, err := secp256k1.ParsePubKey(buf)
	if err != nil {
		return nil, newErr("ParsePublicKeyXY", KindNotOnCurve, "%w", err)
	}
	return pub.SerializeUncompressed(), nil
}

// SerializePublicKey validates and re-serializes a public key to its
// canonical 65-byte uncompressed form.
func (e *EcdsaEngine) SerializePublicKey(pub []byte) ([]byte, error) {
	return e.ParsePublicKey(pub)
}

// ComputePublicKey returns P = k*G for the scalar held in priv.
func (e *EcdsaEngine) ComputePublicKey(priv *SecureBuffer) ([]byte, error) {
	scalar, err := parsePrivateKeyScalar(priv)
	if err != nil {
		return nil, err
	}
	defer scalar.Zero()
	pubKey := secp256k1.NewPrivateKey(scalar).PubKey()
	return pubKey.SerializeUncompressed(), nil
}

// CheckMatch reports whether ComputePublicKey(priv) equals pub byte-for-byte.
func (e *EcdsaEngine) CheckMatch(priv *SecureBuffer, pub []byte) (bool, error) {
	computed, err := e.ComputePublicKey(priv)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(computed, pub) == 1, nil
}

// Sign hashes message with SHA-256 and produces a 64-byte r||s signature
// using an RFC 6979 deterministic nonce. Signing cannot fail once priv
// validates: the underlying retry-on-zero cases have negligible probability.
func (e *EcdsaEngine) Sign(message []byte, priv *SecureBuffer) ([]byte, error) {
	scalar, err := parsePrivateKeyScalar(priv)
	if err != nil {
		return nil, err
	}
	defer scalar.Zero()

	privKey := secp256k1.NewPrivateKey(scalar)
	digest := sha256.Sum256(message)

	// SignCompact's output is [recovery_id(1) || r(32) || s(32)] with s
	// already normalized to the curve's low half; dropping the recovery
	// byte leaves exactly the r||s contract this package fixes.
	compact := ecdsa.SignCompact(privKey, digest[:], false)
	sig := make([]byte, SignatureLength)
	copy(sig, compact[1:])
	return sig, nil
}

// Verify reports whether signature is a valid secp256k1/SHA-256 signature
// of message under pub. Any parse failure (bad lengths, r or s out of
// range, pub not on the curve) is reported as false, not an error.
func (e *EcdsaEngine) Verify(message, signature, pub []byte) bool {
	if len(signature) != SignatureLength {
		return false
	}
	pubKey, err := secp256k1.ParsePubKey(pub)
	if err != nil {
		return false
	}

	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(signature[:32]); overflow || r.IsZero() {
		return false
	}
	if overflow := s.SetByteSlice(signature[32:]); overflow || s.IsZero() {
		return false
	}

	digest := sha256.Sum256(message)
	return ecdsa.NewSignature(&r, &s).Verify(digest[:], pubKey)
}
