// Package walletcrypto provides the cryptographic core of a wallet-security
// library: a memory-hard key-derivation function, a secret-handling
// primitive that keeps sensitive bytes out of swap and wipes them on
// release, symmetric encryption of wallet material, and secp256k1
// ECDSA signing/verification.
//
// # Architecture
//
// Four components, leaves first:
//
//	SecureBuffer  page-locked, zeroizing byte container; substrate for every secret.
//	KdfRomix      ROMix-style memory-hard password -> key derivation.
//	AesCodec      AES-CFB encrypt/decrypt of wallet material.
//	EcdsaEngine   secp256k1 keygen, parse/serialize, sign, verify.
//
// A user password is held in a SecureBuffer and passed into KdfRomix, which
// yields a derived key (also a SecureBuffer). That key, with a caller-chosen
// IV, drives AesCodec to encrypt or decrypt a private-key blob. The
// decrypted blob is parsed by EcdsaEngine to sign messages. No component
// retains a reference into another's internal state; SecureBuffers cross
// every boundary by value.
//
// Example:
//
//	password := walletcrypto.SecureBufferFromBytes([]byte("correct horse battery staple"))
//	defer password.Clear()
//
//	kdf, params, err := walletcrypto.ComputeParams(nil, 0.25, 32<<20)
//	defer kdf.Close()
//
//	key, err := kdf.Derive(password)
//	defer key.Clear()
//
//	engine := walletcrypto.NewEcdsaEngine()
//	priv, err := engine.GeneratePrivateKey()
//	defer priv.Clear()
//
//	iv, err := walletcrypto.GenerateRandomSecureBuffer(nil, 16)
//	ciphertext, err := walletcrypto.EncryptSecure(priv, key, iv)
//
// # Security considerations
//
//   - SecureBuffer is not internally synchronized; shared mutation across
//     goroutines requires external coordination.
//   - KdfRomix holds a per-instance scratch lookup table and is therefore
//     not safe for concurrent Derive calls on the same instance. Distinct
//     instances are independent.
//   - AesCodec and EcdsaEngine carry no mutable state and are safe for
//     concurrent use.
//   - Page-locking is advisory hardening, not a confidentiality guarantee;
//     a lock failure is logged once per process and otherwise ignored.
//
// This package has no wire protocol, CLI, or persisted format of its own;
// wallet-file formats, address encoding, transaction construction, and
// network I/O are the host's responsibility.
package walletcrypto
