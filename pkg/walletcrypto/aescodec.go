package walletcrypto

import (
	"crypto/aes"
	"crypto/cipher"
)

const aesIVLength = 16

func validAESKeyLength(n int) bool {
	return n == 16 || n == 24 || n == 32
}

// Encrypt encrypts plaintext with AES in CFB mode using key and iv. key
// must be 16, 24, or 32 bytes; iv must be exactly 16 bytes. The returned
// ciphertext has the same length as plaintext; neither input is mutated.
func Encrypt(plaintext, key, iv []byte) ([]byte, error) {
	block, err := newAESBlock("Encrypt", key, iv)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(plaintext))
	cipher.NewCFBEncrypter(block, iv).XORKeyStream(out, plaintext)
	return out, nil
}

// Decrypt is the exact inverse of Encrypt given the same (key, iv): it
// recovers plaintext of the same length as ciphertext.
func Decrypt(ciphertext, key, iv []byte) ([]byte, error) {
	block, err := newAESBlock("Decrypt", key, iv)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCFBDecrypter(block, iv).XORKeyStream(out, ciphertext)
	return out, nil
}

func newAESBlock(op string, key, iv []byte) (cipher.Block, error) {
	if !validAESKeyLength(len(key)) {
		return nil, newErr(op, KindBadKeyLength, "AES key must be 16, 24, or 32 bytes (got %d)", len(key))
	}
	if len(iv) != aesIVLength {
		return nil, newErr(op, KindBadIvLength, "AES IV must be exactly %d bytes (got %d)", aesIVLength, len(iv))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		// key length was already validated above; this can only fail on
		// an aes package invariant we do not otherwise model.
		return nil, newErr(op, KindBadKeyLength, "%w", err)
	}
	return block, nil
}

// EncryptSecure is a SecureBuffer-typed convenience wrapper around Encrypt
// for callers that keep plaintext, key, and IV in SecureBuffers end to end.
func EncryptSecure(plaintext, key, iv *SecureBuffer) (*SecureBuffer, error) {
	out, err := Encrypt(plaintext.view(), key.view(), iv.view())
	if err != nil {
		return nil, err
	}
	return SecureBufferFromBytes(out), nil
}

// DecryptSecure is the SecureBuffer-typed counterpart to EncryptSecure.
func DecryptSecure(ciphertext, key, iv *SecureBuffer) (*SecureBuffer, error) {
	out, err := Decrypt(ciphertext.view(), key.view(), iv.view())
	if err != nil {
		return nil, err
	}
	return SecureBufferFromBytes(out), nil
}
