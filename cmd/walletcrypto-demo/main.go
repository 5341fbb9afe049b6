// Command walletcrypto-demo exercises the full wallet-crypto pipeline end
// to end: derive a key from a password, encrypt a freshly generated
// private key under that derived key, decrypt it back, and sign a message
// with the recovered key.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/coinbase/cb-wallet-crypto-go/pkg/walletcrypto"
	"github.com/coinbase/cb-wallet-crypto-go/pkg/walletcrypto/logging"
)

func main() {
	password := flag.String("password", "correct horse battery staple", "wallet password to derive a key from")
	message := flag.String("message", "hello wallet", "message to sign with the recovered key")
	flag.Parse()

	walletcrypto.SetLogger(logging.New(slog.Default()))
	fmt.Printf("page locking supported on this platform: %t\n", walletcrypto.PageLockingSupported())

	if err := run(*password, *message); err != nil {
		log.Fatalf("walletcrypto-demo: %v", err)
	}
}

func run(password, message string) error {
	passwordBuf := walletcrypto.SecureBufferFromBytes([]byte(password))
	defer passwordBuf.Clear()

	kdf, params, err := walletcrypto.ComputeParams(nil, 0.1, 4<<20)
	if err != nil {
		return fmt.Errorf("compute kdf params: %w", err)
	}
	defer kdf.Close()
	fmt.Printf("kdf params: memory=%d bytes, iterations=%d, salt=%s\n",
		params.MemoryBytes, params.Iterations, hex.EncodeToString(params.Salt))

	derivedKey, err := kdf.Derive(passwordBuf)
	if err != nil {
		return fmt.Errorf("derive key: %w", err)
	}
	defer derivedKey.Clear()

	engine := walletcrypto.NewEcdsaEngine()
	priv, err := engine.GeneratePrivateKey()
	if err != nil {
		return fmt.Errorf("generate private key: %w", err)
	}
	defer priv.Clear()

	iv, err := walletcrypto.GenerateRandomSecureBuffer(nil, 16)
	if err != nil {
		return fmt.Errorf("generate iv: %w", err)
	}
	defer iv.Clear()

	ciphertext, err := walletcrypto.EncryptSecure(priv, derivedKey, iv)
	if err != nil {
		return fmt.Errorf("encrypt private key: %w", err)
	}
	defer ciphertext.Clear()
	fmt.Printf("encrypted private key: %s\n", ciphertext.ToHex())

	recoveredPriv, err := walletcrypto.DecryptSecure(ciphertext, derivedKey, iv)
	if err != nil {
		return fmt.Errorf("decrypt private key: %w", err)
	}
	defer recoveredPriv.Clear()

	if !recoveredPriv.Equal(priv) {
		return fmt.Errorf("recovered private key does not match the original")
	}

	pub, err := engine.ComputePublicKey(recoveredPriv)
	if err != nil {
		return fmt.Errorf("compute public key: %w", err)
	}
	fmt.Printf("public key: %s\n", hex.EncodeToString(pub))

	sig, err := engine.Sign([]byte(message), recoveredPriv)
	if err != nil {
		return fmt.Errorf("sign message: %w", err)
	}
	fmt.Printf("signature: %s\n", hex.EncodeToString(sig))

	if !engine.Verify([]byte(message), sig, pub) {
		return fmt.Errorf("signature failed to verify")
	}
	fmt.Fprintln(os.Stdout, "signature verified OK")
	return nil
}
