package clientcrypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for deriving the data key on the device.
const (
	argonTime    uint32 = 3         // iterations
	argonMemory  uint32 = 64 * 1024 // 64 MB
	argonThreads uint8  = 1
	saltLen             = 16
)

// ErrWrongPassphrase means the passphrase does not match the stored verifier.
var ErrWrongPassphrase = errors.New("wrong draft passphrase")

// KeyFromPassphrase returns the Argon2id data key for passphrase and salt.
func KeyFromPassphrase(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, argonTime, argonMemory, argonThreads, KeyLen)
}

// verifier lets a wrong passphrase be told apart from a corrupt draft.
func verifier(key, salt []byte) []byte {
	h := sha256.New()
	h.Write([]byte("shiftreport/verifier"))
	h.Write(salt)
	h.Write(key)
	return h.Sum(nil)
}

// PassphraseKey derives the data key from passphrase. The salt and a verifier
// are kept in the file at path (salt || verifier), created on first use.
func PassphraseKey(passphrase, path string) ([]byte, error) {
	if passphrase == "" {
		return nil, errors.New("empty passphrase")
	}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if len(b) != saltLen+sha256.Size {
			return nil, fmt.Errorf("salt file %s: bad length %d", path, len(b))
		}
		salt, want := b[:saltLen], b[saltLen:]
		key := KeyFromPassphrase([]byte(passphrase), salt)
		if subtle.ConstantTimeCompare(verifier(key, salt), want) != 1 {
			return nil, ErrWrongPassphrase
		}
		return key, nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	salt, err := Rand(saltLen)
	if err != nil {
		return nil, err
	}
	key := KeyFromPassphrase([]byte(passphrase), salt)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, append(salt, verifier(key, salt)...), 0o600); err != nil {
		return nil, err
	}
	return key, nil
}
