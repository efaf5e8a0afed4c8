// Package clientcrypto seals locally persisted state (drafts) at rest.
package clientcrypto

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// KeyLen is the length of the device data key and of derived entry keys.
const KeyLen = 32

// Rand returns n cryptographically secure random bytes.
func Rand(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// DeriveEntryKey derives a per-entry key via HKDF-SHA256 using the entry name as info.
func DeriveEntryKey(dataKey, name []byte) ([]byte, error) {
	r := hkdf.New(sha256.New, dataKey, nil, name)
	key := make([]byte, KeyLen)
	_, err := r.Read(key)
	return key, err
}

// Seal encrypts plaintext with XChaCha20-Poly1305, random nonce, AAD = name.
func Seal(key, name, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce, err := Rand(chacha20poly1305.NonceSizeX)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)
	out = append(out, aead.Seal(nil, nonce, plaintext, name)...)
	return out, nil
}

// Open decrypts a blob produced by Seal with the same key and name.
func Open(key, name, blob []byte) ([]byte, error) {
	if len(blob) < chacha20poly1305.NonceSizeX {
		return nil, errors.New("blob too short")
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := blob[:chacha20poly1305.NonceSizeX]
	ct := blob[chacha20poly1305.NonceSizeX:]
	return aead.Open(nil, nonce, ct, name)
}

// Sealer seals named entries with keys derived from one device data key.
type Sealer struct {
	dataKey []byte
}

// NewSealer constructs a Sealer; the data key must be KeyLen bytes.
func NewSealer(dataKey []byte) (*Sealer, error) {
	if len(dataKey) != KeyLen {
		return nil, fmt.Errorf("data key: want %d bytes, got %d", KeyLen, len(dataKey))
	}
	return &Sealer{dataKey: append([]byte(nil), dataKey...)}, nil
}

// Seal encrypts plaintext for the named entry.
func (s *Sealer) Seal(name string, plaintext []byte) ([]byte, error) {
	key, err := DeriveEntryKey(s.dataKey, []byte(name))
	if err != nil {
		return nil, err
	}
	return Seal(key, []byte(name), plaintext)
}

// Open decrypts the named entry.
func (s *Sealer) Open(name string, blob []byte) ([]byte, error) {
	key, err := DeriveEntryKey(s.dataKey, []byte(name))
	if err != nil {
		return nil, err
	}
	return Open(key, []byte(name), blob)
}

// LoadOrCreateKey reads the device data key at path, generating it on first use.
func LoadOrCreateKey(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err == nil {
		if len(b) != KeyLen {
			return nil, fmt.Errorf("data key %s: bad length %d", path, len(b))
		}
		return b, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	key, err := Rand(KeyLen)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, err
	}
	return key, nil
}
