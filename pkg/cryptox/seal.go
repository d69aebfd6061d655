package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrNoKeyMaterial is returned by LoadKey when neither a key file nor an
// environment value is available.
var ErrNoKeyMaterial = errors.New("cryptox: no key material configured")

// LoadKey derives a 32-byte key from either the file at path or, when path is
// empty, the value of the envVar environment variable. The raw material is
// hashed with SHA-256 so any length of secret can be used.
func LoadKey(path, envVar string) ([]byte, error) {
	var material []byte

	switch {
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read key file: %w", err)
		}
		material = data
	case envVar != "" && os.Getenv(envVar) != "":
		material = []byte(os.Getenv(envVar))
	default:
		return nil, ErrNoKeyMaterial
	}

	sum := sha256.Sum256(material)
	return sum[:], nil
}

// Sealer provides authenticated encryption with XChaCha20-Poly1305.
// Output format: [24-byte nonce][ciphertext][16-byte tag].
type Sealer struct {
	key []byte
}

// NewSealer builds a Sealer from a 32-byte key.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("cryptox: key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Sealer{key: k}, nil
}

// Seal encrypts and authenticates plaintext under a fresh random nonce.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal, failing if the data was tampered with or sealed under a
// different key.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, errors.New("cryptox: sealed data too short")
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}
	return plaintext, nil
}
