// Package filecrypt provides per-file symmetric encryption for stored
// payloads. One fresh key per object, AES-256-GCM, nonce prepended to the
// ciphertext. Keys travel as base64 strings because that is the format
// persisted on the catalog record.
package filecrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

const keyBytes = 32

var (
	// ErrInvalidKey indicates the key material is not valid base64 or has the
	// wrong length for AES-256.
	ErrInvalidKey = errors.New("invalid encryption key")
	// ErrMalformedCiphertext indicates the ciphertext is too short or failed
	// authentication for AES-GCM.
	ErrMalformedCiphertext = errors.New("malformed ciphertext")
)

// GenerateKey produces a fresh 256-bit key, base64-encoded.
func GenerateKey() (string, error) {
	raw := make([]byte, keyBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("read entropy: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Encrypt seals plaintext under the given key. The nonce is generated per
// call and prepended to the returned ciphertext.
func Encrypt(plaintext []byte, key string) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("read nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a ciphertext produced by Encrypt.
func Decrypt(ciphertext []byte, key string) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, ErrMalformedCiphertext
	}

	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrMalformedCiphertext
	}
	return plaintext, nil
}

func newGCM(key string) (cipher.AEAD, error) {
	raw, err := base64.StdEncoding.DecodeString(key)
	if err != nil || len(raw) != keyBytes {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, ErrInvalidKey
	}

	return cipher.NewGCM(block)
}
