// Package credentials resolves and protects per-tenant payment-provider
// secrets. Values at rest carry an explicit encryption tag so a read never
// has to guess whether a string is ciphertext.
package credentials

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

// Encrypted values are stored as "enc:v1:<nonce>:<box>", both parts
// base64url. The fixed prefix makes IsEncrypted a literal check rather than a
// format heuristic, so a plaintext secret can never be misclassified.
const encPrefix = "enc:v1:"

const keySize = 32

var (
	ErrBadKey        = errors.New("encryption key must be 32 bytes of hex")
	ErrNotEncrypted  = errors.New("value is not in encrypted form")
	ErrDecryptFailed = errors.New("decryption failed")
)

// ParseKey decodes a 64-character hex string into a secretbox key.
func ParseKey(hexKey string) (*[keySize]byte, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(hexKey))
	if err != nil || len(raw) != keySize {
		return nil, ErrBadKey
	}
	var key [keySize]byte
	copy(key[:], raw)
	return &key, nil
}

// IsEncrypted reports whether the value already carries the encryption tag.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, encPrefix)
}

// Encrypt seals plaintext under the key. Values that already carry the tag
// are returned unchanged so copied pre-encrypted values are never
// double-encrypted.
func Encrypt(key *[keySize]byte, plaintext string) (string, error) {
	if IsEncrypted(plaintext) {
		return plaintext, nil
	}

	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	box := secretbox.Seal(nil, []byte(plaintext), &nonce, key)
	return encPrefix +
		base64.RawURLEncoding.EncodeToString(nonce[:]) + ":" +
		base64.RawURLEncoding.EncodeToString(box), nil
}

// Decrypt opens a tagged value. It returns ErrNotEncrypted for untagged
// input and ErrDecryptFailed for malformed or tampered ciphertext.
func Decrypt(key *[keySize]byte, value string) (string, error) {
	if !IsEncrypted(value) {
		return "", ErrNotEncrypted
	}

	parts := strings.Split(strings.TrimPrefix(value, encPrefix), ":")
	if len(parts) != 2 {
		return "", ErrDecryptFailed
	}

	rawNonce, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil || len(rawNonce) != 24 {
		return "", ErrDecryptFailed
	}
	box, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", ErrDecryptFailed
	}

	var nonce [24]byte
	copy(nonce[:], rawNonce)

	plaintext, ok := secretbox.Open(nil, box, &nonce, key)
	if !ok {
		return "", ErrDecryptFailed
	}
	return string(plaintext), nil
}
