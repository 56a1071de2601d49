// File: internal/infra/security/encryption_service.go
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// sealedPrefix marks sealed values so stores written before encryption was
// switched on can still be read.
const sealedPrefix = "enc:v1:"

var ErrCiphertext = errors.New("invalid ciphertext")

// EncryptionService seals values with AES-GCM. Every value is bound to a
// label (the store key) through the GCM additional data, so a sealed value
// copied under another key fails to open.
//
// Sealed form: "enc:v1:" + base64(nonce || ciphertext || tag).
type EncryptionService struct {
	aead cipher.AEAD
}

// NewEncryptionService accepts a 16, 24 or 32 byte key (AES-128/192/256).
func NewEncryptionService(key string) (*EncryptionService, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("encryption key must be 16, 24 or 32 bytes; got %d", len(key))
	}
	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("aes cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm: %w", err)
	}
	return &EncryptionService{aead: aead}, nil
}

// Seal encrypts plaintext under label.
func (e *EncryptionService) Seal(label, plaintext string) (string, error) {
	buf := make([]byte, e.aead.NonceSize(), e.aead.NonceSize()+len(plaintext)+e.aead.Overhead())
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	buf = e.aead.Seal(buf, buf, []byte(plaintext), []byte(label))
	return sealedPrefix + base64.StdEncoding.EncodeToString(buf), nil
}

// Open reverses Seal. Every failure wraps ErrCiphertext.
func (e *EncryptionService) Open(label, sealed string) (string, error) {
	body, ok := strings.CutPrefix(sealed, sealedPrefix)
	if !ok {
		return "", fmt.Errorf("%w: missing %q prefix", ErrCiphertext, sealedPrefix)
	}
	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCiphertext, err)
	}
	ns := e.aead.NonceSize()
	if len(raw) < ns+e.aead.Overhead() {
		return "", fmt.Errorf("%w: %d bytes is too short", ErrCiphertext, len(raw))
	}
	plain, err := e.aead.Open(nil, raw[:ns], raw[ns:], []byte(label))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCiphertext, err)
	}
	return string(plain), nil
}

// IsSealed reports whether v carries the sealed prefix.
func IsSealed(v string) bool { return strings.HasPrefix(v, sealedPrefix) }
