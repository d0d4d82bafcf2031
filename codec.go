package trustgate

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// AESGCMCodec is the default [TransportCodec]: AES-256-GCM with the key
// derived from a shared secret via HKDF-SHA256. Envelopes are base64url
// (nonce || ciphertext). Validate checks that a decrypted payload is a JSON
// object before its fields may be trusted.
type AESGCMCodec struct {
	aead cipher.AEAD
}

// NewAESGCMCodec derives the envelope key from secret and returns a ready
// codec. The secret must be at least 16 bytes.
func NewAESGCMCodec(secret []byte) (*AESGCMCodec, error) {
	if len(secret) < 16 {
		return nil, errors.New("codec secret must be at least 16 bytes")
	}

	kdf := hkdf.New(sha256.New, secret, nil, []byte("trustgate-envelope-v1"))
	key := make([]byte, 32)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &AESGCMCodec{aead: aead}, nil
}

// Encrypt seals plain into an opaque envelope string.
func (c *AESGCMCodec) Encrypt(plain []byte) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := c.aead.Seal(nonce, nonce, plain, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens an opaque envelope string.
func (c *AESGCMCodec) Decrypt(opaque string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(opaque)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransportEnvelope, err)
	}
	if len(raw) < c.aead.NonceSize() {
		return nil, ErrTransportEnvelope
	}

	nonce, ciphertext := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransportEnvelope, err)
	}
	return plain, nil
}

// Validate reports whether plain is a well-formed JSON object.
func (c *AESGCMCodec) Validate(plain []byte) bool {
	if len(plain) == 0 || !json.Valid(plain) {
		return false
	}
	for _, b := range plain {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}
