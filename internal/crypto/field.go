package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// envPrefix marks a string as an encrypted field envelope. Any string not
// starting with it is treated as plaintext by DecryptField.
const envPrefix = "enc:"

// gcmNonceSize is the standard GCM nonce size (96 bits). A fresh random
// nonce is drawn per encryption; collision over realistic field counts is
// negligible, and nonce reuse under one key never happens.
const gcmNonceSize = 12

// Sentinel errors for the two ways an envelope can fail to open. Callers
// recover from both by dropping the field, but the distinction matters for
// logging: a malformed envelope or failed authentication means corruption
// or tampering, which operators should see.
var (
	// ErrMalformedEnvelope means the string carried the enc: marker but
	// its segments could not be parsed (wrong count, bad hex).
	ErrMalformedEnvelope = errors.New("malformed field envelope")

	// ErrDecryptFailed means authentication failed: wrong key, or the
	// nonce/tag/ciphertext was tampered with.
	ErrDecryptFailed = errors.New("field decryption failed")
)

// IsEncrypted reports whether s is a stored field envelope. Codecs check
// this before encrypting so that re-saving a record is a no-op on fields
// that are already enveloped.
func IsEncrypted(s string) bool {
	return strings.HasPrefix(s, envPrefix)
}

// EncryptField encrypts one sensitive string value with AES-256-GCM and
// serializes it as a self-contained envelope:
//
//	enc:<nonce-hex>:<tag-hex>:<ciphertext-hex>
//
// The format is frozen -- any change breaks all previously written data.
// The envelope carries everything decryption needs besides the key.
func EncryptField(plaintext string, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}

	gcm, err := cipher.NewGCMWithNonceSize(block, gcmNonceSize)
	if err != nil {
		return "", fmt.Errorf("creating GCM: %w", err)
	}

	nonce := make([]byte, gcmNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	// Seal appends the 16-byte auth tag to the ciphertext; the envelope
	// stores them as separate segments.
	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	tagStart := len(sealed) - gcm.Overhead()
	ct, tag := sealed[:tagStart], sealed[tagStart:]

	return envPrefix + hex.EncodeToString(nonce) + ":" + hex.EncodeToString(tag) + ":" + hex.EncodeToString(ct), nil
}

// DecryptField reverses EncryptField. Strings without the enc: marker are
// returned unchanged -- required for data written before encryption
// existed, and for the degraded mode where no key was cached at write
// time. A marked string that cannot be opened fails closed: the empty
// string is returned together with ErrMalformedEnvelope or
// ErrDecryptFailed, and no partial plaintext ever escapes.
func DecryptField(s string, key []byte) (string, error) {
	if !IsEncrypted(s) {
		return s, nil
	}

	parts := strings.Split(s[len(envPrefix):], ":")
	if len(parts) != 3 {
		return "", ErrMalformedEnvelope
	}

	nonce, err := hex.DecodeString(parts[0])
	if err != nil || len(nonce) != gcmNonceSize {
		return "", ErrMalformedEnvelope
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", ErrMalformedEnvelope
	}
	ct, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", ErrMalformedEnvelope
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", ErrDecryptFailed
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, gcmNonceSize)
	if err != nil {
		return "", ErrDecryptFailed
	}
	if len(tag) != gcm.Overhead() {
		return "", ErrMalformedEnvelope
	}

	// Open expects the tag appended to the ciphertext.
	plaintext, err := gcm.Open(nil, nonce, append(ct, tag...), nil)
	if err != nil {
		return "", ErrDecryptFailed
	}
	return string(plaintext), nil
}
