// Package crypto implements Tavern's per-user field encryption at rest:
// key derivation from login credentials, the AES-256-GCM field cipher and
// its envelope format, and the in-memory session key store.
//
// The encryption key is a pure function of the user's plaintext password
// and is recomputed at every login. It is never written to disk -- after a
// process restart, encrypted fields stay opaque until the user logs in
// again.
package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

// KDF parameters. These are frozen: changing them makes every key derived
// so far underivable, which orphans all existing ciphertext.
const (
	kdfIterations = 100_000
	keyLen        = 32
)

// DeriveKey derives a 32-byte AES-256 key from a login password using
// PBKDF2-SHA256. The salt is the user's ID -- not a random salt, but unique
// per user, and the iteration count dominates the cost of brute-forcing a
// key from leaked ciphertext. The salt choice cannot change without a data
// migration, since the key must be derivable from login credentials alone.
func DeriveKey(password, salt string) []byte {
	return pbkdf2.Key([]byte(password), []byte(salt), kdfIterations, keyLen, sha256.New)
}
