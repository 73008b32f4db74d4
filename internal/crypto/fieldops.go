package crypto

// Field-level operations the entity codecs are built from. Each codec
// decides WHICH fields of its entity are sensitive; these helpers handle
// the per-value rules that are the same everywhere:
//
//   - a nil key is the degraded mode (no session key cached): every
//     operation is a pass-through, reads return whatever is stored and
//     writes persist plaintext;
//   - sealing is idempotent: an already-enveloped value is never
//     double-wrapped;
//   - empty values are never enveloped.

// SealField encrypts a single field value for storage. No-op when the
// value is empty, already enveloped, or no key is available.
func SealField(s string, key []byte) (string, error) {
	if key == nil || s == "" || IsEncrypted(s) {
		return s, nil
	}
	return EncryptField(s, key)
}

// OpenField decrypts a stored field value. Plaintext and the nil-key
// degraded mode pass through unchanged. A marked value that fails to open
// returns "" with ErrMalformedEnvelope or ErrDecryptFailed -- the caller
// logs and keeps the empty value rather than failing the request.
func OpenField(s string, key []byte) (string, error) {
	if key == nil {
		return s, nil
	}
	return DecryptField(s, key)
}

// ResealField re-encrypts a stored value from oldKey to newKey, for
// password changes. Plaintext (written during a degraded-mode session)
// gets sealed under the new key. A value that cannot be opened under
// oldKey is already corrupt; it is carried unchanged instead of being
// destroyed.
func ResealField(s string, oldKey, newKey []byte) string {
	if s == "" {
		return s
	}
	if IsEncrypted(s) {
		pt, err := DecryptField(s, oldKey)
		if err != nil {
			return s
		}
		s = pt
	}
	sealed, err := EncryptField(s, newKey)
	if err != nil {
		return s
	}
	return sealed
}
