package crypto

import (
	"bytes"
	"testing"
)

func TestDeriveKeyDeterministic(t *testing.T) {
	a := DeriveKey("correct horse battery staple", "user-42")
	b := DeriveKey("correct horse battery staple", "user-42")

	if len(a) != 32 {
		t.Fatalf("key length = %d, want 32", len(a))
	}
	if !bytes.Equal(a, b) {
		t.Error("same password and salt must yield byte-identical keys")
	}
}

func TestDeriveKeySaltSeparation(t *testing.T) {
	// Two users with the same password must not share a key.
	a := DeriveKey("same password", "user-1")
	b := DeriveKey("same password", "user-2")
	if bytes.Equal(a, b) {
		t.Error("different salts must yield different keys")
	}

	c := DeriveKey("other password", "user-1")
	if bytes.Equal(a, c) {
		t.Error("different passwords must yield different keys")
	}
}
