package crypto

import (
	"bytes"
	"sync"
	"testing"
)

func TestSessionKeyStorePutGet(t *testing.T) {
	ks := NewSessionKeyStore()

	if _, ok := ks.Get("user-1"); ok {
		t.Error("empty store must report absent key")
	}

	key := DeriveKey("hunter2", "user-1")
	ks.Put("user-1", key)

	got, ok := ks.Get("user-1")
	if !ok {
		t.Fatal("key missing after Put")
	}
	if !bytes.Equal(got, key) {
		t.Error("stored key does not match")
	}

	// A fresh login overwrites the previous entry.
	newKey := DeriveKey("new-password", "user-1")
	ks.Put("user-1", newKey)
	got, _ = ks.Get("user-1")
	if !bytes.Equal(got, newKey) {
		t.Error("Put must replace the existing key")
	}
}

func TestSessionKeyStoreEvict(t *testing.T) {
	ks := NewSessionKeyStore()
	ks.Put("user-1", DeriveKey("hunter2", "user-1"))

	ks.Evict("user-1")
	if _, ok := ks.Get("user-1"); ok {
		t.Error("key still present after Evict")
	}

	// Evicting an absent entry is a no-op.
	ks.Evict("user-1")
}

func TestSessionKeyStoreCopiesKey(t *testing.T) {
	ks := NewSessionKeyStore()
	key := DeriveKey("hunter2", "user-1")
	ks.Put("user-1", key)

	// Mutating the caller's slice must not corrupt the stored key.
	key[0] ^= 0xff
	got, _ := ks.Get("user-1")
	if bytes.Equal(got, key) {
		t.Error("store must hold its own copy of the key")
	}
}

func TestSessionKeyStoreConcurrent(t *testing.T) {
	ks := NewSessionKeyStore()
	key := DeriveKey("hunter2", "shared")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ks.Put("shared", key)
		}()
		go func() {
			defer wg.Done()
			ks.Get("shared")
		}()
	}
	wg.Wait()
}
