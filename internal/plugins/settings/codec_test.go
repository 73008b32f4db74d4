package settings

import (
	"testing"

	"github.com/tavernhq/tavern/internal/crypto"
)

func testSettings() *Settings {
	active := "p1"
	temp := 0.8
	return &Settings{
		Providers: []Provider{
			{ID: "p1", Name: "OpenAI", BaseURL: "https://api.openai.com/v1", APIKey: "sk-live-abc123"},
			{ID: "p2", Name: "Local", BaseURL: "http://localhost:11434/v1", APIKey: ""},
		},
		ActiveProviderID: &active,
		MP: &ModelParams{
			Temperature:  &temp,
			GlobalSystem: "Always answer in character.",
		},
		Language: "en",
	}
}

func TestSettingsCodecRoundTrip(t *testing.T) {
	key := crypto.DeriveKey("hunter2", "user-1")
	in := testSettings()

	enc := encryptSettings(in, key, "user-1")

	if !crypto.IsEncrypted(enc.Providers[0].APIKey) {
		t.Error("apiKey must be enveloped at rest")
	}
	if enc.Providers[1].APIKey != "" {
		t.Error("empty apiKey must stay empty")
	}
	if !crypto.IsEncrypted(enc.MP.GlobalSystem) {
		t.Error("globalSystem must be enveloped at rest")
	}
	// Non-sensitive fields are untouched.
	if enc.Providers[0].BaseURL != in.Providers[0].BaseURL || enc.Language != "en" {
		t.Error("non-sensitive fields must pass through bit-identical")
	}
	if *enc.ActiveProviderID != "p1" || *enc.MP.Temperature != 0.8 {
		t.Error("metadata must pass through untouched")
	}

	dec := decryptSettings(enc, key, "user-1")
	if dec.Providers[0].APIKey != "sk-live-abc123" {
		t.Errorf("apiKey round trip mismatch: %q", dec.Providers[0].APIKey)
	}
	if dec.MP.GlobalSystem != "Always answer in character." {
		t.Errorf("globalSystem round trip mismatch: %q", dec.MP.GlobalSystem)
	}
}

func TestSettingsCodecIdempotentEncrypt(t *testing.T) {
	key := crypto.DeriveKey("hunter2", "user-1")

	once := encryptSettings(testSettings(), key, "user-1")
	twice := encryptSettings(once, key, "user-1")

	if once.Providers[0].APIKey != twice.Providers[0].APIKey {
		t.Error("double encryption must yield the same envelope, not a double wrap")
	}
	if once.MP.GlobalSystem != twice.MP.GlobalSystem {
		t.Error("double encryption must be a no-op on globalSystem")
	}
}

func TestSettingsCodecMissingKeyDegrade(t *testing.T) {
	in := testSettings()

	enc := encryptSettings(in, nil, "user-1")
	if enc.Providers[0].APIKey != "sk-live-abc123" {
		t.Error("nil key must store the apiKey verbatim, not an envelope")
	}

	// Reads without a key return stored envelopes verbatim -- opaque, but
	// never silently decrypted.
	key := crypto.DeriveKey("hunter2", "user-1")
	stored := encryptSettings(in, key, "user-1")
	out := decryptSettings(stored, nil, "user-1")
	if out.Providers[0].APIKey != stored.Providers[0].APIKey {
		t.Error("nil key read must return the envelope unchanged")
	}
}

func TestSettingsCodecWrongKeyCollapsesField(t *testing.T) {
	k1 := crypto.DeriveKey("password-one", "user-1")
	k2 := crypto.DeriveKey("password-two", "user-1")

	enc := encryptSettings(testSettings(), k1, "user-1")
	dec := decryptSettings(enc, k2, "user-1")

	if dec.Providers[0].APIKey != "" {
		t.Errorf("wrong-key decrypt must collapse to empty, got %q", dec.Providers[0].APIKey)
	}
	// The request-level data survives: other fields intact.
	if dec.Providers[0].Name != "OpenAI" {
		t.Error("non-sensitive fields must survive a failed field decrypt")
	}
}

func TestReencryptSettings(t *testing.T) {
	oldKey := crypto.DeriveKey("old password", "user-1")
	newKey := crypto.DeriveKey("new password", "user-1")

	stored := encryptSettings(testSettings(), oldKey, "user-1")
	resealed := reencryptSettings(stored, oldKey, newKey)

	dec := decryptSettings(resealed, newKey, "user-1")
	if dec.Providers[0].APIKey != "sk-live-abc123" {
		t.Error("apiKey must be readable under the new key after reseal")
	}
	if dec.MP.GlobalSystem != "Always answer in character." {
		t.Error("globalSystem must be readable under the new key after reseal")
	}
}
