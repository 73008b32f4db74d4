package crypto

import (
	"errors"
	"strings"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := DeriveKey("hunter2", "user-1")

	inputs := []string{
		"a",
		"Brave knight of the realm",
		"You are {{char}}. Stay in character.\n\nNever break the fourth wall.",
		"данные на кириллице",
		strings.Repeat("long ", 5000),
	}

	for _, in := range inputs {
		env, err := EncryptField(in, key)
		if err != nil {
			t.Fatalf("EncryptField(%q): %v", in[:min(len(in), 20)], err)
		}
		if !IsEncrypted(env) {
			t.Fatalf("envelope missing enc: prefix: %q", env[:min(len(env), 20)])
		}
		if strings.Count(env, ":") != 3 {
			t.Fatalf("envelope should have exactly 4 colon-delimited segments, got %q", env)
		}

		out, err := DecryptField(env, key)
		if err != nil {
			t.Fatalf("DecryptField: %v", err)
		}
		if out != in {
			t.Errorf("round trip mismatch: got %q want %q", out, in)
		}
	}
}

func TestEncryptFieldFreshNonce(t *testing.T) {
	key := DeriveKey("hunter2", "user-1")

	a, err := EncryptField("same plaintext", key)
	if err != nil {
		t.Fatal(err)
	}
	b, err := EncryptField("same plaintext", key)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two encryptions of the same plaintext produced identical envelopes (nonce reuse)")
	}
}

func TestDecryptFieldWrongKey(t *testing.T) {
	k1 := DeriveKey("password-one", "user-1")
	k2 := DeriveKey("password-two", "user-1")

	env, err := EncryptField("secret api key", k1)
	if err != nil {
		t.Fatal(err)
	}

	out, err := DecryptField(env, k2)
	if !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("want ErrDecryptFailed, got %v", err)
	}
	if out != "" {
		t.Errorf("wrong-key decrypt must return empty string, got %q", out)
	}
}

func TestDecryptFieldPlaintextPassThrough(t *testing.T) {
	key := DeriveKey("hunter2", "user-1")

	for _, s := range []string{"", "plain value", "encoded but not enveloped", "ENC:uppercase-is-not-a-marker"} {
		out, err := DecryptField(s, key)
		if err != nil {
			t.Fatalf("DecryptField(%q): %v", s, err)
		}
		if out != s {
			t.Errorf("plaintext must pass through unchanged: got %q want %q", out, s)
		}
	}
}

func TestDecryptFieldMalformed(t *testing.T) {
	key := DeriveKey("hunter2", "user-1")

	env, err := EncryptField("value", key)
	if err != nil {
		t.Fatal(err)
	}
	parts := strings.SplitN(env, ":", 4)

	cases := map[string]string{
		"missing segments":  "enc:deadbeef",
		"one segment short": "enc:" + parts[1] + ":" + parts[2],
		"bad nonce hex":     "enc:zzzz:" + parts[2] + ":" + parts[3],
		"bad tag hex":       "enc:" + parts[1] + ":zzzz:" + parts[3],
		"bad ct hex":        "enc:" + parts[1] + ":" + parts[2] + ":zz!!",
		"truncated nonce":   "enc:dead:" + parts[2] + ":" + parts[3],
		"empty segments":    "enc:::",
	}

	for name, s := range cases {
		out, err := DecryptField(s, key)
		if !errors.Is(err, ErrMalformedEnvelope) {
			t.Errorf("%s: want ErrMalformedEnvelope, got %v", name, err)
		}
		if out != "" {
			t.Errorf("%s: must fail closed with empty string, got %q", name, out)
		}
	}
}

func TestDecryptFieldTampered(t *testing.T) {
	key := DeriveKey("hunter2", "user-1")

	env, err := EncryptField("the original content", key)
	if err != nil {
		t.Fatal(err)
	}

	// Flip one hex digit of the ciphertext segment.
	i := strings.LastIndex(env, ":") + 1
	flipped := byte('0')
	if env[i] == '0' {
		flipped = '1'
	}
	tampered := env[:i] + string(flipped) + env[i+1:]
	if tampered == env {
		t.Fatal("tampering produced identical envelope")
	}

	out, err := DecryptField(tampered, key)
	if !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("want ErrDecryptFailed, got %v", err)
	}
	if out != "" {
		t.Errorf("tampered decrypt must return empty string, got %q", out)
	}
}
