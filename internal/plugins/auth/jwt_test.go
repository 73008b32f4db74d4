package auth

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadOrCreateSecretPersists(t *testing.T) {
	dir := t.TempDir()

	first, err := LoadOrCreateSecret(dir)
	if err != nil {
		t.Fatalf("LoadOrCreateSecret() error = %v", err)
	}
	if !strings.HasPrefix(first, "tavern-") {
		t.Errorf("unexpected secret format %q", first)
	}

	second, err := LoadOrCreateSecret(dir)
	if err != nil {
		t.Fatalf("LoadOrCreateSecret() second call error = %v", err)
	}
	if first != second {
		t.Error("expected the persisted secret to be reused across restarts")
	}

	info, err := os.Stat(filepath.Join(dir, secretFileName))
	if err != nil {
		t.Fatalf("expected secret file on disk: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected secret file mode 0600, got %v", info.Mode().Perm())
	}
}

func TestTokenIssueVerify(t *testing.T) {
	issuer := NewTokenIssuer("tavern-test-secret", time.Hour)

	token, err := issuer.Issue("u1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	userID, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if userID != "u1" {
		t.Errorf("expected u1, got %q", userID)
	}
}

func TestTokenVerifyExpired(t *testing.T) {
	issuer := NewTokenIssuer("tavern-test-secret", -time.Minute)

	token, err := issuer.Issue("u1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := issuer.Verify(token); err == nil {
		t.Error("expected expired token to be rejected")
	}
}

func TestTokenVerifyWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("secret-a", time.Hour).Issue("u1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := NewTokenIssuer("secret-b", time.Hour).Verify(token); err == nil {
		t.Error("expected token signed with another secret to be rejected")
	}
}
