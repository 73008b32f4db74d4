package characters

import (
	"context"
	"testing"

	"github.com/tavernhq/tavern/internal/crypto"
	"github.com/tavernhq/tavern/internal/database"
)

func newTestRepository(t *testing.T) CharacterRepository {
	t.Helper()
	store, err := database.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewCharacterRepository(store)
}

func TestListVisibleDecryptsOwnPublicCharacter(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	key := crypto.DeriveKey("hunter22", "user-1")

	ch := testCharacter("user-1")
	ch.Visibility = VisibilityPublic
	if err := repo.Create(ctx, &ch, key); err != nil {
		t.Fatal(err)
	}

	visible, err := repo.ListVisible(ctx, "user-1", key)
	if err != nil {
		t.Fatal(err)
	}
	if len(visible) != 1 {
		t.Fatalf("expected 1 character, got %d", len(visible))
	}
	got := visible[0]
	if crypto.IsEncrypted(got.Description) {
		t.Errorf("owner's public character served enveloped: %q", got.Description)
	}
	if got.Description != ch.Description {
		t.Errorf("expected description %q, got %q", ch.Description, got.Description)
	}
	if got.SystemPrompt != ch.SystemPrompt {
		t.Errorf("expected system prompt %q, got %q", ch.SystemPrompt, got.SystemPrompt)
	}
}

func TestListVisiblePublicCharacterStaysOpaqueToOthers(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	key := crypto.DeriveKey("hunter22", "user-1")

	ch := testCharacter("user-1")
	ch.Visibility = VisibilityPublic
	if err := repo.Create(ctx, &ch, key); err != nil {
		t.Fatal(err)
	}

	for _, viewerID := range []string{"user-2", ""} {
		visible, err := repo.ListVisible(ctx, viewerID, nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(visible) != 1 {
			t.Fatalf("viewer %q: expected 1 character, got %d", viewerID, len(visible))
		}
		if !crypto.IsEncrypted(visible[0].Description) {
			t.Errorf("viewer %q: another owner's description served decrypted: %q",
				viewerID, visible[0].Description)
		}
	}
}

func TestListVisibleHidesOthersPrivateCharacters(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	key := crypto.DeriveKey("hunter22", "user-1")

	ch := testCharacter("user-1")
	if err := repo.Create(ctx, &ch, key); err != nil {
		t.Fatal(err)
	}

	visible, err := repo.ListVisible(ctx, "user-2", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(visible) != 0 {
		t.Fatalf("expected private character hidden from other users, got %d", len(visible))
	}
}
