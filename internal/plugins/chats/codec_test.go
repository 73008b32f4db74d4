package chats

import (
	"testing"

	"github.com/tavernhq/tavern/internal/crypto"
)

func testChat() Chat {
	return Chat{
		ID:          "chat-1",
		UserID:      "user-1",
		CharacterID: "char-1",
		Messages: []Message{
			{ID: "m1", Role: "user", Content: "Hello there!", Timestamp: 1000},
			{ID: "m2", Role: "assistant", Content: "Well met, traveler!", Timestamp: 2000},
			{ID: "m3", Role: "user", Content: "Tell me a story.", Timestamp: 3000},
		},
	}
}

func TestChatCodecRoundTrip(t *testing.T) {
	key := crypto.DeriveKey("hunter22", "user-1")
	original := testChat()

	stored := encryptChat(original, key)

	for i, m := range stored.Messages {
		if !crypto.IsEncrypted(m.Content) {
			t.Errorf("expected messages[%d] content to be enveloped, got %q", i, m.Content)
		}
		if m.Role != original.Messages[i].Role {
			t.Errorf("expected messages[%d] role to stay plaintext", i)
		}
		if m.Timestamp != original.Messages[i].Timestamp {
			t.Errorf("expected messages[%d] timestamp to stay plaintext", i)
		}
	}

	loaded := decryptChat(stored, key)
	if len(loaded.Messages) != len(original.Messages) {
		t.Fatalf("expected %d messages, got %d", len(original.Messages), len(loaded.Messages))
	}
	for i, m := range loaded.Messages {
		if m.ID != original.Messages[i].ID {
			t.Errorf("message order broken at index %d: got ID %q, want %q", i, m.ID, original.Messages[i].ID)
		}
		if m.Content != original.Messages[i].Content {
			t.Errorf("expected messages[%d] content %q, got %q", i, original.Messages[i].Content, m.Content)
		}
	}
}

func TestChatCodecEncryptIdempotent(t *testing.T) {
	key := crypto.DeriveKey("hunter22", "user-1")

	once := encryptChat(testChat(), key)
	twice := encryptChat(once, key)

	for i := range once.Messages {
		if twice.Messages[i].Content != once.Messages[i].Content {
			t.Errorf("expected already-enveloped messages[%d] to be left alone", i)
		}
	}
}

func TestChatCodecNilKeyPassesThrough(t *testing.T) {
	original := testChat()

	stored := encryptChat(original, nil)
	for i, m := range stored.Messages {
		if m.Content != original.Messages[i].Content {
			t.Errorf("expected plaintext write without a session key at index %d", i)
		}
	}

	sealed := encryptChat(original, crypto.DeriveKey("hunter22", "user-1"))
	loaded := decryptChat(sealed, nil)
	for i := range sealed.Messages {
		if loaded.Messages[i].Content != sealed.Messages[i].Content {
			t.Errorf("expected envelope at index %d to pass through unchanged without a session key", i)
		}
	}
}

func TestChatCodecWrongKeyCollapsesMessages(t *testing.T) {
	rightKey := crypto.DeriveKey("hunter22", "user-1")
	wrongKey := crypto.DeriveKey("hunter23", "user-1")

	stored := encryptChat(testChat(), rightKey)
	loaded := decryptChat(stored, wrongKey)

	if len(loaded.Messages) != 3 {
		t.Fatalf("expected transcript structure to survive, got %d messages", len(loaded.Messages))
	}
	for i, m := range loaded.Messages {
		if m.Content != "" {
			t.Errorf("expected undecryptable messages[%d] to collapse to empty, got %q", i, m.Content)
		}
		if m.ID == "" || m.Role == "" {
			t.Errorf("expected messages[%d] metadata to survive", i)
		}
	}
}

func TestChatCodecReencrypt(t *testing.T) {
	oldKey := crypto.DeriveKey("hunter22", "user-1")
	newKey := crypto.DeriveKey("correct horse", "user-1")
	original := testChat()

	stored := encryptChat(original, oldKey)
	moved := reencryptChat(stored, oldKey, newKey)

	loaded := decryptChat(moved, newKey)
	for i, m := range loaded.Messages {
		if m.Content != original.Messages[i].Content {
			t.Errorf("expected messages[%d] content %q after re-encryption, got %q",
				i, original.Messages[i].Content, m.Content)
		}
	}
}
