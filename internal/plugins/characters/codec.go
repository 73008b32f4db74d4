package characters

import (
	"log/slog"

	"github.com/tavernhq/tavern/internal/crypto"
)

// The character codec. Sensitive fields: description, systemPrompt, and
// every firstMessages element. Each greeting is its own envelope rather
// than a joined blob, so a corrupt greeting loses one line, not all of
// them. Ownerless (legacy) characters are never touched: no user's key
// applies to them.

// encryptCharacter seals the sensitive fields before persisting. Values
// already enveloped are left alone.
func encryptCharacter(ch Character, key []byte) Character {
	if key == nil || ch.OwnerID == "" {
		return ch
	}

	ch.Description = sealOrKeep(ch.Description, key, ch, "description")
	ch.SystemPrompt = sealOrKeep(ch.SystemPrompt, key, ch, "systemPrompt")

	if len(ch.FirstMessages) > 0 {
		msgs := make([]string, len(ch.FirstMessages))
		for i, m := range ch.FirstMessages {
			msgs[i] = sealOrKeep(m, key, ch, "firstMessages")
		}
		ch.FirstMessages = msgs
	}
	return ch
}

// decryptCharacter opens the sensitive fields after reading. Fields that
// fail to open collapse to "" and are logged.
func decryptCharacter(ch Character, key []byte) Character {
	if key == nil || ch.OwnerID == "" {
		return ch
	}

	ch.Description = openOrEmpty(ch.Description, key, ch, "description")
	ch.SystemPrompt = openOrEmpty(ch.SystemPrompt, key, ch, "systemPrompt")

	if len(ch.FirstMessages) > 0 {
		msgs := make([]string, len(ch.FirstMessages))
		for i, m := range ch.FirstMessages {
			msgs[i] = openOrEmpty(m, key, ch, "firstMessages")
		}
		ch.FirstMessages = msgs
	}
	return ch
}

// reencryptCharacter moves the sensitive fields from oldKey to newKey.
func reencryptCharacter(ch Character, oldKey, newKey []byte) Character {
	if ch.OwnerID == "" {
		return ch
	}

	ch.Description = crypto.ResealField(ch.Description, oldKey, newKey)
	ch.SystemPrompt = crypto.ResealField(ch.SystemPrompt, oldKey, newKey)

	if len(ch.FirstMessages) > 0 {
		msgs := make([]string, len(ch.FirstMessages))
		for i, m := range ch.FirstMessages {
			msgs[i] = crypto.ResealField(m, oldKey, newKey)
		}
		ch.FirstMessages = msgs
	}
	return ch
}

func sealOrKeep(s string, key []byte, ch Character, field string) string {
	sealed, err := crypto.SealField(s, key)
	if err != nil {
		logCodecFailure("encrypt", field, ch, err)
		return s
	}
	return sealed
}

func openOrEmpty(s string, key []byte, ch Character, field string) string {
	opened, err := crypto.OpenField(s, key)
	if err != nil {
		logCodecFailure("decrypt", field, ch, err)
		return ""
	}
	return opened
}

func logCodecFailure(op, field string, ch Character, err error) {
	slog.Warn("character codec failure",
		slog.String("op", op),
		slog.String("field", field),
		slog.String("character_id", ch.ID),
		slog.String("owner_id", ch.OwnerID),
		slog.Any("error", err),
	)
}
