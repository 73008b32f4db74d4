package chats

import (
	"log/slog"

	"github.com/tavernhq/tavern/internal/crypto"
)

// The chat codec. Each message's content gets its own envelope so a
// single corrupt message loses one turn, not the whole transcript.
// Message order, IDs, roles, and timestamps stay plaintext.

// encryptChat seals message contents before persisting. Values already
// enveloped are left alone.
func encryptChat(chat Chat, key []byte) Chat {
	if key == nil {
		return chat
	}

	msgs := make([]Message, len(chat.Messages))
	for i, m := range chat.Messages {
		sealed, err := crypto.SealField(m.Content, key)
		if err != nil {
			logCodecFailure("encrypt", chat, m, err)
			sealed = m.Content
		}
		m.Content = sealed
		msgs[i] = m
	}
	chat.Messages = msgs
	return chat
}

// decryptChat opens message contents after reading. Messages that fail
// to open collapse to "" and are logged; the rest of the transcript
// survives in order.
func decryptChat(chat Chat, key []byte) Chat {
	if key == nil {
		return chat
	}

	msgs := make([]Message, len(chat.Messages))
	for i, m := range chat.Messages {
		opened, err := crypto.OpenField(m.Content, key)
		if err != nil {
			logCodecFailure("decrypt", chat, m, err)
			opened = ""
		}
		m.Content = opened
		msgs[i] = m
	}
	chat.Messages = msgs
	return chat
}

// reencryptChat moves message contents from oldKey to newKey.
func reencryptChat(chat Chat, oldKey, newKey []byte) Chat {
	msgs := make([]Message, len(chat.Messages))
	for i, m := range chat.Messages {
		m.Content = crypto.ResealField(m.Content, oldKey, newKey)
		msgs[i] = m
	}
	chat.Messages = msgs
	return chat
}

func logCodecFailure(op string, chat Chat, m Message, err error) {
	slog.Warn("chat codec failure",
		slog.String("op", op),
		slog.String("chat_id", chat.ID),
		slog.String("message_id", m.ID),
		slog.String("user_id", chat.UserID),
		slog.Any("error", err),
	)
}
