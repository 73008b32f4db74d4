package chats

import (
	"context"
	"fmt"
	"sort"

	"github.com/tavernhq/tavern/internal/apperror"
	"github.com/tavernhq/tavern/internal/database"
)

// chatsCollection is the flat-file collection name.
const chatsCollection = "chats"

// ChatRepository persists chats. It is the encryption choke point:
// message content is sealed on the way in and opened on the way out, so
// nothing above this layer ever sees an envelope.
type ChatRepository interface {
	// ListForUser returns the user's chats, newest activity first,
	// decrypted with key when non-nil.
	ListForUser(ctx context.Context, userID string, key []byte) ([]Chat, error)

	// FindForUser returns one of the user's chats by ID, decrypted.
	FindForUser(ctx context.Context, id, userID string, key []byte) (*Chat, error)

	// Create encrypts and appends a new chat.
	Create(ctx context.Context, chat *Chat, key []byte) error

	// Update encrypts and replaces the chat with the same ID and owner,
	// or NotFound.
	Update(ctx context.Context, chat *Chat, key []byte) error

	// Delete removes the chat with the given ID and owner. Deleting an
	// absent chat is not an error.
	Delete(ctx context.Context, id, userID string) error

	// DeleteForCharacter removes all of the user's chats with a
	// character.
	DeleteForCharacter(ctx context.Context, userID, characterID string) error

	// ReencryptUser re-encrypts every chat owned by userID from oldKey
	// to newKey.
	ReencryptUser(ctx context.Context, userID string, oldKey, newKey []byte) error
}

// chatRepository implements ChatRepository over the flat-file store.
type chatRepository struct {
	store *database.Store
}

// NewChatRepository creates a chat repository backed by the given store.
func NewChatRepository(store *database.Store) ChatRepository {
	return &chatRepository{store: store}
}

// ListForUser returns the user's chats, newest activity first.
func (r *chatRepository) ListForUser(ctx context.Context, userID string, key []byte) ([]Chat, error) {
	chats, err := r.readAll()
	if err != nil {
		return nil, err
	}

	mine := make([]Chat, 0, len(chats))
	for _, chat := range chats {
		if chat.UserID == userID {
			mine = append(mine, decryptChat(chat, key))
		}
	}
	sort.SliceStable(mine, func(i, j int) bool {
		return lastActivity(mine[i]) > lastActivity(mine[j])
	})
	return mine, nil
}

// FindForUser returns one of the user's chats by ID.
func (r *chatRepository) FindForUser(ctx context.Context, id, userID string, key []byte) (*Chat, error) {
	chats, err := r.readAll()
	if err != nil {
		return nil, err
	}
	for _, chat := range chats {
		if chat.ID == id && chat.UserID == userID {
			dec := decryptChat(chat, key)
			return &dec, nil
		}
	}
	return nil, apperror.NewNotFound("chat not found")
}

// Create encrypts and appends a new chat.
func (r *chatRepository) Create(ctx context.Context, chat *Chat, key []byte) error {
	chats, err := r.readAll()
	if err != nil {
		return err
	}
	chats = append(chats, encryptChat(*chat, key))
	return r.writeAll(chats)
}

// Update encrypts and replaces an owned chat.
func (r *chatRepository) Update(ctx context.Context, chat *Chat, key []byte) error {
	chats, err := r.readAll()
	if err != nil {
		return err
	}
	for i := range chats {
		if chats[i].ID == chat.ID && chats[i].UserID == chat.UserID {
			chats[i] = encryptChat(*chat, key)
			return r.writeAll(chats)
		}
	}
	return apperror.NewNotFound("chat not found")
}

// Delete removes an owned chat.
func (r *chatRepository) Delete(ctx context.Context, id, userID string) error {
	chats, err := r.readAll()
	if err != nil {
		return err
	}
	kept := chats[:0]
	for _, chat := range chats {
		if !(chat.ID == id && chat.UserID == userID) {
			kept = append(kept, chat)
		}
	}
	return r.writeAll(kept)
}

// DeleteForCharacter removes all of the user's chats with a character.
func (r *chatRepository) DeleteForCharacter(ctx context.Context, userID, characterID string) error {
	chats, err := r.readAll()
	if err != nil {
		return err
	}
	kept := chats[:0]
	for _, chat := range chats {
		if !(chat.UserID == userID && chat.CharacterID == characterID) {
			kept = append(kept, chat)
		}
	}
	return r.writeAll(kept)
}

// ReencryptUser re-encrypts every chat owned by userID.
func (r *chatRepository) ReencryptUser(ctx context.Context, userID string, oldKey, newKey []byte) error {
	chats, err := r.readAll()
	if err != nil {
		return err
	}
	changed := false
	for i := range chats {
		if chats[i].UserID == userID {
			chats[i] = reencryptChat(chats[i], oldKey, newKey)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return r.writeAll(chats)
}

// lastActivity is the sort key for chat listings.
func lastActivity(chat Chat) int64 {
	if chat.UpdatedAt > 0 {
		return chat.UpdatedAt
	}
	return chat.CreatedAt
}

func (r *chatRepository) readAll() ([]Chat, error) {
	var chats []Chat
	if err := r.store.Read(chatsCollection, &chats); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("reading chats: %w", err))
	}
	return chats, nil
}

func (r *chatRepository) writeAll(chats []Chat) error {
	if err := r.store.Write(chatsCollection, chats); err != nil {
		return apperror.NewInternal(fmt.Errorf("writing chats: %w", err))
	}
	return nil
}
