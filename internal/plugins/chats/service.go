package chats

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tavernhq/tavern/internal/apperror"
	"github.com/tavernhq/tavern/internal/crypto"
)

// ChatService handles business logic for chats: validation, server-side
// fields, and resolving the acting user's session key.
type ChatService interface {
	// List returns the user's chats, newest activity first.
	List(ctx context.Context, userID string) ([]Chat, error)

	// Get returns one of the user's chats.
	Get(ctx context.Context, userID, id string) (*Chat, error)

	// Create stores a new chat for the user.
	Create(ctx context.Context, userID string, req CreateRequest) (*Chat, error)

	// UpdateMessages replaces a chat's transcript.
	UpdateMessages(ctx context.Context, userID, id string, req UpdateMessagesRequest) (*Chat, error)

	// Delete removes one of the user's chats.
	Delete(ctx context.Context, userID, id string) error
}

// chatService implements ChatService.
type chatService struct {
	repo ChatRepository
	keys *crypto.SessionKeyStore
}

// NewChatService creates a new chat service.
func NewChatService(repo ChatRepository, keys *crypto.SessionKeyStore) ChatService {
	return &chatService{repo: repo, keys: keys}
}

// List returns the user's chats.
func (s *chatService) List(ctx context.Context, userID string) ([]Chat, error) {
	return s.repo.ListForUser(ctx, userID, s.sessionKey(userID))
}

// Get returns one of the user's chats.
func (s *chatService) Get(ctx context.Context, userID, id string) (*Chat, error) {
	return s.repo.FindForUser(ctx, id, userID, s.sessionKey(userID))
}

// Create stores a new chat.
func (s *chatService) Create(ctx context.Context, userID string, req CreateRequest) (*Chat, error) {
	if req.CharacterID == "" {
		return nil, apperror.NewValidation("characterId is required")
	}

	chat := &Chat{
		ID:          uuid.NewString(),
		UserID:      userID,
		CharacterID: req.CharacterID,
		Title:       req.Title,
		Messages:    normalizeMessages(req.Messages),
		CreatedAt:   time.Now().UnixMilli(),
	}
	if err := s.repo.Create(ctx, chat, s.sessionKey(userID)); err != nil {
		return nil, err
	}
	return chat, nil
}

// UpdateMessages replaces a chat's transcript.
func (s *chatService) UpdateMessages(ctx context.Context, userID, id string, req UpdateMessagesRequest) (*Chat, error) {
	key := s.sessionKey(userID)
	chat, err := s.repo.FindForUser(ctx, id, userID, key)
	if err != nil {
		return nil, err
	}

	chat.Messages = normalizeMessages(req.Messages)
	if req.Title != nil {
		chat.Title = *req.Title
	}
	chat.UpdatedAt = time.Now().UnixMilli()

	if err := s.repo.Update(ctx, chat, key); err != nil {
		return nil, err
	}
	return chat, nil
}

// Delete removes one of the user's chats.
func (s *chatService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, id, userID)
}

// normalizeMessages fills missing IDs and timestamps and drops messages
// with unknown roles.
func normalizeMessages(msgs []Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role != "user" && m.Role != "assistant" && m.Role != "system" {
			continue
		}
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if m.Timestamp == 0 {
			m.Timestamp = time.Now().UnixMilli()
		}
		out = append(out, m)
	}
	return out
}

// sessionKey returns the cached key for a user, or nil in degraded mode.
func (s *chatService) sessionKey(userID string) []byte {
	key, ok := s.keys.Get(userID)
	if !ok {
		slog.Debug("no session key cached, chat messages pass through unencrypted",
			slog.String("user_id", userID),
		)
		return nil
	}
	return key
}
