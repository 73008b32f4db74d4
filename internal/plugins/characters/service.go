package characters

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tavernhq/tavern/internal/apperror"
	"github.com/tavernhq/tavern/internal/crypto"
	"github.com/tavernhq/tavern/internal/sanitize"
)

// CharacterService handles business logic for characters: visibility,
// validation, card imports, and resolving the acting user's session key.
type CharacterService interface {
	// List returns the characters visible to the viewer (empty viewerID
	// for anonymous requests).
	List(ctx context.Context, viewerID string) ([]Character, error)

	// Create validates and stores a new character owned by userID.
	Create(ctx context.Context, userID string, req CreateRequest) (*Character, error)

	// Update applies a partial update to one of userID's characters.
	Update(ctx context.Context, userID, id string, req UpdateRequest) (*Character, error)

	// Delete removes one of userID's characters.
	Delete(ctx context.Context, userID, id string) error

	// ImportPNG extracts an embedded character card from a base64 PNG.
	// When save is set the character is persisted, otherwise the parsed
	// card is returned for preview.
	ImportPNG(ctx context.Context, userID string, req ImportPNGRequest) (*Character, error)

	// ImportJSON imports a character card given as raw JSON.
	ImportJSON(ctx context.Context, userID string, req ImportJSONRequest) (*Character, error)
}

// characterService implements CharacterService.
type characterService struct {
	repo CharacterRepository
	keys *crypto.SessionKeyStore
}

// NewCharacterService creates a new character service.
func NewCharacterService(repo CharacterRepository, keys *crypto.SessionKeyStore) CharacterService {
	return &characterService{repo: repo, keys: keys}
}

// List returns the characters visible to the viewer.
func (s *characterService) List(ctx context.Context, viewerID string) ([]Character, error) {
	return s.repo.ListVisible(ctx, viewerID, s.sessionKey(viewerID))
}

// Create validates and stores a new character.
func (s *characterService) Create(ctx context.Context, userID string, req CreateRequest) (*Character, error) {
	ch, err := s.buildCharacter(userID, req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, ch, s.sessionKey(userID)); err != nil {
		return nil, err
	}
	return ch, nil
}

// Update applies a partial update to an owned character.
func (s *characterService) Update(ctx context.Context, userID, id string, req UpdateRequest) (*Character, error) {
	key := s.sessionKey(userID)
	ch, err := s.repo.FindOwned(ctx, id, userID, key)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		ch.Name = sanitize.Text(*req.Name)
	}
	if req.Description != nil {
		ch.Description = *req.Description
	}
	if req.SystemPrompt != nil {
		ch.SystemPrompt = *req.SystemPrompt
	}
	if req.FirstMessages != nil {
		ch.FirstMessages = *req.FirstMessages
	}
	if req.Visibility != nil {
		ch.Visibility = normalizeVisibility(*req.Visibility)
	}
	if req.Avatar != nil {
		ch.Avatar = req.Avatar
	}
	if req.AvatarEmoji != nil {
		ch.AvatarEmoji = *req.AvatarEmoji
	}
	if req.Tags != nil {
		ch.Tags = *req.Tags
	}
	if ch.Name == "" {
		return nil, apperror.NewValidation("character name is required")
	}
	ch.UpdatedAt = time.Now().UnixMilli()

	if err := s.repo.Update(ctx, ch, key); err != nil {
		return nil, err
	}
	return ch, nil
}

// Delete removes an owned character.
func (s *characterService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, id, userID)
}

// ImportPNG extracts and optionally stores an embedded character card.
func (s *characterService) ImportPNG(ctx context.Context, userID string, req ImportPNGRequest) (*Character, error) {
	b64 := req.Base64
	// Clients often send the whole data URL.
	if idx := strings.Index(b64, ","); idx != -1 && strings.HasPrefix(b64, "data:") {
		b64 = b64[idx+1:]
	}
	png, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, apperror.NewBadRequest("invalid base64 image data")
	}

	card, err := extractCardPayload(png)
	if err != nil {
		slog.Warn("character card extraction failed", slog.Any("error", err))
		return nil, apperror.NewBadRequest("no character data found in image")
	}

	create := normalizeCard(card)
	// The uploaded image doubles as the avatar.
	avatar := "data:image/png;base64," + b64
	create.Avatar = &avatar

	ch, err := s.buildCharacter(userID, create)
	if err != nil {
		return nil, err
	}
	if !req.Save {
		return ch, nil
	}
	if err := s.repo.Create(ctx, ch, s.sessionKey(userID)); err != nil {
		return nil, err
	}
	return ch, nil
}

// ImportJSON imports a character card given as raw JSON.
func (s *characterService) ImportJSON(ctx context.Context, userID string, req ImportJSONRequest) (*Character, error) {
	card, err := cardFromJSON(req.Data)
	if err != nil {
		return nil, apperror.NewBadRequest("invalid character card JSON")
	}

	ch, err := s.buildCharacter(userID, normalizeCard(card))
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, ch, s.sessionKey(userID)); err != nil {
		return nil, err
	}
	return ch, nil
}

// cardFromJSON accepts either a JSON object or a string containing one.
func cardFromJSON(data any) (map[string]any, error) {
	switch v := data.(type) {
	case map[string]any:
		return v, nil
	case string:
		var card map[string]any
		if err := json.Unmarshal([]byte(v), &card); err != nil {
			return nil, err
		}
		return card, nil
	default:
		return nil, fmt.Errorf("unsupported card payload type %T", data)
	}
}

// buildCharacter validates a create request and fills the server-side
// fields.
func (s *characterService) buildCharacter(userID string, req CreateRequest) (*Character, error) {
	name := sanitize.Text(req.Name)
	if name == "" {
		return nil, apperror.NewValidation("character name is required")
	}
	emoji := req.AvatarEmoji
	if emoji == "" && req.Avatar == nil {
		emoji = "🎭"
	}
	return &Character{
		ID:            uuid.NewString(),
		OwnerID:       userID,
		Name:          name,
		Description:   req.Description,
		SystemPrompt:  req.SystemPrompt,
		FirstMessages: req.FirstMessages,
		Visibility:    normalizeVisibility(req.Visibility),
		Avatar:        req.Avatar,
		AvatarEmoji:   emoji,
		Tags:          req.Tags,
		CreatedAt:     time.Now().UnixMilli(),
	}, nil
}

// normalizeVisibility defaults anything but "public" to private.
func normalizeVisibility(v string) string {
	if v == VisibilityPublic {
		return VisibilityPublic
	}
	return VisibilityPrivate
}

// sessionKey returns the cached key for a user, or nil for anonymous
// viewers and degraded mode.
func (s *characterService) sessionKey(userID string) []byte {
	if userID == "" {
		return nil
	}
	key, ok := s.keys.Get(userID)
	if !ok {
		slog.Debug("no session key cached, character fields pass through unencrypted",
			slog.String("user_id", userID),
		)
		return nil
	}
	return key
}
