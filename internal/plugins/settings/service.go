package settings

import (
	"context"
	"log/slog"

	"github.com/tavernhq/tavern/internal/crypto"
)

// SettingsService handles business logic for user settings. Its main job
// is resolving the acting user's session key (or its absence) before
// delegating to the repository.
type SettingsService interface {
	// Get returns the user's settings, decrypted when a session key is
	// cached for them.
	Get(ctx context.Context, userID string) (*Settings, error)

	// Save validates and persists the user's settings document.
	Save(ctx context.Context, userID string, s *Settings) error
}

// settingsService implements SettingsService.
type settingsService struct {
	repo SettingsRepository
	keys *crypto.SessionKeyStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(repo SettingsRepository, keys *crypto.SessionKeyStore) SettingsService {
	return &settingsService{repo: repo, keys: keys}
}

// Get returns the user's settings document.
func (s *settingsService) Get(ctx context.Context, userID string) (*Settings, error) {
	key := s.sessionKey(userID)
	return s.repo.GetForUser(ctx, userID, key)
}

// Save persists the user's settings document.
func (s *settingsService) Save(ctx context.Context, userID string, doc *Settings) error {
	if doc.Providers == nil {
		doc.Providers = []Provider{}
	}
	key := s.sessionKey(userID)
	return s.repo.SaveForUser(ctx, userID, doc, key)
}

// sessionKey returns the cached key for a user, or nil in degraded mode.
// Absence is expected after a restart (valid long-lived tokens, empty
// key cache), so it is only worth a debug line.
func (s *settingsService) sessionKey(userID string) []byte {
	key, ok := s.keys.Get(userID)
	if !ok {
		slog.Debug("no session key cached, settings pass through unencrypted",
			slog.String("user_id", userID),
		)
		return nil
	}
	return key
}
