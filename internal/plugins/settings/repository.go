package settings

import (
	"context"
	"fmt"

	"github.com/tavernhq/tavern/internal/apperror"
	"github.com/tavernhq/tavern/internal/database"
)

// settingsCollection is the store document: a map from user ID to that
// user's settings document.
const settingsCollection = "settings"

// SettingsRepository is the single access path to the settings
// collection. The codec is applied here, on every read and write -- no
// caller can reach the store around it, which is what keeps "encrypt
// before write, decrypt after read" a property of the system instead of
// a convention each route has to remember.
type SettingsRepository interface {
	// GetForUser returns a user's settings, decrypted with key. A nil key
	// returns stored values verbatim. Users with no saved settings get
	// the default document.
	GetForUser(ctx context.Context, userID string, key []byte) (*Settings, error)

	// SaveForUser encrypts the sensitive fields with key and persists the
	// document. A nil key persists plaintext (degraded mode).
	SaveForUser(ctx context.Context, userID string, s *Settings, key []byte) error

	// ReencryptUser re-encrypts the user's document from oldKey to newKey.
	ReencryptUser(ctx context.Context, userID string, oldKey, newKey []byte) error
}

// settingsRepository implements SettingsRepository over the flat-file store.
type settingsRepository struct {
	store *database.Store
}

// NewSettingsRepository creates a settings repository backed by the given store.
func NewSettingsRepository(store *database.Store) SettingsRepository {
	return &settingsRepository{store: store}
}

// GetForUser returns a user's settings, decrypted.
func (r *settingsRepository) GetForUser(ctx context.Context, userID string, key []byte) (*Settings, error) {
	all, err := r.readAll()
	if err != nil {
		return nil, err
	}
	s, ok := all[userID]
	if !ok {
		return DefaultSettings(), nil
	}
	return decryptSettings(&s, key, userID), nil
}

// SaveForUser encrypts and persists a user's settings document.
func (r *settingsRepository) SaveForUser(ctx context.Context, userID string, s *Settings, key []byte) error {
	all, err := r.readAll()
	if err != nil {
		return err
	}
	all[userID] = *encryptSettings(s, key, userID)
	return r.writeAll(all)
}

// ReencryptUser rewrites the user's document under the new key.
func (r *settingsRepository) ReencryptUser(ctx context.Context, userID string, oldKey, newKey []byte) error {
	all, err := r.readAll()
	if err != nil {
		return err
	}
	s, ok := all[userID]
	if !ok {
		return nil
	}
	all[userID] = *reencryptSettings(&s, oldKey, newKey)
	return r.writeAll(all)
}

func (r *settingsRepository) readAll() (map[string]Settings, error) {
	all := make(map[string]Settings)
	if err := r.store.Read(settingsCollection, &all); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("reading settings: %w", err))
	}
	return all, nil
}

func (r *settingsRepository) writeAll(all map[string]Settings) error {
	if err := r.store.Write(settingsCollection, all); err != nil {
		return apperror.NewInternal(fmt.Errorf("writing settings: %w", err))
	}
	return nil
}
