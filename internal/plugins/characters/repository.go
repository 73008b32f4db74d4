package characters

import (
	"context"
	"fmt"
	"strings"

	"github.com/tavernhq/tavern/internal/apperror"
	"github.com/tavernhq/tavern/internal/database"
)

// charactersCollection is the store document holding all character records.
const charactersCollection = "characters"

// CharacterRepository is the single access path to the character
// collection; the codec is applied on every read and write inside these
// methods, so no caller can persist or serve a sensitive field around it.
type CharacterRepository interface {
	// ListVisible returns the characters visible to viewerID: public
	// ones, ownerless legacy ones (when logged in), and the viewer's own
	// (decrypted with key when non-nil).
	ListVisible(ctx context.Context, viewerID string, key []byte) ([]Character, error)

	// FindOwned returns one of ownerID's characters by ID, decrypted.
	FindOwned(ctx context.Context, id, ownerID string, key []byte) (*Character, error)

	// Create encrypts and appends a new character record.
	Create(ctx context.Context, ch *Character, key []byte) error

	// Update encrypts and replaces the record with the same ID and
	// owner, or NotFound.
	Update(ctx context.Context, ch *Character, key []byte) error

	// Delete removes the record with the given ID and owner. Deleting an
	// absent record is not an error (matches idempotent client retries).
	Delete(ctx context.Context, id, ownerID string) error

	// SearchPublic returns public characters whose name contains q
	// (case-insensitive), up to limit. Only plaintext metadata is
	// matched; encrypted fields are never searched.
	SearchPublic(ctx context.Context, q string, limit int) ([]Character, error)

	// ReencryptUser re-encrypts every character owned by userID from
	// oldKey to newKey.
	ReencryptUser(ctx context.Context, userID string, oldKey, newKey []byte) error
}

// characterRepository implements CharacterRepository over the flat-file store.
type characterRepository struct {
	store *database.Store
}

// NewCharacterRepository creates a character repository backed by the given store.
func NewCharacterRepository(store *database.Store) CharacterRepository {
	return &characterRepository{store: store}
}

// ListVisible returns the characters visible to a viewer.
func (r *characterRepository) ListVisible(ctx context.Context, viewerID string, key []byte) ([]Character, error) {
	chars, err := r.readAll()
	if err != nil {
		return nil, err
	}

	visible := make([]Character, 0, len(chars))
	for _, ch := range chars {
		switch {
		case viewerID != "" && ch.OwnerID == viewerID:
			// The viewer's own characters are always decrypted,
			// public ones included.
			visible = append(visible, decryptCharacter(ch, key))
		case ch.Visibility == VisibilityPublic:
			// Someone else's public characters are served as stored.
			// Their encrypted fields stay opaque -- the owner's key
			// never applies to another viewer.
			visible = append(visible, ch)
		case viewerID != "" && ch.OwnerID == "":
			// Legacy characters predate ownership; visible to any
			// logged-in user, never encrypted.
			visible = append(visible, ch)
		}
	}
	return visible, nil
}

// FindOwned returns one of ownerID's characters by ID, decrypted.
func (r *characterRepository) FindOwned(ctx context.Context, id, ownerID string, key []byte) (*Character, error) {
	chars, err := r.readAll()
	if err != nil {
		return nil, err
	}
	for _, ch := range chars {
		if ch.ID == id && ch.OwnerID == ownerID {
			dec := decryptCharacter(ch, key)
			return &dec, nil
		}
	}
	return nil, apperror.NewNotFound("character not found")
}

// Create encrypts and appends a new character record.
func (r *characterRepository) Create(ctx context.Context, ch *Character, key []byte) error {
	chars, err := r.readAll()
	if err != nil {
		return err
	}
	chars = append(chars, encryptCharacter(*ch, key))
	return r.writeAll(chars)
}

// Update encrypts and replaces an owned character record.
func (r *characterRepository) Update(ctx context.Context, ch *Character, key []byte) error {
	chars, err := r.readAll()
	if err != nil {
		return err
	}
	for i := range chars {
		if chars[i].ID == ch.ID && chars[i].OwnerID == ch.OwnerID {
			chars[i] = encryptCharacter(*ch, key)
			return r.writeAll(chars)
		}
	}
	return apperror.NewNotFound("character not found")
}

// Delete removes an owned character record.
func (r *characterRepository) Delete(ctx context.Context, id, ownerID string) error {
	chars, err := r.readAll()
	if err != nil {
		return err
	}
	kept := chars[:0]
	for _, ch := range chars {
		if !(ch.ID == id && ch.OwnerID == ownerID) {
			kept = append(kept, ch)
		}
	}
	return r.writeAll(kept)
}

// SearchPublic matches public characters by name.
func (r *characterRepository) SearchPublic(ctx context.Context, q string, limit int) ([]Character, error) {
	chars, err := r.readAll()
	if err != nil {
		return nil, err
	}

	matches := make([]Character, 0, limit)
	for _, ch := range chars {
		if ch.Visibility != VisibilityPublic {
			continue
		}
		if containsFold(ch.Name, q) {
			matches = append(matches, ch)
			if len(matches) == limit {
				break
			}
		}
	}
	return matches, nil
}

// ReencryptUser re-encrypts every character owned by userID.
func (r *characterRepository) ReencryptUser(ctx context.Context, userID string, oldKey, newKey []byte) error {
	chars, err := r.readAll()
	if err != nil {
		return err
	}
	changed := false
	for i := range chars {
		if chars[i].OwnerID == userID {
			chars[i] = reencryptCharacter(chars[i], oldKey, newKey)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return r.writeAll(chars)
}

// containsFold reports whether s contains substr case-insensitively.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func (r *characterRepository) readAll() ([]Character, error) {
	var chars []Character
	if err := r.store.Read(charactersCollection, &chars); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("reading characters: %w", err))
	}
	return chars, nil
}

func (r *characterRepository) writeAll(chars []Character) error {
	if err := r.store.Write(charactersCollection, chars); err != nil {
		return apperror.NewInternal(fmt.Errorf("writing characters: %w", err))
	}
	return nil
}
