// Package characters manages the character collection: persona cards
// with a description, system prompt, and greeting lines. Those three are
// the sensitive fields, encrypted at rest per owner; name, tags, avatar
// and visibility are metadata and stay plaintext.
package characters

// Visibility values.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Character is a persona card as persisted in characters.json. Field
// names are the stored JSON format. A character without an OwnerID is a
// legacy/global record: it is visible to every logged-in user and never
// encrypted, since no user's key applies to it.
type Character struct {
	ID            string   `json:"id"`
	OwnerID       string   `json:"ownerId,omitempty"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	SystemPrompt  string   `json:"systemPrompt,omitempty"`
	FirstMessages []string `json:"firstMessages,omitempty"`
	Visibility    string   `json:"visibility,omitempty"`
	Avatar        *string  `json:"avatar,omitempty"`
	AvatarEmoji   string   `json:"avatar_emoji,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	CreatedAt     int64    `json:"createdAt"` // Unix milliseconds.
	UpdatedAt     int64    `json:"updatedAt,omitempty"`
}

// CreateRequest holds the fields a client may set when creating a character.
type CreateRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	SystemPrompt  string   `json:"systemPrompt"`
	FirstMessages []string `json:"firstMessages"`
	Visibility    string   `json:"visibility"`
	Avatar        *string  `json:"avatar"`
	AvatarEmoji   string   `json:"avatar_emoji"`
	Tags          []string `json:"tags"`
}

// UpdateRequest holds the patchable fields. Pointers distinguish "not
// submitted" from "set to zero value".
type UpdateRequest struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	SystemPrompt  *string   `json:"systemPrompt"`
	FirstMessages *[]string `json:"firstMessages"`
	Visibility    *string   `json:"visibility"`
	Avatar        *string   `json:"avatar"`
	AvatarEmoji   *string   `json:"avatar_emoji"`
	Tags          *[]string `json:"tags"`
}

// ImportPNGRequest is the body of POST /api/characters/import/png.
type ImportPNGRequest struct {
	Base64 string `json:"base64"`
	Save   bool   `json:"save"`
}

// ImportJSONRequest is the body of POST /api/characters/import/json.
// Data may be a JSON object or a string holding one.
type ImportJSONRequest struct {
	Data any `json:"data"`
}
