package chats

// Chat is one conversation between a user and a character. Message
// content is encrypted at rest when the owner has a cached session key;
// everything else stays plaintext so chats can be listed and sorted
// without a key.
type Chat struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	CharacterID string    `json:"characterId"`
	Title       string    `json:"title,omitempty"`
	Messages    []Message `json:"messages"`
	CreatedAt   int64     `json:"createdAt"` // Unix milliseconds.
	UpdatedAt   int64     `json:"updatedAt,omitempty"`
}

// Message is one turn of a conversation.
type Message struct {
	ID        string `json:"id"`
	Role      string `json:"role"` // "user" or "assistant".
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"` // Unix milliseconds.
}

// CreateRequest is the body of POST /api/chats.
type CreateRequest struct {
	CharacterID string    `json:"characterId"`
	Title       string    `json:"title"`
	Messages    []Message `json:"messages"`
}

// UpdateMessagesRequest is the body of PATCH /api/chats/:id/messages.
// The client owns the canonical transcript and replaces it wholesale.
type UpdateMessagesRequest struct {
	Messages []Message `json:"messages"`
	Title    *string   `json:"title"`
}
