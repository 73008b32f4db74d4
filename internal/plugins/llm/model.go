// Package llm relays chat-completion requests to the user's configured
// OpenAI-compatible provider and streams the response back as SSE. The
// provider's API key never reaches the client: it is resolved from the
// caller's settings document server-side.
package llm

// ChatMessage is one turn of the upstream conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StreamRequest is the body of POST /api/chat/stream.
type StreamRequest struct {
	Messages     []ChatMessage `json:"messages"`
	SystemPrompt string        `json:"systemPrompt"`
	ProviderID   string        `json:"providerId"`
	Model        string        `json:"model"`
	Temperature  *float64      `json:"temperature"`
	MaxTokens    *int          `json:"maxTokens"`
}

// completionRequest is the OpenAI-compatible upstream payload.
type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        *float64      `json:"top_p,omitempty"`
}
