// Package settings manages each user's settings document: the list of
// LLM provider credentials, the active provider, model parameters, and
// app preferences. Two fields are sensitive and encrypted at rest: every
// provider's API key, and the global system prompt.
package settings

// Provider is one configured LLM endpoint credential. APIKey is encrypted
// at rest; everything else (name, URL, model id) is metadata and stays
// plaintext.
type Provider struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	BaseURL      string            `json:"baseUrl"`
	ModelID      string            `json:"modelId,omitempty"`
	APIKey       string            `json:"apiKey"`
	Icon         string            `json:"icon,omitempty"`
	ExtraHeaders map[string]string `json:"extraHeaders,omitempty"`
}

// ModelParams holds generation parameters and the global system prompt
// prepended to every conversation. GlobalSystem is encrypted at rest.
type ModelParams struct {
	Temperature  *float64 `json:"temperature,omitempty"`
	MaxTokens    *int     `json:"maxTokens,omitempty"`
	TopP         *float64 `json:"topP,omitempty"`
	GlobalSystem string   `json:"globalSystem,omitempty"`
}

// Settings is one user's settings document. The settings collection on
// disk is a map from user ID to this document.
type Settings struct {
	Providers        []Provider   `json:"providers"`
	ActiveProviderID *string      `json:"activeProviderId"`
	MP               *ModelParams `json:"mp,omitempty"`
	Language         string       `json:"language,omitempty"`
}

// DefaultSettings is what a user who has never saved settings gets back.
func DefaultSettings() *Settings {
	return &Settings{
		Providers:        []Provider{},
		ActiveProviderID: nil,
	}
}

// Preset is a built-in provider template offered by GET /api/presets.
type Preset struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	BaseURL string   `json:"baseUrl"`
	Icon    string   `json:"icon"`
	Models  []string `json:"models"`
}
