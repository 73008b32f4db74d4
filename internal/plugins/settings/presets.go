package settings

// Presets is the built-in catalog of OpenAI-compatible providers offered
// to the frontend. Served verbatim by GET /api/presets.
var Presets = []Preset{
	{ID: "openai", Name: "OpenAI", BaseURL: "https://api.openai.com/v1", Icon: "🟢",
		Models: []string{"gpt-4o", "gpt-4o-mini", "gpt-4-turbo", "gpt-3.5-turbo"}},
	{ID: "openrouter", Name: "OpenRouter", BaseURL: "https://openrouter.ai/api/v1", Icon: "🔵",
		Models: []string{"openai/gpt-4o", "anthropic/claude-3.5-sonnet", "meta-llama/llama-3.1-70b-instruct", "google/gemini-pro-1.5"}},
	{ID: "anthropic-proxy", Name: "Anthropic (via proxy)", BaseURL: "https://api.anthropic.com/v1", Icon: "🟠",
		Models: []string{"claude-3-5-sonnet-20241022", "claude-3-opus-20240229", "claude-3-haiku-20240307"}},
	{ID: "vsegpt", Name: "VseGPT", BaseURL: "https://api.vsegpt.ru/v1", Icon: "🇷🇺",
		Models: []string{"openai/gpt-4o", "anthropic/claude-3.5-sonnet", "google/gemini-pro"}},
	{ID: "ollama", Name: "Ollama (Local)", BaseURL: "http://localhost:11434/v1", Icon: "🦙",
		Models: []string{"llama3.2", "mistral", "phi3", "gemma2"}},
	{ID: "lmstudio", Name: "LM Studio", BaseURL: "http://localhost:1234/v1", Icon: "🎨",
		Models: []string{"local-model"}},
	{ID: "groq", Name: "Groq", BaseURL: "https://api.groq.com/openai/v1", Icon: "⚡",
		Models: []string{"llama-3.1-70b-versatile", "llama-3.1-8b-instant", "mixtral-8x7b-32768"}},
	{ID: "together", Name: "Together AI", BaseURL: "https://api.together.xyz/v1", Icon: "🤝",
		Models: []string{"meta-llama/Llama-3-70b-chat-hf", "mistralai/Mixtral-8x7B-Instruct-v0.1"}},
	{ID: "mistral", Name: "Mistral AI", BaseURL: "https://api.mistral.ai/v1", Icon: "🌬️",
		Models: []string{"mistral-large-latest", "mistral-medium-latest", "mistral-small-latest"}},
	{ID: "cohere", Name: "Cohere", BaseURL: "https://api.cohere.ai/compatibility/v1", Icon: "🌊",
		Models: []string{"command-r-plus", "command-r"}},
	{ID: "custom", Name: "Custom / Other", BaseURL: "", Icon: "⚙️", Models: []string{}},
}
