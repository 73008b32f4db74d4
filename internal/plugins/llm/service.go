package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tavernhq/tavern/internal/apperror"
	"github.com/tavernhq/tavern/internal/crypto"
	"github.com/tavernhq/tavern/internal/plugins/settings"
)

// defaultMaxTokens caps completions when the user never set a limit.
const defaultMaxTokens = 2048

// LLMService builds and opens upstream completion streams.
type LLMService interface {
	// OpenStream resolves the user's provider and starts a streaming
	// completion request. The caller owns the returned response body.
	OpenStream(ctx context.Context, userID string, req StreamRequest) (*http.Response, error)
}

// llmService implements LLMService.
type llmService struct {
	settings settings.SettingsService
	client   *http.Client
}

// NewLLMService creates a new LLM relay service.
func NewLLMService(settingsService settings.SettingsService) LLMService {
	return &llmService{
		settings: settingsService,
		// No overall timeout: completions stream for minutes. Dial and
		// header timeouts still bound a dead upstream.
		client: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: 60 * time.Second,
			},
		},
	}
}

// OpenStream resolves the user's provider and starts the upstream request.
func (s *llmService) OpenStream(ctx context.Context, userID string, req StreamRequest) (*http.Response, error) {
	if len(req.Messages) == 0 {
		return nil, apperror.NewValidation("messages are required")
	}

	doc, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	provider, err := resolveProvider(doc, req.ProviderID)
	if err != nil {
		return nil, err
	}
	// After a restart the session key is gone until the next login, so
	// the settings document decodes with the API key still enveloped.
	// Relaying that upstream would only produce an opaque provider
	// error, so fail with something actionable instead.
	if crypto.IsEncrypted(provider.APIKey) {
		return nil, apperror.NewUnauthorized("provider credentials are locked, log in again to unlock them")
	}

	payload := buildCompletionRequest(doc, provider, req)
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("encoding completion request: %w", err))
	}

	url := strings.TrimSuffix(provider.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apperror.NewBadRequest("invalid provider base URL")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if provider.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+provider.APIKey)
	}
	for k, v := range provider.ExtraHeaders {
		httpReq.Header.Set(k, v)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, apperror.NewBadRequest("provider is unreachable")
	}
	return resp, nil
}

// resolveProvider picks the requested provider, falling back to the
// active one.
func resolveProvider(doc *settings.Settings, providerID string) (*settings.Provider, error) {
	if providerID == "" && doc.ActiveProviderID != nil {
		providerID = *doc.ActiveProviderID
	}
	if providerID == "" {
		return nil, apperror.NewBadRequest("no provider configured")
	}
	for i := range doc.Providers {
		if doc.Providers[i].ID == providerID {
			if doc.Providers[i].BaseURL == "" {
				return nil, apperror.NewBadRequest("provider has no base URL")
			}
			return &doc.Providers[i], nil
		}
	}
	return nil, apperror.NewBadRequest("provider not found")
}

// buildCompletionRequest assembles the upstream payload. Request fields
// win over the user's stored model parameters; the system prompt (per
// request, or the stored global one) is prepended as a system message.
func buildCompletionRequest(doc *settings.Settings, provider *settings.Provider, req StreamRequest) completionRequest {
	out := completionRequest{
		Model:     req.Model,
		Stream:    true,
		MaxTokens: defaultMaxTokens,
	}
	if out.Model == "" {
		out.Model = provider.ModelID
	}

	system := req.SystemPrompt
	if mp := doc.MP; mp != nil {
		out.Temperature = mp.Temperature
		out.TopP = mp.TopP
		if mp.MaxTokens != nil && *mp.MaxTokens > 0 {
			out.MaxTokens = *mp.MaxTokens
		}
		if system == "" {
			system = mp.GlobalSystem
		}
	}
	if req.Temperature != nil {
		out.Temperature = req.Temperature
	}
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		out.MaxTokens = *req.MaxTokens
	}

	if system != "" {
		out.Messages = append(out.Messages, ChatMessage{Role: "system", Content: system})
	}
	out.Messages = append(out.Messages, req.Messages...)
	return out
}
