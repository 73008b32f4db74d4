// Package translate relays text through the MyMemory translation API.
// MyMemory caps a request at 500 query characters, so longer texts are
// split into chunks at whitespace boundaries and rejoined.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tavernhq/tavern/internal/apperror"
)

const (
	mymemoryURL  = "https://api.mymemory.translated.net/get"
	maxChunkLen  = 490
	maxInputLen  = 10000
	chunkTimeout = 15 * time.Second
)

// Request is the body of POST /api/translate.
type Request struct {
	Text string `json:"text"`
	From string `json:"from"`
	To   string `json:"to"`
}

// Response is the translation result.
type Response struct {
	Text string `json:"text"`
}

// TranslateService relays translations.
type TranslateService interface {
	// Translate converts text between two languages. Chunks the
	// upstream rejects fall back to their source text.
	Translate(ctx context.Context, req Request) (*Response, error)
}

// translateService implements TranslateService.
type translateService struct {
	client *http.Client
}

// NewTranslateService creates a new translate service.
func NewTranslateService() TranslateService {
	return &translateService{
		client: &http.Client{Timeout: chunkTimeout},
	}
}

// Translate converts text between two languages.
func (s *translateService) Translate(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, apperror.NewValidation("text is required")
	}
	if len(req.Text) > maxInputLen {
		return nil, apperror.NewValidation("text is too long")
	}
	if req.From == "" {
		req.From = "en"
	}
	if req.To == "" {
		return nil, apperror.NewValidation("target language is required")
	}

	chunks := chunkText(req.Text, maxChunkLen)
	out := make([]string, len(chunks))
	for i, chunk := range chunks {
		translated, err := s.translateChunk(ctx, chunk, req.From, req.To)
		if err != nil {
			slog.Warn("translation chunk failed, keeping source text",
				slog.Int("chunk", i),
				slog.Any("error", err),
			)
			translated = chunk
		}
		out[i] = translated
	}
	return &Response{Text: strings.Join(out, " ")}, nil
}

// mymemoryResponse is the upstream payload, reduced to what we read.
type mymemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus any `json:"responseStatus"` // number or string upstream.
}

// translateChunk sends one chunk to MyMemory.
func (s *translateService) translateChunk(ctx context.Context, text, from, to string) (string, error) {
	params := url.Values{}
	params.Set("q", text)
	params.Set("langpair", from+"|"+to)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mymemoryURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	var parsed mymemoryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parsing upstream response: %w", err)
	}
	if parsed.ResponseData.TranslatedText == "" {
		return "", fmt.Errorf("empty translation")
	}
	return parsed.ResponseData.TranslatedText, nil
}

// chunkText splits text into pieces of at most limit bytes, breaking at
// the last whitespace before the limit when there is one. A single word
// longer than the limit is split mid-word, backed up to a rune boundary
// so neither half carries a broken UTF-8 sequence upstream.
func chunkText(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(text) > limit {
		cut := strings.LastIndexByte(text[:limit], ' ')
		if cut <= 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
		}
		chunks = append(chunks, strings.TrimSpace(text[:cut]))
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
