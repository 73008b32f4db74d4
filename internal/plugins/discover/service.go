// Package discover proxies the chub.ai character marketplace: search,
// card downloads, and avatar images. Proxying keeps the client
// same-origin and lets the server cache hot responses in Redis.
package discover

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tavernhq/tavern/internal/apperror"
)

const (
	searchBaseURL   = "https://api.chub.ai/api/characters/search"
	downloadURL     = "https://api.chub.ai/api/characters/download"
	avatarBaseURL   = "https://avatars.charhub.io/avatars"
	maxAvatarBytes  = 5 << 20
	upstreamTimeout = 30 * time.Second
)

// avatarHosts is the allowlist for the avatar relay. Anything else is
// refused so the endpoint cannot be used as an open proxy.
var avatarHosts = []string{"chub.ai", "charhub.io", "characterhub.org"}

// SearchQuery are the marketplace search parameters.
type SearchQuery struct {
	Term string
	Page int
	Sort string
	NSFW bool
}

// DiscoverService talks to the marketplace.
type DiscoverService interface {
	// Search proxies a marketplace search and returns the raw JSON body.
	Search(ctx context.Context, q SearchQuery) ([]byte, error)

	// Download fetches a character-card PNG by its marketplace path and
	// returns it base64-encoded.
	Download(ctx context.Context, fullPath string) (string, error)

	// Avatar relays an avatar image from an allowlisted host. Returns
	// the bytes and the upstream content type.
	Avatar(ctx context.Context, rawURL string) ([]byte, string, error)
}

// discoverService implements DiscoverService. cache may be nil; every
// path works without it.
type discoverService struct {
	client   *http.Client
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewDiscoverService creates a marketplace proxy. cache is optional.
func NewDiscoverService(cache *redis.Client, cacheTTL time.Duration) DiscoverService {
	return &discoverService{
		client:   &http.Client{Timeout: upstreamTimeout},
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// Search proxies a marketplace search.
func (s *discoverService) Search(ctx context.Context, q SearchQuery) ([]byte, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Sort == "" {
		q.Sort = "star_count"
	}

	params := url.Values{}
	params.Set("search", q.Term)
	params.Set("page", fmt.Sprint(q.Page))
	params.Set("sort", q.Sort)
	params.Set("first", "24")
	params.Set("nsfw", fmt.Sprint(q.NSFW))
	params.Set("venus", "true")
	target := searchBaseURL + "?" + params.Encode()

	cacheKey := "chub:search:" + params.Encode()
	if body, ok := s.cacheGet(ctx, cacheKey); ok {
		return body, nil
	}

	body, err := s.fetch(ctx, target)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, cacheKey, body)
	return body, nil
}

// Download fetches a character card. The avatar CDN serves most cards
// directly; the download API is the fallback for the rest.
func (s *discoverService) Download(ctx context.Context, fullPath string) (string, error) {
	fullPath = strings.Trim(fullPath, "/")
	if fullPath == "" || strings.Contains(fullPath, "..") {
		return "", apperror.NewBadRequest("invalid character path")
	}

	png, err := s.fetch(ctx, avatarBaseURL+"/"+fullPath+"/chara_card_v2.png")
	if err != nil {
		png, err = s.downloadViaAPI(ctx, fullPath)
		if err != nil {
			return "", err
		}
	}
	return base64.StdEncoding.EncodeToString(png), nil
}

// downloadViaAPI uses the marketplace download endpoint.
func (s *discoverService) downloadViaAPI(ctx context.Context, fullPath string) ([]byte, error) {
	payload, _ := json.Marshal(map[string]string{
		"format":   "tavern",
		"fullPath": fullPath,
		"version":  "main",
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, downloadURL, bytes.NewReader(payload))
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperror.NewBadRequest("marketplace is unreachable")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apperror.NewNotFound("character card not found")
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxAvatarBytes))
}

// Avatar relays an avatar image from an allowlisted host.
func (s *discoverService) Avatar(ctx context.Context, rawURL string) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || !allowedAvatarHost(u.Hostname()) {
		return nil, "", apperror.NewBadRequest("avatar host not allowed")
	}

	cacheKey := "chub:avatar:" + rawURL
	if body, ok := s.cacheGet(ctx, cacheKey); ok {
		return body, "image/png", nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", apperror.NewBadRequest("invalid avatar URL")
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", apperror.NewBadRequest("avatar host is unreachable")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", apperror.NewNotFound("avatar not found")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAvatarBytes))
	if err != nil {
		return nil, "", apperror.NewInternal(fmt.Errorf("reading avatar: %w", err))
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	s.cacheSet(ctx, cacheKey, body)
	return body, contentType, nil
}

// allowedAvatarHost checks a hostname against the allowlist, including
// subdomains.
func allowedAvatarHost(host string) bool {
	host = strings.ToLower(host)
	for _, allowed := range avatarHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

// fetch GETs a URL and returns the body, or an error for any non-200.
func (s *discoverService) fetch(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperror.NewBadRequest("marketplace is unreachable")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apperror.NewNotFound(fmt.Sprintf("upstream returned status %d", resp.StatusCode))
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxAvatarBytes))
}

func (s *discoverService) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	body, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("marketplace cache read failed", slog.Any("error", err))
		}
		return nil, false
	}
	return body, true
}

func (s *discoverService) cacheSet(ctx context.Context, key string, body []byte) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, body, s.cacheTTL).Err(); err != nil {
		slog.Warn("marketplace cache write failed", slog.Any("error", err))
	}
}
