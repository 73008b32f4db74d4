package discover

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestAllowedAvatarHost(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"chub.ai", true},
		{"api.chub.ai", true},
		{"avatars.charhub.io", true},
		{"characterhub.org", true},
		{"evilchub.ai", false},
		{"chub.ai.evil.com", false},
		{"example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := allowedAvatarHost(tt.host); got != tt.want {
			t.Errorf("allowedAvatarHost(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}

func TestAvatarRejectsDisallowedURL(t *testing.T) {
	svc := NewDiscoverService(nil, time.Hour)

	for _, rawURL := range []string{
		"https://example.com/avatar.png",
		"ftp://chub.ai/avatar.png",
		"not a url at all://",
		"",
	} {
		if _, _, err := svc.Avatar(context.Background(), rawURL); err == nil {
			t.Errorf("expected Avatar(%q) to be refused", rawURL)
		}
	}
}

func TestDownloadRejectsBadPath(t *testing.T) {
	svc := NewDiscoverService(nil, time.Hour)

	for _, path := range []string{"", "/", "../etc/passwd", "a/../../b"} {
		if _, err := svc.Download(context.Background(), path); err == nil {
			t.Errorf("expected Download(%q) to be refused", path)
		}
	}
}

func TestCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := &discoverService{cache: client, cacheTTL: time.Hour}
	ctx := context.Background()

	if _, ok := svc.cacheGet(ctx, "chub:search:q=aria"); ok {
		t.Error("expected miss on empty cache")
	}

	svc.cacheSet(ctx, "chub:search:q=aria", []byte(`{"nodes":[]}`))

	body, ok := svc.cacheGet(ctx, "chub:search:q=aria")
	if !ok {
		t.Fatal("expected hit after set")
	}
	if string(body) != `{"nodes":[]}` {
		t.Errorf("unexpected cached body %q", body)
	}

	mr.FastForward(2 * time.Hour)
	if _, ok := svc.cacheGet(ctx, "chub:search:q=aria"); ok {
		t.Error("expected miss after TTL expiry")
	}
}

func TestCacheDisabled(t *testing.T) {
	svc := &discoverService{cache: nil, cacheTTL: time.Hour}
	ctx := context.Background()

	svc.cacheSet(ctx, "k", []byte("v"))
	if _, ok := svc.cacheGet(ctx, "k"); ok {
		t.Error("expected nil cache to always miss")
	}
}
