// Package sanitize cleans user-generated content before it is stored.
// Uses bluemonday to strip HTML (script tags, event handlers,
// javascript: URLs) from free-text fields like post content and profile
// bios, which the frontend renders as text but third-party clients may not.
package sanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// policy is the singleton bluemonday policy. Posts and bios are plain
// text in Tavern, so the strict policy (strip every tag) applies.
// Initialized once via sync.Once for thread-safe lazy initialization.
var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared sanitization policy, initializing it on first call.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Text strips all HTML from a user-supplied string and trims surrounding
// whitespace. Safe to call on already-plain text.
func Text(s string) string {
	return strings.TrimSpace(getPolicy().Sanitize(s))
}
