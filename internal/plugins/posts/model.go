// Package posts is the creator feed: short public announcements from
// users with a publishing role. Posts are public content and stored
// plaintext.
package posts

import "github.com/tavernhq/tavern/internal/plugins/auth"

// maxPostLength caps post content.
const maxPostLength = 1000

// Post is one feed entry.
type Post struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"` // Unix milliseconds.
}

// FeedPost is a post joined with its author's public profile for
// listings. Author is nil when the account was deleted.
type FeedPost struct {
	Post
	Author *auth.Profile `json:"author,omitempty"`
}

// CreateRequest is the body of POST /api/posts.
type CreateRequest struct {
	Content string `json:"content"`
}
