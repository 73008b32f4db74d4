package posts

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tavernhq/tavern/internal/apperror"
	"github.com/tavernhq/tavern/internal/plugins/auth"
	"github.com/tavernhq/tavern/internal/sanitize"
)

// PostService handles business logic for the creator feed.
type PostService interface {
	// List returns the feed, optionally filtered by author, with author
	// profiles joined in.
	List(ctx context.Context, userID string) ([]FeedPost, error)

	// Create publishes a post. Only publishing roles may post.
	Create(ctx context.Context, userID string, req CreateRequest) (*FeedPost, error)

	// Delete removes a post. Authors delete their own; admins delete any.
	Delete(ctx context.Context, userID, id string) error
}

// postService implements PostService.
type postService struct {
	repo  PostRepository
	users auth.AuthService
}

// NewPostService creates a new post service.
func NewPostService(repo PostRepository, users auth.AuthService) PostService {
	return &postService{repo: repo, users: users}
}

// List returns the feed with author profiles joined in.
func (s *postService) List(ctx context.Context, userID string) ([]FeedPost, error) {
	posts, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	// The feed is small and authors repeat, so one lookup per distinct
	// author is enough.
	profiles := make(map[string]*auth.Profile)
	feed := make([]FeedPost, 0, len(posts))
	for _, p := range posts {
		profile, seen := profiles[p.UserID]
		if !seen {
			if user, err := s.users.GetUser(ctx, p.UserID); err == nil {
				v := user.Profile()
				profile = &v
			}
			profiles[p.UserID] = profile
		}
		feed = append(feed, FeedPost{Post: p, Author: profile})
	}
	return feed, nil
}

// Create publishes a post.
func (s *postService) Create(ctx context.Context, userID string, req CreateRequest) (*FeedPost, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !canPublish(user.Role) {
		return nil, apperror.NewForbidden("posting requires a creator role")
	}

	content := sanitize.Text(req.Content)
	if content == "" {
		return nil, apperror.NewValidation("post content is required")
	}
	if len(content) > maxPostLength {
		return nil, apperror.NewValidation("post content is too long")
	}

	post := &Post{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}
	profile := user.Profile()
	return &FeedPost{Post: *post, Author: &profile}, nil
}

// Delete removes a post if the caller is its author or an admin.
func (s *postService) Delete(ctx context.Context, userID, id string) error {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		user, err := s.users.GetUser(ctx, userID)
		if err != nil || user.Role != auth.RoleAdmin {
			return apperror.NewForbidden("you can only delete your own posts")
		}
	}
	return s.repo.Delete(ctx, id)
}

// canPublish reports whether a role may post to the feed.
func canPublish(role string) bool {
	switch role {
	case auth.RoleAdmin, auth.RoleCreator, auth.RoleMedia:
		return true
	}
	return false
}
