package posts

import (
	"context"
	"fmt"

	"github.com/tavernhq/tavern/internal/apperror"
	"github.com/tavernhq/tavern/internal/database"
)

// postsCollection is the flat-file collection name.
const postsCollection = "posts"

// PostRepository persists feed posts, newest first.
type PostRepository interface {
	// List returns all posts, optionally filtered by author.
	List(ctx context.Context, userID string) ([]Post, error)

	// FindByID returns one post.
	FindByID(ctx context.Context, id string) (*Post, error)

	// Create prepends a new post to the feed.
	Create(ctx context.Context, post *Post) error

	// Delete removes a post, or NotFound.
	Delete(ctx context.Context, id string) error
}

// postRepository implements PostRepository over the flat-file store.
type postRepository struct {
	store *database.Store
}

// NewPostRepository creates a post repository backed by the given store.
func NewPostRepository(store *database.Store) PostRepository {
	return &postRepository{store: store}
}

// List returns posts, newest first as stored.
func (r *postRepository) List(ctx context.Context, userID string) ([]Post, error) {
	posts, err := r.readAll()
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return posts, nil
	}
	filtered := make([]Post, 0, len(posts))
	for _, p := range posts {
		if p.UserID == userID {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// FindByID returns one post.
func (r *postRepository) FindByID(ctx context.Context, id string) (*Post, error) {
	posts, err := r.readAll()
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].ID == id {
			return &posts[i], nil
		}
	}
	return nil, apperror.NewNotFound("post not found")
}

// Create prepends a new post so the file stays newest-first.
func (r *postRepository) Create(ctx context.Context, post *Post) error {
	posts, err := r.readAll()
	if err != nil {
		return err
	}
	posts = append([]Post{*post}, posts...)
	return r.writeAll(posts)
}

// Delete removes a post.
func (r *postRepository) Delete(ctx context.Context, id string) error {
	posts, err := r.readAll()
	if err != nil {
		return err
	}
	kept := posts[:0]
	found := false
	for _, p := range posts {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return apperror.NewNotFound("post not found")
	}
	return r.writeAll(kept)
}

func (r *postRepository) readAll() ([]Post, error) {
	var posts []Post
	if err := r.store.Read(postsCollection, &posts); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("reading posts: %w", err))
	}
	return posts, nil
}

func (r *postRepository) writeAll(posts []Post) error {
	if err := r.store.Write(postsCollection, posts); err != nil {
		return apperror.NewInternal(fmt.Errorf("writing posts: %w", err))
	}
	return nil
}
