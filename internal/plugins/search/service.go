// Package search is the global search endpoint: users by name and
// public characters by title. Only plaintext metadata is searched, so
// results are the same for every caller.
package search

import (
	"context"
	"strings"

	"github.com/tavernhq/tavern/internal/plugins/auth"
	"github.com/tavernhq/tavern/internal/plugins/characters"
)

// resultLimit caps each result bucket.
const resultLimit = 20

// Results is the response of GET /api/search.
type Results struct {
	Users      []auth.Profile         `json:"users"`
	Characters []characters.Character `json:"characters"`
}

// SearchService runs global searches.
type SearchService interface {
	// Search matches users and public characters against q.
	Search(ctx context.Context, q string) (*Results, error)
}

// searchService implements SearchService.
type searchService struct {
	users auth.UserRepository
	chars characters.CharacterRepository
}

// NewSearchService creates a new search service.
func NewSearchService(users auth.UserRepository, chars characters.CharacterRepository) SearchService {
	return &searchService{users: users, chars: chars}
}

// Search matches users and public characters against q.
func (s *searchService) Search(ctx context.Context, q string) (*Results, error) {
	q = strings.TrimSpace(q)
	results := &Results{
		Users:      []auth.Profile{},
		Characters: []characters.Character{},
	}
	if q == "" {
		return results, nil
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(q)
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Username), needle) ||
			strings.Contains(strings.ToLower(u.DisplayName), needle) {
			results.Users = append(results.Users, u.Profile())
			if len(results.Users) == resultLimit {
				break
			}
		}
	}

	chars, err := s.chars.SearchPublic(ctx, q, resultLimit)
	if err != nil {
		return nil, err
	}
	if chars != nil {
		results.Characters = chars
	}
	return results, nil
}
