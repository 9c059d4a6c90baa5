// Package genre resolves genres by id or slug through a cache.
package genre

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"audiochan/cache"
	"audiochan/core/result"
	"audiochan/model"
	"audiochan/repository"
)

// Sort orders genre listings.
type Sort string

const (
	SortAlphabetically Sort = "alphabetically"
	SortPopularity     Sort = "popularity"
)

// ParseSort reads a sort option. Unknown values sort alphabetically.
func ParseSort(s string) Sort {
	if Sort(strings.ToLower(strings.TrimSpace(s))) == SortPopularity {
		return SortPopularity
	}
	return SortAlphabetically
}

// Service looks genres up by id or slug.
type Service struct {
	repo  repository.GenreRepository
	cache cache.GenreCache
}

// NewService creates a genre service. c may be nil to disable caching.
func NewService(repo repository.GenreRepository, c cache.GenreCache) *Service {
	return &Service{repo: repo, cache: c}
}

// Key normalizes a lookup input: a positive integer is an id, anything else
// is a slug compared lower-cased.
func Key(input string) (id int64, slug string) {
	input = strings.ToLower(strings.TrimSpace(input))
	if n, err := strconv.ParseInt(input, 10, 64); err == nil && n > 0 {
		return n, ""
	}
	return 0, input
}

// Get returns nil, nil when input is blank or names no genre.
func (s *Service) Get(ctx context.Context, input string) (*model.Genre, error) {
	id, slug := Key(input)
	if id == 0 && slug == "" {
		return nil, nil
	}
	key := slug
	if id > 0 {
		key = strconv.FormatInt(id, 10)
	}

	if s.cache != nil {
		if g, ok := s.cache.Get(ctx, key); ok {
			return g, nil
		}
	}

	var (
		g   *model.Genre
		err error
	)
	if id > 0 {
		g, err = s.repo.GetByID(ctx, id)
	} else {
		g, err = s.repo.GetBySlug(ctx, slug)
	}
	if err != nil {
		return nil, fmt.Errorf("load genre %q: %w", input, err)
	}
	if g != nil && s.cache != nil {
		s.cache.Set(ctx, key, g)
	}
	return g, nil
}

// Lookup is Get with a NotFound failure for unknown genres.
func (s *Service) Lookup(ctx context.Context, input string) (*model.Genre, error) {
	g, err := s.Get(ctx, input)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, result.NotFound("Genre was not found.")
	}
	return g, nil
}

// List returns every genre ordered by name.
func (s *Service) List(ctx context.Context) ([]model.Genre, error) {
	if s.cache != nil {
		if genres, ok := s.cache.GetAll(ctx); ok {
			return genres, nil
		}
	}
	genres, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	if s.cache != nil {
		s.cache.SetAll(ctx, genres)
	}
	return genres, nil
}

// Popular returns every genre with its audio count, busiest first. Counts
// change with every upload so the result is never cached.
func (s *Service) Popular(ctx context.Context) ([]repository.GenreCount, error) {
	genres, err := s.repo.ListByPopularity(ctx)
	if err != nil {
		return nil, fmt.Errorf("list genres by popularity: %w", err)
	}
	return genres, nil
}
