package audio

import (
	"context"
	"fmt"
	"strings"

	"audiochan/core/genre"
	"audiochan/core/paging"
	"audiochan/core/result"
	"audiochan/core/tag"
	"audiochan/model"
	"audiochan/repository"
)

// Get returns an audio visible to the caller.
func (s *Service) Get(ctx context.Context, callerID, audioID int64) (*View, error) {
	audio, err := s.store.Audios().GetByID(ctx, audioID)
	if err != nil {
		return nil, fmt.Errorf("load audio %d: %w", audioID, err)
	}
	if audio == nil || !audio.VisibleTo(callerID) {
		return nil, result.NotFound("")
	}
	view := NewView(audio, callerID, s.blobs)
	return &view, nil
}

// List pages through the audios visible to the caller.
func (s *Service) List(ctx context.Context, callerID int64, q ListQuery) (*paging.Page[View], error) {
	filter := repository.AudioFilter{
		Query:           q.Q,
		Username:        q.Username,
		Tags:            tag.Normalize(q.Tags),
		SortByFavorites: strings.EqualFold(strings.TrimSpace(q.Sort), SortFavorites),
	}
	filter.GenreID, filter.GenreSlug = genre.Key(q.Genre)
	return s.page(ctx, callerID, filter, q.Page, q.Size)
}

// Feed pages through audios of users the caller follows.
func (s *Service) Feed(ctx context.Context, callerID int64, page, size int) (*paging.Page[View], error) {
	if callerID <= 0 {
		return nil, result.Unauthorized("")
	}
	return s.page(ctx, callerID, repository.AudioFilter{FollowerID: callerID}, page, size)
}

// ListFavorites pages through the caller's favorites.
func (s *Service) ListFavorites(ctx context.Context, callerID int64, page, size int) (*paging.Page[View], error) {
	if callerID <= 0 {
		return nil, result.Unauthorized("")
	}
	return s.page(ctx, callerID, repository.AudioFilter{FavoritedBy: callerID}, page, size)
}

// Random returns one audio visible to the caller.
func (s *Service) Random(ctx context.Context, callerID int64) (*View, error) {
	audio, err := s.store.Audios().Random(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("load random audio: %w", err)
	}
	if audio == nil {
		return nil, result.NotFound("")
	}
	view := NewView(audio, callerID, s.blobs)
	return &view, nil
}

func (s *Service) page(ctx context.Context, callerID int64, filter repository.AudioFilter, page, size int) (*paging.Page[View], error) {
	page, size = paging.Normalize(page, size)
	filter.ViewerID = callerID
	filter.Offset = paging.Offset(page, size)
	filter.Limit = size

	audios, total, err := s.store.Audios().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list audios: %w", err)
	}
	p := paging.Map(paging.Page[model.Audio]{Items: audios, Total: total, Page: page, Size: size},
		func(a model.Audio) View { return NewView(&a, callerID, s.blobs) })
	return &p, nil
}
