// Package user serves profiles, profile pictures and follows.
package user

import (
	"context"
	"fmt"
	"strings"

	"audiochan/core/paging"
	"audiochan/core/picture"
	"audiochan/core/result"
	"audiochan/model"
	"audiochan/repository"
	"audiochan/storage"
)

// Profile is a user as seen by one caller.
type Profile struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	PictureURL     string `json:"pictureUrl,omitempty"`
	AudioCount     int64  `json:"audioCount"`
	FollowerCount  int64  `json:"followerCount"`
	FollowingCount int64  `json:"followingCount"`
	IsFollowing    bool   `json:"isFollowing"`
}

// Summary is a user entry in follower listings.
type Summary struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	PictureURL string `json:"pictureUrl,omitempty"`
}

type Service struct {
	store    repository.Store
	blobs    storage.BlobStore
	pictures *picture.Uploader
}

func NewService(store repository.Store, blobs storage.BlobStore, pictures *picture.Uploader) *Service {
	return &Service{store: store, blobs: blobs, pictures: pictures}
}

// GetProfile loads a user by name with counts relative to the caller.
func (s *Service) GetProfile(ctx context.Context, callerID int64, username string) (*Profile, error) {
	u, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}

	p := &Profile{ID: u.ID, Username: u.Username, PictureURL: s.pictureURL(u.Picture)}
	if p.AudioCount, err = s.store.Audios().CountByUser(ctx, u.ID, callerID); err != nil {
		return nil, fmt.Errorf("count audios of user %d: %w", u.ID, err)
	}
	if p.FollowerCount, err = s.store.Follows().CountFollowers(ctx, u.ID); err != nil {
		return nil, fmt.Errorf("count followers of user %d: %w", u.ID, err)
	}
	if p.FollowingCount, err = s.store.Follows().CountFollowings(ctx, u.ID); err != nil {
		return nil, fmt.Errorf("count followings of user %d: %w", u.ID, err)
	}
	if callerID > 0 && callerID != u.ID {
		if p.IsFollowing, err = s.store.Follows().Exists(ctx, callerID, u.ID); err != nil {
			return nil, fmt.Errorf("check follow: %w", err)
		}
	}
	return p, nil
}

// UpdatePicture replaces the caller's picture and returns its URL.
func (s *Service) UpdatePicture(ctx context.Context, callerID int64, imageData string) (string, error) {
	if callerID <= 0 {
		return "", result.Unauthorized("")
	}
	u, err := s.store.Users().GetByID(ctx, callerID)
	if err != nil {
		return "", fmt.Errorf("load user %d: %w", callerID, err)
	}
	if u == nil {
		return "", result.NotFound("")
	}

	key, err := s.pictures.Replace(ctx, picture.ReplaceRequest{
		Kind:     storage.UserPicture,
		EntityID: u.ID,
		Data:     imageData,
		OldKey:   u.Picture,
		Commit: func(ctx context.Context, newKey string) error {
			if err := s.store.Users().UpdatePicture(ctx, u.ID, newKey); err != nil {
				return fmt.Errorf("update user picture: %w", err)
			}
			return nil
		},
	})
	if err != nil {
		return "", err
	}
	return s.blobs.URL(key), nil
}

// SetFollow follows or unfollows username and returns the new state.
func (s *Service) SetFollow(ctx context.Context, callerID int64, username string, follow bool) (bool, error) {
	if callerID <= 0 {
		return false, result.Unauthorized("")
	}
	target, err := s.lookup(ctx, username)
	if err != nil {
		return false, err
	}
	if target.ID == callerID {
		return false, result.Forbidden("You cannot follow yourself.")
	}

	if follow {
		err = s.store.Follows().Add(ctx, callerID, target.ID)
	} else {
		err = s.store.Follows().Remove(ctx, callerID, target.ID)
	}
	if err != nil {
		return false, fmt.Errorf("set follow on user %d: %w", target.ID, err)
	}
	return follow, nil
}

// IsFollowing reports whether the caller follows username.
func (s *Service) IsFollowing(ctx context.Context, callerID int64, username string) (bool, error) {
	if callerID <= 0 {
		return false, nil
	}
	target, err := s.lookup(ctx, username)
	if err != nil {
		return false, err
	}
	ok, err := s.store.Follows().Exists(ctx, callerID, target.ID)
	if err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	return ok, nil
}

// Followers pages through the users following username.
func (s *Service) Followers(ctx context.Context, username string, page, size int) (*paging.Page[Summary], error) {
	return s.listUsers(ctx, username, page, size, s.store.Follows().Followers)
}

// Followings pages through the users username follows.
func (s *Service) Followings(ctx context.Context, username string, page, size int) (*paging.Page[Summary], error) {
	return s.listUsers(ctx, username, page, size, s.store.Follows().Followings)
}

// Search pages through users whose username contains query.
func (s *Service) Search(ctx context.Context, query string, page, size int) (*paging.Page[Summary], error) {
	page, size = paging.Normalize(page, size)
	users, total, err := s.store.Users().Search(ctx, query, paging.Offset(page, size), size)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return s.summaries(users, total, page, size), nil
}

type userLister func(ctx context.Context, id int64, offset, limit int) ([]model.User, int64, error)

func (s *Service) listUsers(ctx context.Context, username string, page, size int, list userLister) (*paging.Page[Summary], error) {
	u, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}
	page, size = paging.Normalize(page, size)
	users, total, err := list(ctx, u.ID, paging.Offset(page, size), size)
	if err != nil {
		return nil, fmt.Errorf("list users related to %d: %w", u.ID, err)
	}
	return s.summaries(users, total, page, size), nil
}

func (s *Service) summaries(users []model.User, total int64, page, size int) *paging.Page[Summary] {
	p := paging.Map(paging.Page[model.User]{Items: users, Total: total, Page: page, Size: size},
		func(m model.User) Summary {
			return Summary{ID: m.ID, Username: m.Username, PictureURL: s.pictureURL(m.Picture)}
		})
	return &p
}

func (s *Service) lookup(ctx context.Context, username string) (*model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, result.NotFound("User was not found.")
	}
	u, err := s.store.Users().GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load user %q: %w", username, err)
	}
	if u == nil {
		return nil, result.NotFound("User was not found.")
	}
	return u, nil
}

func (s *Service) pictureURL(key string) string {
	if key == "" {
		return ""
	}
	return s.blobs.URL(key)
}
