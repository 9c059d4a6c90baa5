package audio

import (
	"context"
	"fmt"

	"audiochan/core/result"
)

// SetFavorite favorites or unfavorites an audio and returns the new state.
// Owners cannot favorite their own audio.
func (s *Service) SetFavorite(ctx context.Context, callerID, audioID int64, favorite bool) (bool, error) {
	if callerID <= 0 {
		return false, result.Unauthorized("")
	}
	audio, err := s.store.Audios().GetByID(ctx, audioID)
	if err != nil {
		return false, fmt.Errorf("load audio %d: %w", audioID, err)
	}
	if audio == nil || !audio.VisibleTo(callerID) {
		return false, result.NotFound("")
	}
	if audio.UserID == callerID {
		return false, result.Forbidden("")
	}

	if favorite {
		err = s.store.Favorites().Add(ctx, audioID, callerID)
	} else {
		err = s.store.Favorites().Remove(ctx, audioID, callerID)
	}
	if err != nil {
		return false, fmt.Errorf("set favorite on audio %d: %w", audioID, err)
	}
	return favorite, nil
}

// IsFavorited reports whether the caller favorited the audio.
func (s *Service) IsFavorited(ctx context.Context, callerID, audioID int64) (bool, error) {
	if callerID <= 0 {
		return false, nil
	}
	ok, err := s.store.Favorites().Exists(ctx, audioID, callerID)
	if err != nil {
		return false, fmt.Errorf("check favorite on audio %d: %w", audioID, err)
	}
	return ok, nil
}
