package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAudio(t *testing.T) {
	audio, err := NewAudio("7f3c", "My Song.MP3", 5000000, 180, 42)
	require.NoError(t, err)

	assert.Equal(t, "7f3c", audio.UploadID)
	assert.Equal(t, ".mp3", audio.FileExt)
	assert.Equal(t, "My Song", audio.Title)
	assert.Equal(t, int64(42), audio.UserID)
	assert.True(t, audio.IsPublic)
}

func TestNewAudioRejectsBadInput(t *testing.T) {
	cases := []struct {
		name     string
		uploadID string
		fileName string
		userID   int64
		want     error
	}{
		{"empty upload id", "  ", "a.mp3", 1, ErrEmptyUploadID},
		{"empty file name", "u", "", 1, ErrEmptyFileName},
		{"no extension", "u", "song", 1, ErrMissingFileExt},
		{"trailing dot", "u", "song.", 1, ErrMissingFileExt},
		{"no owner", "u", "a.mp3", 0, ErrInvalidAudioOwner},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewAudio(tc.uploadID, tc.fileName, 1, 1, tc.userID)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAudioUpdates(t *testing.T) {
	audio := &Audio{Title: "old", UserID: 7}

	audio.UpdateTitle("   ")
	assert.Equal(t, "old", audio.Title)
	audio.UpdateTitle(" new ")
	assert.Equal(t, "new", audio.Title)

	desc := ""
	audio.Description = "keep"
	audio.UpdateDescription(nil)
	assert.Equal(t, "keep", audio.Description)
	audio.UpdateDescription(&desc)
	assert.Equal(t, "", audio.Description)

	private := false
	audio.IsPublic = true
	audio.UpdatePublicStatus(&private)
	assert.False(t, audio.IsPublic)

	audio.UpdateGenre(&Genre{ID: 3, Slug: "dubstep"})
	require.NotNil(t, audio.GenreID)
	assert.Equal(t, int64(3), *audio.GenreID)
	audio.UpdateGenre(nil)
	assert.Nil(t, audio.GenreID)

	assert.True(t, audio.CanModify(7))
	assert.False(t, audio.CanModify(8))
}

func TestAudioVisibility(t *testing.T) {
	audio := &Audio{UserID: 5, IsPublic: false, Favorited: []FavoriteAudio{{UserID: 9}}}

	assert.True(t, audio.VisibleTo(5))
	assert.False(t, audio.VisibleTo(6))
	assert.False(t, audio.VisibleTo(0))
	assert.True(t, audio.IsFavoritedBy(9))
	assert.False(t, audio.IsFavoritedBy(5))
}
