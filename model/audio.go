package model

import (
	"errors"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrEmptyUploadID     = errors.New("upload id cannot be empty")
	ErrEmptyFileName     = errors.New("file name cannot be empty")
	ErrMissingFileExt    = errors.New("file name does not have a file extension")
	ErrInvalidAudioOwner = errors.New("audio must belong to a user")
)

// Audio is one uploaded track. UploadID and FileExt together name the
// audio object in blob storage; they are the only link to it.
type Audio struct {
	ID          int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID      int64           `json:"userId" gorm:"index;not null"`
	User        *User           `json:"user,omitempty" gorm:"foreignKey:UserID"`
	UploadID    string          `json:"uploadId" gorm:"size:36;uniqueIndex;not null"`
	FileExt     string          `json:"fileExt" gorm:"size:10"`
	FileSize    int64           `json:"fileSize"`
	Duration    int             `json:"duration"` // seconds
	Title       string          `json:"title" gorm:"size:100;not null"`
	Description string          `json:"description" gorm:"size:500"`
	IsPublic    bool            `json:"isPublic"`
	IsLoop      bool            `json:"isLoop"`
	Picture     string          `json:"picture" gorm:"size:255"` // blob key, empty when unset
	GenreID     *int64          `json:"genreId" gorm:"index"`
	Genre       *Genre          `json:"genre,omitempty" gorm:"foreignKey:GenreID"`
	Tags        []Tag           `json:"tags" gorm:"many2many:audio_tags;"`
	Favorited   []FavoriteAudio `json:"-" gorm:"foreignKey:AudioID"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// TableName pins the table name.
func (Audio) TableName() string {
	return "audios"
}

// NewAudio builds a public audio from an uploaded file. The title defaults
// to the file name without its extension, and the extension is lower-cased
// so it matches the key the upload URL was issued for.
func NewAudio(uploadID, fileName string, fileSize int64, duration int, userID int64) (*Audio, error) {
	uploadID = strings.TrimSpace(uploadID)
	if uploadID == "" {
		return nil, ErrEmptyUploadID
	}
	if strings.TrimSpace(fileName) == "" {
		return nil, ErrEmptyFileName
	}
	ext := filepath.Ext(fileName)
	if ext == "" || ext == "." {
		return nil, ErrMissingFileExt
	}
	if userID <= 0 {
		return nil, ErrInvalidAudioOwner
	}

	return &Audio{
		UserID:   userID,
		UploadID: uploadID,
		FileExt:  strings.ToLower(ext),
		FileSize: fileSize,
		Duration: duration,
		Title:    strings.TrimSuffix(filepath.Base(fileName), ext),
		IsPublic: true,
	}, nil
}

// CanModify reports whether userID owns the audio.
func (a *Audio) CanModify(userID int64) bool {
	return a.UserID == userID
}

// UpdateTitle ignores blank titles.
func (a *Audio) UpdateTitle(title string) {
	if title = strings.TrimSpace(title); title != "" {
		a.Title = title
	}
}

func (a *Audio) UpdateDescription(description *string) {
	if description != nil {
		a.Description = *description
	}
}

func (a *Audio) UpdatePublicStatus(isPublic *bool) {
	if isPublic != nil {
		a.IsPublic = *isPublic
	}
}

func (a *Audio) UpdateLoop(isLoop *bool) {
	if isLoop != nil {
		a.IsLoop = *isLoop
	}
}

// UpdateGenre sets or clears the genre.
func (a *Audio) UpdateGenre(genre *Genre) {
	a.Genre = genre
	if genre == nil {
		a.GenreID = nil
		return
	}
	id := genre.ID
	a.GenreID = &id
}

// TagIDs returns the tag slugs in stored order.
func (a *Audio) TagIDs() []string {
	ids := make([]string, 0, len(a.Tags))
	for _, t := range a.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// IsFavoritedBy reports whether userID is among the loaded favorites.
func (a *Audio) IsFavoritedBy(userID int64) bool {
	for _, f := range a.Favorited {
		if f.UserID == userID {
			return true
		}
	}
	return false
}

// VisibleTo reports whether userID may read the audio.
func (a *Audio) VisibleTo(userID int64) bool {
	return a.IsPublic || (userID > 0 && a.UserID == userID)
}
