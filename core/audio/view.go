package audio

import (
	"time"

	"audiochan/model"
	"audiochan/storage"
)

// OwnerView is the public face of an audio's owner.
type OwnerView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Picture  string `json:"picture,omitempty"`
}

// GenreView identifies a genre.
type GenreView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// View is an audio as seen by one caller.
type View struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	IsPublic      bool       `json:"isPublic"`
	IsLoop        bool       `json:"isLoop"`
	Duration      int        `json:"duration"`
	FileSize      int64      `json:"fileSize"`
	FileExt       string     `json:"fileExt"`
	AudioURL      string     `json:"audioUrl"`
	PictureURL    string     `json:"pictureUrl,omitempty"`
	Tags          []string   `json:"tags"`
	Genre         *GenreView `json:"genre,omitempty"`
	User          *OwnerView `json:"user,omitempty"`
	FavoriteCount int        `json:"favoriteCount"`
	IsFavorited   bool       `json:"isFavorited"`
	Created       time.Time  `json:"created"`
	Updated       time.Time  `json:"updated"`
}

// NewView maps an audio loaded with its associations.
func NewView(a *model.Audio, callerID int64, blobs storage.BlobStore) View {
	v := View{
		ID:            a.ID,
		Title:         a.Title,
		Description:   a.Description,
		IsPublic:      a.IsPublic,
		IsLoop:        a.IsLoop,
		Duration:      a.Duration,
		FileSize:      a.FileSize,
		FileExt:       a.FileExt,
		AudioURL:      blobs.URL(storage.AudioKey(a.UploadID, a.FileExt)),
		Tags:          a.TagIDs(),
		FavoriteCount: len(a.Favorited),
		IsFavorited:   callerID > 0 && a.IsFavoritedBy(callerID),
		Created:       a.CreatedAt,
		Updated:       a.UpdatedAt,
	}
	if a.Picture != "" {
		v.PictureURL = blobs.URL(a.Picture)
	}
	if a.Genre != nil {
		v.Genre = &GenreView{ID: a.Genre.ID, Name: a.Genre.Name, Slug: a.Genre.Slug}
	}
	if a.User != nil {
		v.User = &OwnerView{ID: a.User.ID, Username: a.User.Username}
		if a.User.Picture != "" {
			v.User.Picture = blobs.URL(a.User.Picture)
		}
	}
	return v
}
