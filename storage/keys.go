package storage

import (
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	AudioContainer   = "audios"
	PictureContainer = "pictures"
	UserContainer    = "users"
)

// PictureKind selects the picture sub-container.
type PictureKind string

const (
	AudioPicture PictureKind = AudioContainer
	UserPicture  PictureKind = UserContainer
)

// AudioKey is the object key of an uploaded audio file.
func AudioKey(uploadID, fileExt string) string {
	return path.Join(AudioContainer, uploadID+fileExt)
}

// UploadIDFromKey reverses AudioKey. ok is false for keys outside the
// audio container.
func UploadIDFromKey(key string) (uploadID, fileExt string, ok bool) {
	name, found := strings.CutPrefix(key, AudioContainer+"/")
	if !found || name == "" || strings.Contains(name, "/") {
		return "", "", false
	}
	fileExt = path.Ext(name)
	return strings.TrimSuffix(name, fileExt), fileExt, true
}

// PictureKey is the object key of a processed picture. token must be unique
// per write so a replacement never overwrites the picture it replaces.
func PictureKey(kind PictureKind, entityID int64, token string) string {
	return path.Join(PictureContainer, string(kind), strconv.FormatInt(entityID, 10), token, "picture.jpg")
}

var contentTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// ContentTypeFor infers the content type from a file name's extension.
func ContentTypeFor(fileName string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(fileName))]; ok {
		return ct
	}
	return "application/octet-stream"
}
