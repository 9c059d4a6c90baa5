package audio

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"audiochan/core/result"
	"audiochan/core/tag"
	"audiochan/storage"
)

const (
	MaxTitleLength       = 30
	MaxDescriptionLength = 500
	MaxTags              = 10
)

// CreateRequest is submitted after the client uploaded the file.
type CreateRequest struct {
	UploadID    string   `json:"uploadId"`
	FileName    string   `json:"fileName"`
	FileSize    int64    `json:"fileSize"`
	Duration    int      `json:"duration"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Genre       string   `json:"genre"`
	IsPublic    *bool    `json:"isPublic"`
	IsLoop      bool     `json:"isLoop"`
}

// UpdateRequest changes only the fields it carries.
type UpdateRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
	Genre       *string  `json:"genre"`
	IsPublic    *bool    `json:"isPublic"`
	IsLoop      *bool    `json:"isLoop"`
}

// ListQuery selects a page of audios.
type ListQuery struct {
	Q        string // title search
	Username string
	Genre    string // id or slug
	Tags     []string
	Sort     string // "favorites" or newest first
	Page     int
	Size     int
}

// SortFavorites orders listings by favorite count.
const SortFavorites = "favorites"

func (s *Service) validateCreate(req CreateRequest) ([]string, error) {
	if strings.TrimSpace(req.UploadID) == "" {
		return nil, result.BadRequest("Upload id is required.")
	}
	if strings.TrimSpace(req.FileName) == "" {
		return nil, result.BadRequest("Filename is required.")
	}
	if !s.allowedFile(req.FileName) {
		return nil, result.BadRequest("File type is not allowed.")
	}
	if req.Duration <= 0 {
		return nil, result.BadRequest("Duration is required.")
	}
	if req.FileSize <= 0 {
		return nil, result.BadRequest("File size is required.")
	}
	if s.cfg.MaxFileSize > 0 && req.FileSize > s.cfg.MaxFileSize {
		return nil, result.BadRequest("File size exceeds the limit.")
	}
	if err := validateText(&req.Title, &req.Description); err != nil {
		return nil, err
	}
	return validateTags(req.Tags)
}

func (s *Service) validateUpdate(req UpdateRequest) ([]string, error) {
	if err := validateText(req.Title, req.Description); err != nil {
		return nil, err
	}
	return validateTags(req.Tags)
}

func validateText(title, description *string) error {
	if title != nil && utf8.RuneCountInString(strings.TrimSpace(*title)) > MaxTitleLength {
		return result.BadRequest("Title cannot be longer than 30 characters.")
	}
	if description != nil && utf8.RuneCountInString(*description) > MaxDescriptionLength {
		return result.BadRequest("Description cannot be longer than 500 characters.")
	}
	return nil
}

func validateTags(raw []string) ([]string, error) {
	tags := tag.Normalize(raw)
	if len(tags) > MaxTags {
		return nil, result.BadRequest("Can only have up to 10 tags.")
	}
	return tags, nil
}

func (s *Service) allowedFile(fileName string) bool {
	ext := filepath.Ext(fileName)
	if ext == "" || ext == "." {
		return false
	}
	ct := storage.ContentTypeFor(fileName)
	if len(s.allowedTypes) == 0 {
		return strings.HasPrefix(ct, "audio/")
	}
	_, ok := s.allowedTypes[ct]
	return ok
}
