// Package picture turns client supplied images into stored 500x500 JPEGs
// and swaps them in without leaking blobs.
package picture

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"audiochan/core/result"
	"audiochan/logger"
	"audiochan/storage"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	// Size is the edge length of every stored picture.
	Size = 500
	// DefaultMaxBytes caps the decoded upload.
	DefaultMaxBytes = 2 * 1024 * 1024
)

// Process decodes base64 image data, with or without a data-URL prefix,
// and re-encodes it as a Size x Size JPEG.
func Process(data string, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if i := strings.Index(data, "base64,"); i >= 0 {
		data = data[i+len("base64,"):]
	}
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, result.BadRequest("Image data is required.")
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, result.BadRequest("Image data is not valid base64.")
	}
	if int64(len(raw)) > maxBytes {
		return nil, result.BadRequest("Image is too large.")
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, result.BadRequest("Image format is not supported.")
	}

	var buf bytes.Buffer
	resized := imaging.Resize(img, Size, Size, imaging.Lanczos)
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode picture: %w", err)
	}
	return buf.Bytes(), nil
}

// ReplaceRequest describes one picture swap.
type ReplaceRequest struct {
	Kind     storage.PictureKind
	EntityID int64
	Data     string
	OldKey   string
	// Commit persists the new key. It runs after the new blob is stored.
	Commit func(ctx context.Context, newKey string) error
}

// Uploader stores processed pictures.
type Uploader struct {
	store    storage.BlobStore
	maxBytes int64
	newToken func() string
}

// NewUploader creates an uploader. maxBytes <= 0 selects DefaultMaxBytes.
func NewUploader(store storage.BlobStore, maxBytes int64) *Uploader {
	return &Uploader{
		store:    store,
		maxBytes: maxBytes,
		newToken: func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
}

// Replace stores the new picture under a fresh key and commits it. The old
// blob is only deleted once Commit succeeded; when anything after the put
// fails, the new blob is deleted instead. Cleanup failures are logged.
func (u *Uploader) Replace(ctx context.Context, req ReplaceRequest) (string, error) {
	jpeg, err := Process(req.Data, u.maxBytes)
	if err != nil {
		return "", err
	}

	key := storage.PictureKey(req.Kind, req.EntityID, u.newToken())
	if err := u.store.Put(ctx, key, bytes.NewReader(jpeg), int64(len(jpeg)), storage.PutOptions{
		ContentType: "image/jpeg",
	}); err != nil {
		return "", fmt.Errorf("store picture: %w", err)
	}

	if err := req.Commit(ctx, key); err != nil {
		storage.DeleteBestEffort(ctx, u.store, "picture commit failed", key)
		return "", err
	}

	if req.OldKey != "" && req.OldKey != key {
		storage.DeleteBestEffort(ctx, u.store, "picture replaced", req.OldKey)
	}
	logger.Debug("Picture replaced",
		logger.String("kind", string(req.Kind)),
		logger.Int64("entityId", req.EntityID),
		logger.String("key", key))
	return key, nil
}
