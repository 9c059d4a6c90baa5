// Package upload issues presigned URLs for direct client uploads.
package upload

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"audiochan/core/result"
	"audiochan/logger"
	"audiochan/storage"

	"github.com/google/uuid"
)

// DefaultExpiry is how long an issued URL stays valid.
const DefaultExpiry = 5 * time.Minute

// Metadata keys bound into the signed request.
const (
	MetaUserID           = "userid"
	MetaOriginalFileName = "originalfilename"
)

// Ticket is what the client needs to upload a file.
type Ticket struct {
	UploadID  string    `json:"uploadId"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Options configures an Issuer.
type Options struct {
	Expiry       time.Duration
	ContentTypes []string // allowed audio content types
	Now          func() time.Time
}

// Issuer hands out upload tickets. It persists nothing.
type Issuer struct {
	store   storage.BlobStore
	expiry  time.Duration
	allowed map[string]struct{}
	now     func() time.Time
	newID   func() string
}

// NewIssuer creates an issuer over store.
func NewIssuer(store storage.BlobStore, opts Options) *Issuer {
	if opts.Expiry <= 0 {
		opts.Expiry = DefaultExpiry
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	allowed := make(map[string]struct{}, len(opts.ContentTypes))
	for _, ct := range opts.ContentTypes {
		allowed[strings.ToLower(strings.TrimSpace(ct))] = struct{}{}
	}
	return &Issuer{
		store:   store,
		expiry:  opts.Expiry,
		allowed: allowed,
		now:     opts.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

// Allowed reports whether fileName has an extension of an accepted audio
// content type. An issuer without configured types accepts any audio/*.
func (i *Issuer) Allowed(fileName string) bool {
	ext := filepath.Ext(fileName)
	if ext == "" || ext == "." {
		return false
	}
	ct := storage.ContentTypeFor(fileName)
	if len(i.allowed) == 0 {
		return strings.HasPrefix(ct, "audio/")
	}
	_, ok := i.allowed[ct]
	return ok
}

// GetUploadURL issues a fresh upload id and a URL the caller can PUT the
// file to. The URL only accepts the caller id and file name it was signed
// with.
func (i *Issuer) GetUploadURL(ctx context.Context, callerID int64, fileName string) (*Ticket, error) {
	if callerID <= 0 {
		return nil, result.Unauthorized("")
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, result.BadRequest("File name is required.")
	}
	if !i.Allowed(fileName) {
		return nil, result.BadRequest("File type is not allowed.")
	}

	uploadID := i.newID()
	key := storage.AudioKey(uploadID, strings.ToLower(filepath.Ext(fileName)))
	expiresAt := i.now().Add(i.expiry)

	url, err := i.store.PresignUpload(ctx, storage.PresignRequest{
		Key:         key,
		ContentType: storage.ContentTypeFor(fileName),
		Expiry:      i.expiry,
		Metadata: map[string]string{
			MetaUserID:           strconv.FormatInt(callerID, 10),
			MetaOriginalFileName: filepath.Base(fileName),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("issue upload url: %w", err)
	}

	logger.Debug("Issued upload URL",
		logger.Int64("userId", callerID),
		logger.String("uploadId", uploadID),
		logger.String("key", key))

	return &Ticket{UploadID: uploadID, URL: url, ExpiresAt: expiresAt}, nil
}
