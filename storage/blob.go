// Package storage holds the object-storage side of the upload workflow.
// Every backend implements BlobStore; the audio workflow never talks to a
// concrete client.
package storage

import (
	"context"
	"io"
	"time"
)

// PresignRequest describes a direct client upload.
type PresignRequest struct {
	Key         string
	ContentType string
	Expiry      time.Duration
	Metadata    map[string]string // signed, the client must send it back verbatim
}

// PutOptions describes a server-side write.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo is the listing view of a stored object. Metadata is only
// filled by Stat, with lower-cased keys.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
	ETag         string
	Metadata     map[string]string
}

// BlobStore is the capability set the upload workflow depends on.
type BlobStore interface {
	// PresignUpload returns a URL the client can PUT the object to.
	PresignUpload(ctx context.Context, req PresignRequest) (string, error)
	// Stat returns nil, nil when the key is absent.
	Stat(ctx context.Context, key string) (*ObjectInfo, error)
	Put(ctx context.Context, key string, r io.Reader, size int64, opts PutOptions) error
	// Delete succeeds when the key is already gone.
	Delete(ctx context.Context, key string) error
	// URL returns the public address of key.
	URL(key string) string
}

// Lister is implemented by backends that can enumerate a prefix.
type Lister interface {
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
