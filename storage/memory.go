package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	data        []byte
	contentType string
	metadata    map[string]string
	modified    time.Time
}

// MemoryStore keeps objects in process memory. It backs the "memory"
// storage driver and doubles as a fault-injecting store in tests.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]memoryObject
	baseURL string

	// Injected failures, returned when non-nil.
	FailStat   error
	FailPut    error
	FailDelete error

	deleted   []string
	presigned []PresignRequest
}

// NewMemoryStore constructs a store serving URLs under baseURL.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]memoryObject),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (m *MemoryStore) PresignUpload(ctx context.Context, req PresignRequest) (string, error) {
	if req.Key == "" {
		return "", fmt.Errorf("storage: empty key")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.presigned = append(m.presigned, req)
	return fmt.Sprintf("%s/%s?expires=%d", m.baseURL, req.Key, int(req.Expiry.Seconds())), nil
}

func (m *MemoryStore) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailStat != nil {
		return nil, m.FailStat
	}
	obj, ok := m.objects[key]
	if !ok {
		return nil, nil
	}
	metadata := make(map[string]string, len(obj.metadata))
	for k, v := range obj.metadata {
		metadata[strings.ToLower(k)] = v
	}
	return &ObjectInfo{
		Key:          key,
		Size:         int64(len(obj.data)),
		LastModified: obj.modified,
		ContentType:  obj.contentType,
		Metadata:     metadata,
	}, nil
}

func (m *MemoryStore) Put(ctx context.Context, key string, r io.Reader, size int64, opts PutOptions) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read payload for %s: %w", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPut != nil {
		return m.FailPut
	}
	m.objects[key] = memoryObject{
		data:        data,
		contentType: opts.ContentType,
		metadata:    opts.Metadata,
		modified:    time.Now(),
	}
	return nil
}

// Delete records every attempt, including failed ones.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, key)
	if m.FailDelete != nil {
		return m.FailDelete
	}
	delete(m.objects, key)
	return nil
}

func (m *MemoryStore) URL(key string) string {
	return m.baseURL + "/" + key
}

func (m *MemoryStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ObjectInfo
	for key, obj := range m.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		out = append(out, ObjectInfo{
			Key:          key,
			Size:         int64(len(obj.data)),
			LastModified: obj.modified,
			ContentType:  obj.contentType,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Seed stores data as if a client had completed a presigned upload.
func (m *MemoryStore) Seed(key string, data []byte) {
	m.SeedWithMetadata(key, data, nil)
}

// SeedWithMetadata is Seed with the signed upload metadata attached.
func (m *MemoryStore) SeedWithMetadata(key string, data []byte, metadata map[string]string) {
	_ = m.Put(context.Background(), key, bytes.NewReader(data), int64(len(data)), PutOptions{
		ContentType: ContentTypeFor(key),
		Metadata:    metadata,
	})
}

// Bytes returns the stored payload for assertions.
func (m *MemoryStore) Bytes(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	return append([]byte(nil), obj.data...), ok
}

// Deleted returns the keys passed to Delete, in call order.
func (m *MemoryStore) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

// Presigned returns the recorded presign requests.
func (m *MemoryStore) Presigned() []PresignRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PresignRequest(nil), m.presigned...)
}

// Keys returns the stored keys in sorted order.
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var (
	_ BlobStore = (*MemoryStore)(nil)
	_ Lister    = (*MemoryStore)(nil)
	_ BlobStore = (*MinioStore)(nil)
	_ Lister    = (*MinioStore)(nil)
)
