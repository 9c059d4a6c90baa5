package storage

import (
	"context"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
)

// RetryingStore retries the idempotent, best-effort operations of a
// delegate. Put and PresignUpload pass straight through.
type RetryingStore struct {
	BlobStore
	buildBackoff func() backoff.BackOff
}

// NewRetryingStore wraps delegate. A nil factory selects a short
// exponential backoff.
func NewRetryingStore(delegate BlobStore, factory func() backoff.BackOff) *RetryingStore {
	if factory == nil {
		factory = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 100 * time.Millisecond
			b.MaxElapsedTime = 3 * time.Second
			return b
		}
	}
	return &RetryingStore{BlobStore: delegate, buildBackoff: factory}
}

func (s *RetryingStore) Delete(ctx context.Context, key string) error {
	return s.retry(ctx, func() error { return s.BlobStore.Delete(ctx, key) })
}

func (s *RetryingStore) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	var info *ObjectInfo
	err := s.retry(ctx, func() error {
		var err error
		info, err = s.BlobStore.Stat(ctx, key)
		return err
	})
	return info, err
}

// List is forwarded when the delegate supports listing.
func (s *RetryingStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	return listOf(ctx, s.BlobStore, prefix)
}

func (s *RetryingStore) retry(ctx context.Context, fn func() error) error {
	b := backoff.WithContext(s.buildBackoff(), ctx)
	return backoff.Retry(fn, b)
}

var _ BlobStore = (*RetryingStore)(nil)
