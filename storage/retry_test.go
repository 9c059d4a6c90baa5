package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyStore struct {
	BlobStore
	deleteFailures int
	statFailures   int
}

func (f *flakyStore) Delete(ctx context.Context, key string) error {
	if f.deleteFailures > 0 {
		f.deleteFailures--
		return errors.New("flaky")
	}
	return f.BlobStore.Delete(ctx, key)
}

func (f *flakyStore) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	if f.statFailures > 0 {
		f.statFailures--
		return nil, errors.New("flaky")
	}
	return f.BlobStore.Stat(ctx, key)
}

func constantRetries(n uint64) func() backoff.BackOff {
	return func() backoff.BackOff {
		return backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Millisecond), n)
	}
}

func TestRetryingStoreRetriesDelete(t *testing.T) {
	base := NewMemoryStore("")
	base.Seed("audios/a.mp3", []byte("x"))
	store := NewRetryingStore(&flakyStore{BlobStore: base, deleteFailures: 2}, constantRetries(3))

	require.NoError(t, store.Delete(context.Background(), "audios/a.mp3"))
	assert.Empty(t, base.Keys())
}

func TestRetryingStoreGivesUp(t *testing.T) {
	base := NewMemoryStore("")
	store := NewRetryingStore(&flakyStore{BlobStore: base, deleteFailures: 5}, constantRetries(2))

	assert.Error(t, store.Delete(context.Background(), "audios/a.mp3"))
}

func TestRetryingStoreRetriesStat(t *testing.T) {
	base := NewMemoryStore("")
	base.Seed("audios/a.mp3", []byte("x"))
	store := NewRetryingStore(&flakyStore{BlobStore: base, statFailures: 1}, constantRetries(3))

	info, err := store.Stat(context.Background(), "audios/a.mp3")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "audios/a.mp3", info.Key)
}
