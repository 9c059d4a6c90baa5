package storage

import (
	"context"
	"time"

	"audiochan/logger"

	"golang.org/x/sync/errgroup"
)

const (
	// CleanupTimeout bounds a best-effort delete that outlives its request.
	CleanupTimeout = 30 * time.Second
	// CleanupConcurrency caps the deletes in flight per call.
	CleanupConcurrency = 16
)

// DeleteBestEffort removes keys, at most CleanupConcurrency at a time. It
// runs detached from ctx's cancellation so an aborted request still cleans
// up. Failures are logged and counted in the return value. Empty keys are
// skipped.
func DeleteBestEffort(ctx context.Context, store BlobStore, reason string, keys ...string) int {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), CleanupTimeout)
	defer cancel()

	failed := make([]bool, len(keys))
	var g errgroup.Group
	g.SetLimit(CleanupConcurrency)
	for i, key := range keys {
		if key == "" {
			continue
		}
		i, key := i, key
		g.Go(func() error {
			if err := store.Delete(ctx, key); err != nil {
				failed[i] = true
				logger.Warn("Best-effort blob delete failed",
					logger.String("key", key),
					logger.String("reason", reason),
					logger.ErrorField(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	n := 0
	for _, f := range failed {
		if f {
			n++
		}
	}
	return n
}
