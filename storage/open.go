package storage

import (
	"context"
	"fmt"

	"audiochan/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Open builds the configured backend wrapped with retries and metrics.
// reg may be nil to skip metrics.
func Open(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*ObservedStore, error) {
	var backend BlobStore
	switch cfg.StorageDriver {
	case "minio", "":
		store, err := NewMinioStore(ctx, MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			Region:    cfg.MinioRegion,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.StoragePublicURL,
		})
		if err != nil {
			return nil, err
		}
		backend = store
	case "memory":
		backend = NewMemoryStore(cfg.StoragePublicURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	var observer Observer
	if reg != nil {
		o, err := NewPrometheusObserver("", reg)
		if err != nil {
			return nil, err
		}
		observer = o
	}
	return NewObservedStore(NewRetryingStore(backend, nil), observer), nil
}
