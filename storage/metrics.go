package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer captures telemetry for store operations.
type Observer interface {
	RecordOperation(op string, duration time.Duration, err error)
	RecordPut(duration time.Duration, sizeBytes int64, err error)
}

// PrometheusObserver exports store metrics to Prometheus.
type PrometheusObserver struct {
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
	putBytes prometheus.Counter
}

// NewPrometheusObserver registers the store metrics on reg, reusing
// collectors that are already registered.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "audiochan_storage"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &PrometheusObserver{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of object storage operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_errors_total",
			Help:      "Count of object storage failures.",
		}, []string{"operation"}),
		putBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "put_bytes_total",
			Help:      "Bytes written to object storage by the server.",
		}),
	}

	if err := reg.Register(o.duration); err != nil {
		existing, ok := alreadyRegistered[*prometheus.HistogramVec](err)
		if !ok {
			return nil, fmt.Errorf("register storage histogram: %w", err)
		}
		o.duration = existing
	}
	if err := reg.Register(o.errors); err != nil {
		existing, ok := alreadyRegistered[*prometheus.CounterVec](err)
		if !ok {
			return nil, fmt.Errorf("register storage error counter: %w", err)
		}
		o.errors = existing
	}
	if err := reg.Register(o.putBytes); err != nil {
		existing, ok := alreadyRegistered[prometheus.Counter](err)
		if !ok {
			return nil, fmt.Errorf("register storage bytes counter: %w", err)
		}
		o.putBytes = existing
	}
	return o, nil
}

func alreadyRegistered[C prometheus.Collector](err error) (C, bool) {
	var zero C
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return zero, false
	}
	existing, ok := are.ExistingCollector.(C)
	return existing, ok
}

func (o *PrometheusObserver) RecordOperation(op string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		o.errors.WithLabelValues(op).Inc()
	}
}

func (o *PrometheusObserver) RecordPut(duration time.Duration, sizeBytes int64, err error) {
	if o == nil {
		return
	}
	o.RecordOperation("put", duration, err)
	if err == nil && sizeBytes > 0 {
		o.putBytes.Add(float64(sizeBytes))
	}
}

type nopObserver struct{}

func (nopObserver) RecordOperation(string, time.Duration, error) {}

func (nopObserver) RecordPut(time.Duration, int64, error) {}

// ObservedStore reports every call of its delegate to an Observer.
type ObservedStore struct {
	delegate BlobStore
	observer Observer
}

// NewObservedStore wraps delegate. A nil observer records nothing.
func NewObservedStore(delegate BlobStore, observer Observer) *ObservedStore {
	if observer == nil {
		observer = nopObserver{}
	}
	return &ObservedStore{delegate: delegate, observer: observer}
}

func (s *ObservedStore) PresignUpload(ctx context.Context, req PresignRequest) (string, error) {
	start := time.Now()
	u, err := s.delegate.PresignUpload(ctx, req)
	s.observer.RecordOperation("presign", time.Since(start), err)
	return u, err
}

func (s *ObservedStore) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	start := time.Now()
	info, err := s.delegate.Stat(ctx, key)
	s.observer.RecordOperation("stat", time.Since(start), err)
	return info, err
}

func (s *ObservedStore) Put(ctx context.Context, key string, r io.Reader, size int64, opts PutOptions) error {
	start := time.Now()
	err := s.delegate.Put(ctx, key, r, size, opts)
	s.observer.RecordPut(time.Since(start), size, err)
	return err
}

func (s *ObservedStore) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.delegate.Delete(ctx, key)
	s.observer.RecordOperation("delete", time.Since(start), err)
	return err
}

func (s *ObservedStore) URL(key string) string {
	return s.delegate.URL(key)
}

func (s *ObservedStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	start := time.Now()
	objects, err := listOf(ctx, s.delegate, prefix)
	s.observer.RecordOperation("list", time.Since(start), err)
	return objects, err
}

// ErrListUnsupported is returned when a wrapped store cannot list.
var ErrListUnsupported = errors.New("storage: listing not supported")

func listOf(ctx context.Context, store BlobStore, prefix string) ([]ObjectInfo, error) {
	l, ok := store.(Lister)
	if !ok {
		return nil, ErrListUnsupported
	}
	return l.List(ctx, prefix)
}

var (
	_ BlobStore = (*ObservedStore)(nil)
	_ Lister    = (*ObservedStore)(nil)
	_ Observer  = (*PrometheusObserver)(nil)
)
