// Package maintenance finds audio blobs that no audio row points at.
package maintenance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"audiochan/logger"
	"audiochan/repository"
	"audiochan/storage"
)

// DefaultMinAge leaves room for uploads whose audio is still being created.
const DefaultMinAge = 24 * time.Hour

// DefaultBatchSize is how many blobs are looked up and deleted at a time.
const DefaultBatchSize = 500

// Store is a blob store that can list.
type Store interface {
	storage.BlobStore
	storage.Lister
}

// Orphan is an audio blob no row points at. A blob whose upload id is
// claimed by a row with another file extension is an orphan too.
type Orphan struct {
	storage.ObjectInfo
	UploadID string
	FileExt  string
}

// Report describes one sweep.
type Report struct {
	Scanned int
	Orphans []Orphan
	Deleted int
	Failed  int
}

// Sweeper compares the audio container with the audios table.
type Sweeper struct {
	blobs     Store
	audios    repository.AudioRepository
	minAge    time.Duration
	BatchSize int
	now       func() time.Time
}

// NewSweeper creates a sweeper. minAge < 0 selects DefaultMinAge.
func NewSweeper(blobs Store, audios repository.AudioRepository, minAge time.Duration) *Sweeper {
	if minAge < 0 {
		minAge = DefaultMinAge
	}
	return &Sweeper{blobs: blobs, audios: audios, minAge: minAge, BatchSize: DefaultBatchSize, now: time.Now}
}

// Sweep lists orphaned audio blobs older than the minimum age and, when
// remove is set, deletes each batch right after it is resolved.
func (s *Sweeper) Sweep(ctx context.Context, remove bool) (*Report, error) {
	objects, err := s.blobs.List(ctx, storage.AudioContainer+"/")
	if err != nil {
		return nil, fmt.Errorf("list audio blobs: %w", err)
	}

	report := &Report{Scanned: len(objects)}
	cutoff := s.now().Add(-s.minAge)
	candidates := make([]Orphan, 0, len(objects))
	for _, obj := range objects {
		uploadID, ext, ok := storage.UploadIDFromKey(obj.Key)
		if !ok || obj.LastModified.After(cutoff) {
			continue
		}
		candidates = append(candidates, Orphan{ObjectInfo: obj, UploadID: uploadID, FileExt: ext})
	}

	size := s.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	for start := 0; start < len(candidates); start += size {
		batch := candidates[start:min(start+size, len(candidates))]
		orphans, err := s.resolve(ctx, batch)
		if err != nil {
			return nil, err
		}
		report.Orphans = append(report.Orphans, orphans...)
		if remove && len(orphans) > 0 {
			keys := make([]string, len(orphans))
			for i, o := range orphans {
				keys[i] = o.Key
			}
			failed := storage.DeleteBestEffort(ctx, s.blobs, "orphan sweep", keys...)
			report.Failed += failed
			report.Deleted += len(keys) - failed
		}
	}

	logger.Info("Orphan sweep finished",
		logger.Int("scanned", report.Scanned),
		logger.Int("orphans", len(report.Orphans)),
		logger.Int("deleted", report.Deleted),
		logger.Int("failed", report.Failed))
	return report, nil
}

// resolve returns the candidates whose upload id and extension match no row.
func (s *Sweeper) resolve(ctx context.Context, batch []Orphan) ([]Orphan, error) {
	ids := make([]string, len(batch))
	for i, c := range batch {
		ids[i] = c.UploadID
	}
	claimed, err := s.audios.UploadExtensions(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("look up upload ids: %w", err)
	}
	var orphans []Orphan
	for _, c := range batch {
		if ext, ok := claimed[c.UploadID]; !ok || !strings.EqualFold(ext, c.FileExt) {
			orphans = append(orphans, c)
		}
	}
	return orphans, nil
}
