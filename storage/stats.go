package storage

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"
)

// BucketStats summarises the objects under a prefix.
type BucketStats struct {
	TotalObjects int64
	TotalSize    int64
	LastModified time.Time
	ByExtension  map[string]int64 // object count per lower-cased extension
}

// CollectStats lists prefix and aggregates the result.
func CollectStats(ctx context.Context, l Lister, prefix string) ([]ObjectInfo, *BucketStats, error) {
	objects, err := l.List(ctx, prefix)
	if err != nil {
		return nil, nil, err
	}
	return objects, Summarize(objects), nil
}

// Summarize aggregates a listing.
func Summarize(objects []ObjectInfo) *BucketStats {
	stats := &BucketStats{ByExtension: make(map[string]int64)}
	for _, obj := range objects {
		stats.TotalObjects++
		stats.TotalSize += obj.Size
		if obj.LastModified.After(stats.LastModified) {
			stats.LastModified = obj.LastModified
		}
		ext := strings.ToLower(path.Ext(obj.Key))
		if ext == "" {
			ext = "unknown"
		}
		stats.ByExtension[ext]++
	}
	return stats
}

// Extensions returns the keys of ByExtension in sorted order.
func (b *BucketStats) Extensions() []string {
	exts := make([]string, 0, len(b.ByExtension))
	for ext := range b.ByExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// FormatSize renders a byte count with a binary unit.
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
