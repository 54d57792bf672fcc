package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/bergaker/mediahost/cmd/mediahost/models"
	"github.com/bergaker/mediahost/common/cache"
)

// MetaSuffix is the fixed suffix convention that makes the sidecar
// location derivable from a record's base path alone.
const MetaSuffix = ".meta"

// MetadataRepository persists video asset records as JSON sidecar
// files keyed by base path. Records are immutable after creation, so
// the optional read cache never serves stale data.
type MetadataRepository struct {
	recordCache cache.Cache
	cacheTTL    time.Duration
}

// NewMetadataRepository creates a new metadata repository. The cache
// may be nil to disable read caching.
func NewMetadataRepository(recordCache cache.Cache, cacheTTL time.Duration) *MetadataRepository {
	return &MetadataRepository{
		recordCache: recordCache,
		cacheTTL:    cacheTTL,
	}
}

// SidecarPath returns the sidecar file location for a base path.
func SidecarPath(basePath string) string {
	return basePath + MetaSuffix
}

// Create serializes and persists a record atomically: the bytes are
// written to a temp file, synced, then renamed onto the sidecar path.
// A reader never observes a partially written record.
func (r *MetadataRepository) Create(ctx context.Context, record *models.VideoAsset) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to serialize record %s: %w", record.ID, err)
	}

	target := SidecarPath(record.BasePath)
	tmp := target + ".tmp"

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create sidecar temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write sidecar: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to sync sidecar: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close sidecar: %w", err)
	}

	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to commit sidecar: %w", err)
	}

	if r.recordCache != nil {
		r.recordCache.Set(ctx, record.BasePath, data, r.cacheTTL)
	}

	return nil
}

// Exists reports whether a record exists for the base path without
// deserializing it.
func (r *MetadataRepository) Exists(ctx context.Context, basePath string) bool {
	if r.recordCache != nil {
		if _, hit, _ := r.recordCache.Get(ctx, basePath); hit {
			return true
		}
	}
	_, err := os.Stat(SidecarPath(basePath))
	return err == nil
}

// Load reads and deserializes the record for a base path. A missing
// sidecar yields models.ErrNotFound; bytes that do not parse into the
// expected shape yield models.ErrCorruptRecord.
func (r *MetadataRepository) Load(ctx context.Context, basePath string) (*models.VideoAsset, error) {
	var data []byte

	if r.recordCache != nil {
		if cached, hit, _ := r.recordCache.Get(ctx, basePath); hit {
			data = cached
		}
	}

	if data == nil {
		raw, err := os.ReadFile(SidecarPath(basePath))
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("no record at %s: %w", basePath, models.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to read sidecar %s: %w", basePath, err)
		}
		data = raw
	}

	record := &models.VideoAsset{}
	if err := json.Unmarshal(data, record); err != nil {
		return nil, fmt.Errorf("sidecar %s does not parse: %v: %w", basePath, err, models.ErrCorruptRecord)
	}

	if record.ID == "" || record.VideoPath == "" || record.ThumbnailPath == "" {
		return nil, fmt.Errorf("sidecar %s missing mandatory fields: %w", basePath, models.ErrCorruptRecord)
	}

	record.BasePath = basePath

	if r.recordCache != nil {
		r.recordCache.Set(ctx, basePath, data, r.cacheTTL)
	}

	return record, nil
}
