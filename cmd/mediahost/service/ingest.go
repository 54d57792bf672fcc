package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bergaker/mediahost/cmd/mediahost/models"
	"github.com/bergaker/mediahost/cmd/mediahost/repository"
	"github.com/bergaker/mediahost/common/logger"
)

// ThumbSuffix is the fixed suffix for generated thumbnails.
const ThumbSuffix = "_thumb.png"

// GifSuffix is the fixed suffix for generated animated previews.
const GifSuffix = ".gif"

// ReservedExtension reports whether a video stored with ext would
// share its path with a derived artifact or the sidecar record. A
// .gif video would sit exactly where the animated preview is written
// and a .meta video exactly where the record is committed, so either
// would be silently overwritten during ingestion.
func ReservedExtension(ext string) bool {
	return ext == GifSuffix || ext == repository.MetaSuffix
}

// IngestService turns a freshly stored video file into a committed
// asset record plus derived artifacts. The record is written only
// after every artifact it claims actually exists; there are no
// internal retries, and failures propagate to the caller.
type IngestService struct {
	processor      MediaProcessor
	metadata       *repository.MetadataRepository
	previewEnabled bool
	log            *logger.Logger
}

// NewIngestService creates a new ingestion service
func NewIngestService(processor MediaProcessor, metadata *repository.MetadataRepository, previewEnabled bool, log *logger.Logger) *IngestService {
	return &IngestService{
		processor:      processor,
		metadata:       metadata,
		previewEnabled: previewEnabled,
		log:            log,
	}
}

// Ingest processes the video at videoPath and commits its asset
// record. On failure no record exists; derived files already written
// stay behind as orphaned garbage (known limitation, nothing rolls
// them back).
func (s *IngestService) Ingest(ctx context.Context, videoPath string) (*models.VideoAsset, error) {
	if ext := filepath.Ext(videoPath); ReservedExtension(ext) {
		return nil, fmt.Errorf("extension %s collides with derived artifact paths for %s", ext, videoPath)
	}

	asset := models.NewVideoAsset(videoPath)
	log := s.log.WithAssetID(asset.ID)

	probe, err := s.processor.Probe(ctx, videoPath)
	if err != nil {
		var probeErr *models.ProbeError
		if errors.As(err, &probeErr) {
			log.Error("probe failed", "path", videoPath, "stderr", probeErr.Stderr, "error", err)
		}
		return nil, err
	}
	asset.Width = probe.Width
	asset.Height = probe.Height
	asset.Duration = probe.Duration

	thumbPath := asset.BasePath + ThumbSuffix
	if err := s.processor.Thumbnail(ctx, videoPath, thumbPath); err != nil {
		var genErr *models.ArtifactGenerationError
		if errors.As(err, &genErr) {
			log.Error("thumbnail failed", "path", videoPath, "stderr", genErr.Stderr, "error", err)
		}
		return nil, err
	}
	asset.ThumbnailPath = thumbPath

	// The preview is awaited before commit so the record never claims
	// a gif that does not exist. Preview failure is tolerated: the
	// asset stays viewable through its thumbnail.
	if s.previewEnabled {
		gifPath := asset.BasePath + GifSuffix
		if err := s.processor.AnimatedPreview(ctx, videoPath, gifPath); err != nil {
			var genErr *models.ArtifactGenerationError
			if errors.As(err, &genErr) {
				log.Warn("preview failed, committing without gif",
					"path", videoPath, "stderr", genErr.Stderr, "error", err)
			}
			os.Remove(gifPath)
		} else {
			asset.GifPath = gifPath
		}
	}

	if err := s.metadata.Create(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to commit record for %s: %w", asset.ID, err)
	}

	log.Info("video ingested",
		"width", asset.Width,
		"height", asset.Height,
		"duration", asset.Duration,
		"gif", asset.GifPath != "",
	)

	return asset, nil
}
