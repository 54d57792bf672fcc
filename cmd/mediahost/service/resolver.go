package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/bergaker/mediahost/cmd/mediahost/models"
	"github.com/bergaker/mediahost/cmd/mediahost/repository"
	"github.com/bergaker/mediahost/common/config"
	"github.com/bergaker/mediahost/common/logger"
)

// minPathLength rejects request paths too short to name anything;
// allocated names are at least four characters plus the leading slash.
const minPathLength = 4

// imageExtensions are served with an image/* content type even from
// the video root, where thumbnails live beside the videos.
var imageExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ResolverService classifies inbound request paths into one of three
// servable outcomes: a raw file to stream, a viewer page to compose,
// or nothing. It never returns an error; every branch yields a
// definite resolution.
type ResolverService struct {
	storage  config.StorageConfig
	metadata *repository.MetadataRepository
	log      *logger.Logger
}

// NewResolverService creates a new asset resolver
func NewResolverService(storage config.StorageConfig, metadata *repository.MetadataRepository, log *logger.Logger) *ResolverService {
	return &ResolverService{
		storage:  storage,
		metadata: metadata,
		log:      log,
	}
}

// Resolve classifies reqPath. videoHint reports whether the request
// arrived through the video routing context (vid subdomain or query
// flag); it selects the storage root. Image requests never consult
// the metadata store.
func (s *ResolverService) Resolve(ctx context.Context, reqPath string, videoHint bool) models.Resolution {
	if len(reqPath) < minPathLength {
		return models.Invalid()
	}

	name := strings.TrimPrefix(reqPath, "/")

	// Storage roots are flat; anything that is not a single clean
	// path segment cannot name an asset.
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return models.Invalid()
	}

	root := s.storage.ImageDir
	if videoHint {
		root = s.storage.VideoDir
	}

	ext := filepath.Ext(name)
	if ext != "" {
		return s.resolveRaw(root, name, ext, videoHint)
	}

	if !videoHint {
		return models.Invalid()
	}

	return s.resolveViewer(ctx, filepath.Join(root, name))
}

// resolveRaw serves an explicit-extension path as a raw file fetch.
func (s *ResolverService) resolveRaw(root, name, ext string, videoHint bool) models.Resolution {
	path := filepath.Join(root, name)

	// Sidecar records are internal, never served raw.
	if ext == repository.MetaSuffix {
		return models.Invalid()
	}

	if !fileExists(path) {
		return models.Invalid()
	}

	return models.Resolution{
		Kind: models.KindRawAsset,
		Raw: &models.RawAsset{
			Path:        path,
			ContentType: contentTypeFor(ext, videoHint),
		},
	}
}

// resolveViewer composes the playback payload for an extensionless id.
func (s *ResolverService) resolveViewer(ctx context.Context, basePath string) models.Resolution {
	record, err := s.metadata.Load(ctx, basePath)
	if err != nil {
		if errors.Is(err, models.ErrCorruptRecord) {
			s.log.Error("corrupt asset record", "base_path", basePath, "error", err)
		} else if !errors.Is(err, models.ErrNotFound) {
			s.log.Error("failed to load asset record", "base_path", basePath, "error", err)
		}
		return models.Invalid()
	}

	viewer := &models.ViewerData{
		ID:           record.ID,
		VideoURL:     s.publicVideoURL(record.VideoPath),
		ThumbnailURL: s.publicVideoURL(record.ThumbnailPath),
		Width:        record.Width,
		Height:       record.Height,
		Duration:     record.Duration,
		Extension:    record.Extension(),
	}
	if record.GifPath != "" {
		viewer.GifURL = s.publicVideoURL(record.GifPath)
	}

	return models.Resolution{
		Kind:   models.KindViewerRequest,
		Viewer: viewer,
	}
}

// publicVideoURL exposes a stored file at {videoBase}/{filename}.
func (s *ResolverService) publicVideoURL(storedPath string) string {
	return strings.TrimSuffix(s.storage.VideoBaseURL, "/") + "/" + filepath.Base(storedPath)
}

// contentTypeFor maps an extension to the served content type. Image
// extensions are always image/*, even under the video root: the PNG
// thumbnails live alongside the videos and must not be announced as
// video/png.
func contentTypeFor(ext string, videoHint bool) string {
	ext = strings.ToLower(ext)
	if ct, ok := imageExtensions[ext]; ok {
		return ct
	}
	bare := strings.TrimPrefix(ext, ".")
	if videoHint {
		return "video/" + bare
	}
	return "image/" + bare
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
