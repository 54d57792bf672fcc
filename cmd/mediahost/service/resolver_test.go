package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bergaker/mediahost/cmd/mediahost/models"
	"github.com/bergaker/mediahost/cmd/mediahost/repository"
	"github.com/bergaker/mediahost/common/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) (*ResolverService, *repository.MetadataRepository, config.StorageConfig) {
	t.Helper()
	storage := config.StorageConfig{
		ImageDir:     t.TempDir(),
		VideoDir:     t.TempDir(),
		ImageBaseURL: "https://img.example.com",
		VideoBaseURL: "https://vid.example.com",
	}
	repo := repository.NewMetadataRepository(nil, 0)
	return NewResolverService(storage, repo, testLogger()), repo, storage
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("bytes"), 0o644))
}

func TestResolve_ShortPathRejected(t *testing.T) {
	resolver, _, _ := newTestResolver(t)

	for _, hint := range []bool{true, false} {
		res := resolver.Resolve(context.Background(), "/ab", hint)
		assert.Equal(t, models.KindInvalid, res.Kind)
	}
}

func TestResolve_ImageRawFetch(t *testing.T) {
	resolver, _, storage := newTestResolver(t)
	touch(t, filepath.Join(storage.ImageDir, "photo.jpg"))

	res := resolver.Resolve(context.Background(), "/photo.jpg", false)
	require.Equal(t, models.KindRawAsset, res.Kind)
	assert.Equal(t, filepath.Join(storage.ImageDir, "photo.jpg"), res.Raw.Path)
	assert.Equal(t, "image/jpeg", res.Raw.ContentType)
}

func TestResolve_VideoRawFetch(t *testing.T) {
	resolver, _, storage := newTestResolver(t)
	touch(t, filepath.Join(storage.VideoDir, "clip.mp4"))

	res := resolver.Resolve(context.Background(), "/clip.mp4", true)
	require.Equal(t, models.KindRawAsset, res.Kind)
	assert.Equal(t, "video/mp4", res.Raw.ContentType)
}

func TestResolve_ThumbnailUnderVideoRootIsImage(t *testing.T) {
	resolver, _, storage := newTestResolver(t)
	touch(t, filepath.Join(storage.VideoDir, "clip_thumb.png"))

	// Thumbnails are PNGs living beside the videos; they must not be
	// announced as video/png.
	res := resolver.Resolve(context.Background(), "/clip_thumb.png", true)
	require.Equal(t, models.KindRawAsset, res.Kind)
	assert.Equal(t, "image/png", res.Raw.ContentType)
}

func TestResolve_HintSelectsRoot(t *testing.T) {
	resolver, _, storage := newTestResolver(t)
	touch(t, filepath.Join(storage.ImageDir, "only.png"))

	// The file exists under the image root only; a video-routed
	// request must not find it.
	res := resolver.Resolve(context.Background(), "/only.png", true)
	assert.Equal(t, models.KindInvalid, res.Kind)

	res = resolver.Resolve(context.Background(), "/only.png", false)
	assert.Equal(t, models.KindRawAsset, res.Kind)
}

func TestResolve_ViewerComposition(t *testing.T) {
	resolver, repo, storage := newTestResolver(t)

	base := filepath.Join(storage.VideoDir, "clip")
	record := &models.VideoAsset{
		ID:            "clip",
		VideoPath:     base + ".mp4",
		ThumbnailPath: base + "_thumb.png",
		GifPath:       base + ".gif",
		Width:         1920,
		Height:        1080,
		Duration:      12.5,
		BasePath:      base,
	}
	require.NoError(t, repo.Create(context.Background(), record))

	res := resolver.Resolve(context.Background(), "/clip", true)
	require.Equal(t, models.KindViewerRequest, res.Kind)

	viewer := res.Viewer
	assert.Equal(t, "clip", viewer.ID)
	assert.Equal(t, "https://vid.example.com/clip.mp4", viewer.VideoURL)
	assert.Equal(t, "https://vid.example.com/clip_thumb.png", viewer.ThumbnailURL)
	assert.Equal(t, "https://vid.example.com/clip.gif", viewer.GifURL)
	assert.Equal(t, 1920, viewer.Width)
	assert.Equal(t, 1080, viewer.Height)
	assert.InDelta(t, 12.5, viewer.Duration, 1e-9)
	assert.Equal(t, "mp4", viewer.Extension)
}

func TestResolve_ViewerWithoutGif(t *testing.T) {
	resolver, repo, storage := newTestResolver(t)

	base := filepath.Join(storage.VideoDir, "nogif")
	record := &models.VideoAsset{
		ID:            "nogif",
		VideoPath:     base + ".webm",
		ThumbnailPath: base + "_thumb.png",
		Width:         640,
		Height:        480,
		Duration:      3,
		BasePath:      base,
	}
	require.NoError(t, repo.Create(context.Background(), record))

	res := resolver.Resolve(context.Background(), "/nogif", true)
	require.Equal(t, models.KindViewerRequest, res.Kind)
	assert.Empty(t, res.Viewer.GifURL)
	assert.Equal(t, "webm", res.Viewer.Extension)
}

func TestResolve_MissingEverythingIsInvalid(t *testing.T) {
	resolver, _, _ := newTestResolver(t)

	res := resolver.Resolve(context.Background(), "/clip", true)
	assert.Equal(t, models.KindInvalid, res.Kind)

	res = resolver.Resolve(context.Background(), "/clip.mp4", true)
	assert.Equal(t, models.KindInvalid, res.Kind)
}

func TestResolve_ImageRequestsNeverComposeViewers(t *testing.T) {
	resolver, repo, storage := newTestResolver(t)

	// Even with a record present, an image-routed extensionless path
	// is not a viewer request.
	base := filepath.Join(storage.VideoDir, "clip")
	record := &models.VideoAsset{
		ID:            "clip",
		VideoPath:     base + ".mp4",
		ThumbnailPath: base + "_thumb.png",
		Width:         1,
		Height:        1,
		Duration:      1,
		BasePath:      base,
	}
	require.NoError(t, repo.Create(context.Background(), record))

	res := resolver.Resolve(context.Background(), "/clip", false)
	assert.Equal(t, models.KindInvalid, res.Kind)
}

func TestResolve_CorruptRecordIsInvalid(t *testing.T) {
	resolver, _, storage := newTestResolver(t)

	base := filepath.Join(storage.VideoDir, "brkn")
	require.NoError(t, os.WriteFile(repository.SidecarPath(base), []byte("{nope"), 0o644))

	res := resolver.Resolve(context.Background(), "/brkn", true)
	assert.Equal(t, models.KindInvalid, res.Kind)
}

func TestResolve_SidecarNeverServedRaw(t *testing.T) {
	resolver, _, storage := newTestResolver(t)
	touch(t, filepath.Join(storage.VideoDir, "clip.meta"))

	res := resolver.Resolve(context.Background(), "/clip.meta", true)
	assert.Equal(t, models.KindInvalid, res.Kind)
}

func TestResolve_TraversalRejected(t *testing.T) {
	resolver, _, _ := newTestResolver(t)

	for _, path := range []string{"/../secret.png", "/a/b.png", "/.."} {
		res := resolver.Resolve(context.Background(), path, false)
		assert.Equal(t, models.KindInvalid, res.Kind, "path %q", path)
	}
}
