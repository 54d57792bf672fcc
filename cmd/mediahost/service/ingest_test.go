package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bergaker/mediahost/cmd/mediahost/models"
	"github.com/bergaker/mediahost/cmd/mediahost/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProcessor stands in for ffmpeg: it writes real artifact files on
// success and fails where instructed.
type fakeProcessor struct {
	probe       ProbeResult
	failProbe   bool
	failThumb   bool
	failPreview bool
}

func (f *fakeProcessor) Probe(ctx context.Context, videoPath string) (ProbeResult, error) {
	if f.failProbe {
		return ProbeResult{}, &models.ProbeError{Path: videoPath, Err: errors.New("no video stream")}
	}
	return f.probe, nil
}

func (f *fakeProcessor) Thumbnail(ctx context.Context, videoPath, outPath string) error {
	if f.failThumb {
		return &models.ArtifactGenerationError{Artifact: "thumbnail", Path: videoPath, Err: errors.New("decode failed")}
	}
	return os.WriteFile(outPath, []byte("png"), 0o644)
}

func (f *fakeProcessor) AnimatedPreview(ctx context.Context, videoPath, outPath string) error {
	if f.failPreview {
		return &models.ArtifactGenerationError{Artifact: "preview", Path: videoPath, Err: errors.New("encode failed")}
	}
	return os.WriteFile(outPath, []byte("gif"), 0o644)
}

func writeVideo(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("mp4 bytes"), 0o644))
	return path
}

func TestIngest_Success(t *testing.T) {
	dir := t.TempDir()
	repo := repository.NewMetadataRepository(nil, 0)
	proc := &fakeProcessor{probe: ProbeResult{Width: 1920, Height: 1080, Duration: 12.5}}
	svc := NewIngestService(proc, repo, true, testLogger())

	videoPath := writeVideo(t, dir, "Ab3d.mp4")

	asset, err := svc.Ingest(context.Background(), videoPath)
	require.NoError(t, err)

	assert.Equal(t, "Ab3d", asset.ID)
	assert.Equal(t, videoPath, asset.VideoPath)
	assert.Equal(t, filepath.Join(dir, "Ab3d")+ThumbSuffix, asset.ThumbnailPath)
	assert.Equal(t, filepath.Join(dir, "Ab3d")+GifSuffix, asset.GifPath)
	assert.Equal(t, 1920, asset.Width)
	assert.Equal(t, 1080, asset.Height)
	assert.InDelta(t, 12.5, asset.Duration, 1e-9)

	// Artifacts exist and the record round-trips identically.
	assert.FileExists(t, asset.ThumbnailPath)
	assert.FileExists(t, asset.GifPath)

	loaded, err := repo.Load(context.Background(), asset.BasePath)
	require.NoError(t, err)
	assert.Equal(t, asset.ID, loaded.ID)
	assert.Equal(t, asset.GifPath, loaded.GifPath)
	assert.InDelta(t, asset.Duration, loaded.Duration, 1e-9)
}

func TestIngest_ProbeFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	repo := repository.NewMetadataRepository(nil, 0)
	proc := &fakeProcessor{failProbe: true}
	svc := NewIngestService(proc, repo, true, testLogger())

	videoPath := writeVideo(t, dir, "dead.mp4")

	_, err := svc.Ingest(context.Background(), videoPath)
	var probeErr *models.ProbeError
	require.ErrorAs(t, err, &probeErr)

	base := filepath.Join(dir, "dead")
	assert.False(t, repo.Exists(context.Background(), base))
	assert.NoFileExists(t, base+ThumbSuffix)
	assert.NoFileExists(t, base+GifSuffix)
}

func TestIngest_ThumbnailFailureCommitsNoRecord(t *testing.T) {
	dir := t.TempDir()
	repo := repository.NewMetadataRepository(nil, 0)
	proc := &fakeProcessor{probe: ProbeResult{Width: 640, Height: 480, Duration: 2}, failThumb: true}
	svc := NewIngestService(proc, repo, true, testLogger())

	videoPath := writeVideo(t, dir, "thmb.mp4")

	_, err := svc.Ingest(context.Background(), videoPath)
	var genErr *models.ArtifactGenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "thumbnail", genErr.Artifact)

	assert.False(t, repo.Exists(context.Background(), filepath.Join(dir, "thmb")))
}

func TestIngest_PreviewFailureCommitsWithoutGif(t *testing.T) {
	dir := t.TempDir()
	repo := repository.NewMetadataRepository(nil, 0)
	proc := &fakeProcessor{probe: ProbeResult{Width: 640, Height: 480, Duration: 2}, failPreview: true}
	svc := NewIngestService(proc, repo, true, testLogger())

	videoPath := writeVideo(t, dir, "gone.mp4")

	asset, err := svc.Ingest(context.Background(), videoPath)
	require.NoError(t, err)
	assert.Empty(t, asset.GifPath)

	// The record never claims an artifact that was not produced.
	loaded, err := repo.Load(context.Background(), asset.BasePath)
	require.NoError(t, err)
	assert.Empty(t, loaded.GifPath)
}

func TestIngest_PreviewDisabled(t *testing.T) {
	dir := t.TempDir()
	repo := repository.NewMetadataRepository(nil, 0)
	proc := &fakeProcessor{probe: ProbeResult{Width: 640, Height: 480, Duration: 2}}
	svc := NewIngestService(proc, repo, false, testLogger())

	videoPath := writeVideo(t, dir, "plain.mp4")

	asset, err := svc.Ingest(context.Background(), videoPath)
	require.NoError(t, err)
	assert.Empty(t, asset.GifPath)
	assert.NoFileExists(t, asset.BasePath+GifSuffix)
}

func TestIngest_ReservedExtensionsRejected(t *testing.T) {
	// A .gif video would be stored exactly where the preview pass
	// writes its output, and a .meta video exactly where the record
	// is committed. Either way ingestion must refuse before it can
	// clobber the original bytes.
	for _, name := range []string{"Ab3d.gif", "Ab3d.meta"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			repo := repository.NewMetadataRepository(nil, 0)
			proc := &fakeProcessor{
				probe:       ProbeResult{Width: 640, Height: 480, Duration: 1},
				failPreview: true,
			}
			svc := NewIngestService(proc, repo, true, testLogger())

			videoPath := writeVideo(t, dir, name)

			_, err := svc.Ingest(context.Background(), videoPath)
			require.Error(t, err)

			data, readErr := os.ReadFile(videoPath)
			require.NoError(t, readErr)
			assert.Equal(t, []byte("mp4 bytes"), data)
			assert.False(t, repo.Exists(context.Background(), filepath.Join(dir, "Ab3d")))
		})
	}
}
