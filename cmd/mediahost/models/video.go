package models

import (
	"path/filepath"
	"strings"
)

// VideoAsset is the durable record describing one ingested video and
// its derived artifacts. It is created once by the ingestion pipeline
// after all artifacts exist and is never updated afterwards.
//
// The JSON shape is the wire contract between the pipeline and the
// resolver; field names and types must stay stable so records written
// by earlier deployments keep loading.
type VideoAsset struct {
	// Unique asset ID: the stored file's base name without extension
	ID string `json:"id"`

	// Path to the stored original video bytes
	VideoPath string `json:"video"`

	// Path to the generated still-frame thumbnail
	ThumbnailPath string `json:"thumbnail"`

	// Path to the generated animated preview, empty when generation
	// was skipped or failed
	GifPath string `json:"gif,omitempty"`

	// Pixel dimensions of the primary video stream
	Width  int `json:"width"`
	Height int `json:"height"`

	// Container-reported duration in seconds
	Duration float64 `json:"duration"`

	// Path stem shared by all derived artifacts ({dir}/{id});
	// derivable from VideoPath, not part of the wire shape
	BasePath string `json:"-"`
}

// NewVideoAsset derives the identity fields from a stored video path.
func NewVideoAsset(videoPath string) *VideoAsset {
	id := BaseName(videoPath)
	return &VideoAsset{
		ID:        id,
		VideoPath: videoPath,
		BasePath:  filepath.Join(filepath.Dir(videoPath), id),
	}
}

// Extension returns the video file's extension without the leading dot.
func (v *VideoAsset) Extension() string {
	return strings.TrimPrefix(filepath.Ext(v.VideoPath), ".")
}

// BaseName returns a path's base name with the extension stripped.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
