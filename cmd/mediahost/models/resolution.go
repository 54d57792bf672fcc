package models

// ResolutionKind tags the outcome of classifying a request path.
type ResolutionKind string

const (
	// KindRawAsset means the path names an existing file to stream
	KindRawAsset ResolutionKind = "raw_asset"

	// KindViewerRequest means the path names an asset record to render
	// as a playback page
	KindViewerRequest ResolutionKind = "viewer_request"

	// KindInvalid means the path resolves to nothing servable
	KindInvalid ResolutionKind = "invalid"
)

// Resolution is the tagged outcome of asset resolution. Exactly one of
// Raw/Viewer is set for the matching kind; Invalid carries neither.
type Resolution struct {
	Kind   ResolutionKind
	Raw    *RawAsset
	Viewer *ViewerData
}

// RawAsset describes a file to stream back as-is.
type RawAsset struct {
	// Filesystem path of the bytes to serve
	Path string

	// Content type derived from the extension
	ContentType string
}

// ViewerData carries everything the playback page needs to render.
type ViewerData struct {
	ID           string
	VideoURL     string
	ThumbnailURL string
	GifURL       string
	Width        int
	Height       int
	Duration     float64

	// Extension of the video file, for player configuration
	Extension string
}

// Invalid returns the not-found resolution.
func Invalid() Resolution {
	return Resolution{Kind: KindInvalid}
}
