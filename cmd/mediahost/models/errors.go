package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no file or record exists at the resolved path
	ErrNotFound = errors.New("asset not found")

	// ErrCorruptRecord means a sidecar record exists but does not
	// parse into the expected shape. Clients see not-found; logs keep
	// the distinction.
	ErrCorruptRecord = errors.New("corrupt asset record")
)

// ProbeError wraps a failed media probe. The captured prober output is
// for logs only and must never reach a client response.
type ProbeError struct {
	Path   string
	Stderr string
	Err    error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe failed for %s: %v", e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// ArtifactGenerationError wraps a failed thumbnail or preview encode.
type ArtifactGenerationError struct {
	Artifact string // "thumbnail" or "preview"
	Path     string
	Stderr   string
	Err      error
}

func (e *ArtifactGenerationError) Error() string {
	return fmt.Sprintf("%s generation failed for %s: %v", e.Artifact, e.Path, e.Err)
}

func (e *ArtifactGenerationError) Unwrap() error { return e.Err }
