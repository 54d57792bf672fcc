package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bergaker/mediahost/common/logger"
)

// tokenBytes gives 4 base64 characters per name; short enough to type,
// large enough that collisions stay rare until a directory fills up.
const tokenBytes = 3

// maxAllocateAttempts bounds the collision retry loop.
const maxAllocateAttempts = 64

// FilenameAllocator produces short, unguessable, URL- and path-safe
// storage names that do not collide with existing files.
type FilenameAllocator struct {
	log *logger.Logger
}

// NewFilenameAllocator creates a new filename allocator
func NewFilenameAllocator(log *logger.Logger) *FilenameAllocator {
	return &FilenameAllocator{log: log}
}

// Allocate returns a fresh filename (with extension) that does not
// exist in dir. Names come from a cryptographically strong source and
// use only URL/path-safe characters.
//
// Uniqueness is enforced by re-checking existence right before the
// caller commits the write. A racing upload could claim the same name
// between the check and the write; that TOCTOU window is a known,
// accepted limitation at this scale.
func (a *FilenameAllocator) Allocate(dir, ext string) (string, error) {
	for attempt := 0; attempt < maxAllocateAttempts; attempt++ {
		buf := make([]byte, tokenBytes)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}

		name := base64.RawURLEncoding.EncodeToString(buf) + ext
		if _, err := os.Stat(filepath.Join(dir, name)); os.IsNotExist(err) {
			if attempt > 0 {
				a.log.Debug("filename allocated after collisions",
					"dir", dir, "attempts", attempt+1)
			}
			return name, nil
		}
	}

	return "", fmt.Errorf("failed to allocate filename in %s after %d attempts", dir, maxAllocateAttempts)
}

// SafeExtension normalizes a client-supplied extension to a single
// lowercase path segment, dropping anything that could escape the
// storage root.
func SafeExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if ext == "." {
		return ""
	}
	for _, r := range strings.TrimPrefix(ext, ".") {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
