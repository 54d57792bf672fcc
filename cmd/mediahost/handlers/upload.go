package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/bergaker/mediahost/cmd/mediahost/service"
	"github.com/bergaker/mediahost/common/bootstrap"
	"github.com/labstack/echo/v4"
)

// UploadHandler handles image and video uploads
type UploadHandler struct {
	components *bootstrap.Components
	allocator  *service.FilenameAllocator
	ingest     *service.IngestService
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(components *bootstrap.Components, allocator *service.FilenameAllocator, ingest *service.IngestService) *UploadHandler {
	return &UploadHandler{
		components: components,
		allocator:  allocator,
		ingest:     ingest,
	}
}

// UploadImage stores an image and returns its public URL
// POST /upload_image
func (h *UploadHandler) UploadImage(c echo.Context) error {
	name, err := h.storeUpload(c, "file_image", h.components.Config.Storage.ImageDir, false)
	if err != nil {
		return err
	}

	h.components.Logger.Info("image uploaded", "name", name)

	return c.JSON(http.StatusOK, map[string]string{
		"url": h.components.Config.Storage.ImageBaseURL + "/" + name,
	})
}

// UploadVideo stores a video, runs the ingestion pipeline, and returns
// the public viewer URL
// POST /upload_video
func (h *UploadHandler) UploadVideo(c echo.Context) error {
	name, err := h.storeUpload(c, "file_video", h.components.Config.Storage.VideoDir, true)
	if err != nil {
		return err
	}

	videoPath := filepath.Join(h.components.Config.Storage.VideoDir, name)

	asset, err := h.ingest.Ingest(c.Request().Context(), videoPath)
	if err != nil {
		// Cause is already logged with detail by the pipeline;
		// clients get a generic failure.
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to process video")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"url": h.components.Config.Storage.VideoBaseURL + "/" + asset.ID,
	})
}

// storeUpload allocates a collision-free name in dir and streams the
// multipart part under field into it. Returns the allocated filename.
func (h *UploadHandler) storeUpload(c echo.Context, field, dir string, requireExt bool) (string, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "missing file")
	}

	ext := service.SafeExtension(fileHeader.Filename)
	if requireExt {
		if ext == "" {
			return "", echo.NewHTTPError(http.StatusBadRequest, "file extension required")
		}
		// A video stored under a derived-artifact extension would be
		// overwritten by its own ingestion output.
		if service.ReservedExtension(ext) {
			return "", echo.NewHTTPError(http.StatusBadRequest, "unsupported file extension")
		}
	}

	name, err := h.allocator.Allocate(dir, ext)
	if err != nil {
		h.components.Logger.Error("filename allocation failed", "dir", dir, "error", err)
		return "", echo.NewHTTPError(http.StatusInternalServerError, "failed to store file")
	}

	if err := saveFile(fileHeader, filepath.Join(dir, name)); err != nil {
		h.components.Logger.Error("failed to store upload", "dir", dir, "name", name, "error", err)
		return "", echo.NewHTTPError(http.StatusInternalServerError, "failed to store file")
	}

	return name, nil
}

// saveFile writes the uploaded part to dest. O_EXCL narrows the
// allocator's check-then-write race to a hard failure instead of a
// silent overwrite.
func saveFile(fileHeader *multipart.FileHeader, dest string) error {
	src, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
