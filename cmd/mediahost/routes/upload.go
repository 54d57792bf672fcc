package routes

import (
	"github.com/bergaker/mediahost/cmd/mediahost/container"
	"github.com/bergaker/mediahost/cmd/mediahost/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterUploadRoutes registers the upload endpoints behind the
// shared-secret middleware
func RegisterUploadRoutes(e *echo.Echo, c *container.Container) {
	h := c.UploadHandler

	uploads := e.Group("", middleware.RequireUploadToken(c.Components.Config.Auth.UploadToken))
	{
		uploads.POST("/upload_image", h.UploadImage) // POST /upload_image
		uploads.POST("/upload_video", h.UploadVideo) // POST /upload_video
	}
}
