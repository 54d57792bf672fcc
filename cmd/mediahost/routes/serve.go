package routes

import (
	"github.com/bergaker/mediahost/cmd/mediahost/container"
	"github.com/labstack/echo/v4"
)

// RegisterServeRoutes registers the catch-all asset serving route.
// It must be registered last so explicit routes win.
func RegisterServeRoutes(e *echo.Echo, c *container.Container) {
	e.GET("/*", c.AssetHandler.Serve) // GET /{filename or asset id}
}
