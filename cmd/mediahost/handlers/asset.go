package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"os"
	"strings"

	"github.com/bergaker/mediahost/cmd/mediahost/models"
	"github.com/bergaker/mediahost/cmd/mediahost/service"
	"github.com/bergaker/mediahost/common/bootstrap"
	"github.com/labstack/echo/v4"
)

//go:embed templates/viewer.html
var templateFS embed.FS

// AssetHandler serves raw assets and viewer pages
type AssetHandler struct {
	components *bootstrap.Components
	resolver   *service.ResolverService
	viewerTmpl *template.Template
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(components *bootstrap.Components, resolver *service.ResolverService) (*AssetHandler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/viewer.html")
	if err != nil {
		return nil, err
	}

	return &AssetHandler{
		components: components,
		resolver:   resolver,
		viewerTmpl: tmpl,
	}, nil
}

// Serve resolves the request path and streams a raw asset, renders a
// viewer page, or answers not-found
// GET /*
func (h *AssetHandler) Serve(c echo.Context) error {
	queryHint := c.QueryParam("video") == "1"
	videoHint := queryHint || isVidSubdomain(c.Request().Host)

	resolution := h.resolver.Resolve(c.Request().Context(), c.Request().URL.Path, videoHint)

	switch resolution.Kind {
	case models.KindRawAsset:
		return h.serveRaw(c, resolution.Raw)

	case models.KindViewerRequest:
		return h.serveViewer(c, resolution.Viewer, queryHint)

	default:
		return c.NoContent(http.StatusNotFound)
	}
}

// serveRaw streams the file with the resolved content type. Serving
// through http.ServeContent gets range request support for free, which
// players need for scrubbing.
func (h *AssetHandler) serveRaw(c echo.Context, raw *models.RawAsset) error {
	f, err := os.Open(raw.Path)
	if err != nil {
		h.components.Logger.Error("failed to open resolved asset", "path", raw.Path, "error", err)
		return c.NoContent(http.StatusNotFound)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return c.NoContent(http.StatusNotFound)
	}

	c.Response().Header().Set(echo.HeaderContentType, raw.ContentType)
	http.ServeContent(c.Response(), c.Request(), info.Name(), info.ModTime(), f)
	return nil
}

// serveViewer renders the playback page. When the request was routed
// by query flag rather than subdomain, the flag is carried onto the
// video URL so the player's fetch routes to the video root too.
func (h *AssetHandler) serveViewer(c echo.Context, viewer *models.ViewerData, queryHint bool) error {
	if queryHint {
		viewer.VideoURL += "?video=1"
	}

	var buf bytes.Buffer
	if err := h.viewerTmpl.Execute(&buf, viewer); err != nil {
		h.components.Logger.Error("failed to render viewer", "asset_id", viewer.ID, "error", err)
		return c.NoContent(http.StatusNotFound)
	}

	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// isVidSubdomain reports whether the request host's first label is
// "vid" (e.g. vid.bergaker.com).
func isVidSubdomain(host string) bool {
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	label, _, found := strings.Cut(host, ".")
	return found && label == "vid"
}
