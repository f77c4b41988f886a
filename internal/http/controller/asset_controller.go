package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/price-alerts-dashboard/internal/offline"
	"github.com/iyhunko/price-alerts-dashboard/internal/webapp"
)

// AssetController serves the background script, the manifest and the icons.
type AssetController struct {
	script   []byte
	manifest webapp.Manifest
	icons    *webapp.IconSet
}

// NewAssetController renders the background script for conf once.
func NewAssetController(conf offline.Config) (*AssetController, error) {
	script, err := offline.Script(conf)
	if err != nil {
		return nil, err
	}
	return &AssetController{
		script:   script,
		manifest: webapp.DefaultManifest(),
		icons:    webapp.NewIconSet(),
	}, nil
}

// ServiceWorker handles GET /sw.js. The script must not be cached by the
// browser so a new cache version is picked up on the next visit.
func (ac *AssetController) ServiceWorker(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")
	c.Header("Service-Worker-Allowed", "/")
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", ac.script)
}

// Manifest handles GET /manifest.json.
func (ac *AssetController) Manifest(c *gin.Context) {
	c.Header("Content-Type", "application/manifest+json")
	c.JSON(http.StatusOK, ac.manifest)
}

// Icon handles GET /icons/:file.
func (ac *AssetController) Icon(c *gin.Context) {
	b, err := ac.icons.File(c.Param("file"))
	if errors.Is(err, webapp.ErrUnknownIcon) {
		c.JSON(http.StatusNotFound, gin.H{"error": "icon not found"})
		return
	}
	if err != nil {
		slog.Error("failed to render icon", slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render icon"})
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", b)
}
