package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// registerStaticRoutes serves the built frontend when the configured UI
// directory exists. Unknown non-API paths fall back to index.html for
// client-side routing; without a UI build, the root returns a JSON hint.
func (s *Server) registerStaticRoutes() {
	uiDir := s.cfg.UIDir
	if uiDir != "" {
		if info, err := os.Stat(uiDir); err != nil || !info.IsDir() {
			s.logger.Warn("UI directory not found, static serving disabled", "path", uiDir)
			uiDir = ""
		}
	}

	if uiDir == "" {
		s.engine.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "Engineering Lifecycle Management API"})
		})
		return
	}

	index := filepath.Join(uiDir, "index.html")
	s.engine.GET("/", func(c *gin.Context) {
		c.File(index)
	})
	if assets := filepath.Join(uiDir, "assets"); dirExists(assets) {
		s.engine.Static("/assets", assets)
	}

	s.engine.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"detail": "API path not found"})
			return
		}
		// Existing files (favicons and the like) are served as-is.
		requested := filepath.Join(uiDir, filepath.Clean("/"+c.Request.URL.Path))
		if info, err := os.Stat(requested); err == nil && !info.IsDir() {
			c.File(requested)
			return
		}
		c.File(index)
	})
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
