// Package server exposes the callsign resolver over HTTP.
package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/user00265/ctydatapi/internal/config"
	"github.com/user00265/ctydatapi/internal/logging"
)

// NewRouter builds the gin engine with path normalization, logging, trusted
// proxies and the health check. API routes go on the returned group, which is
// rooted at cfg.BaseURL.
func NewRouter(cfg *config.Config) (*gin.Engine, *gin.RouterGroup) {
	router := gin.New()
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	// Normalize paths: collapse multiple slashes and remove trailing slashes.
	// A changed path is routed again so it reaches the right handler.
	router.Use(func(c *gin.Context) {
		path := normalizePath(c.Request.URL.Path)
		if path != c.Request.URL.Path {
			c.Request.URL.Path = path
			router.HandleContext(c)
			c.Abort()
			return
		}
		c.Next()
	})

	router.Use(logging.GinRecovery())
	router.Use(logging.GinLogger())

	if proxies := cfg.TrustedProxyList(); len(proxies) > 0 {
		if err := router.SetTrustedProxies(proxies); err != nil {
			logging.Warn("Invalid TRUSTED_PROXIES %q: %v", cfg.TrustedProxies, err)
		} else {
			logging.Info("Trusted proxies configured: %v", proxies)
		}
	} else {
		_ = router.SetTrustedProxies(nil)
	}

	api := router.Group(basePath(cfg.BaseURL))
	api.GET("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router, api
}

func normalizePath(path string) string {
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

func basePath(base string) string {
	base = strings.Trim(strings.TrimSpace(base), "/")
	if base == "" {
		return "/"
	}
	return "/" + base
}
