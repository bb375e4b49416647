// Package router assembles the gin engine from the application modules.
package router

import (
	"net/http"
	"os"
	"path"
	"path/filepath"

	apphttp "webhook_relay_backend/internal/http"
	"webhook_relay_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const indexFile = "index.html"

// New builds the engine: shared middleware, health and env probes, module
// routes, then the static/404 fallback.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.CORS(app.Config.GetCORSOrigins()))

	engine.GET("/health", func(c *gin.Context) {
		httpkit.OK(c, gin.H{"status": "ok"})
	})

	// Presence only, never values.
	engine.GET("/debug/env", func(c *gin.Context) {
		httpkit.OK(c, app.Config.RequiredEnvStatus())
	})

	routerCtx := &apphttp.RouterContext{Engine: engine, Logger: app.Logger}
	for _, module := range app.Modules {
		app.Logger.Debug("registering module", "module", module.Name())
		module.RegisterRoutes(routerCtx)
	}

	engine.NoRoute(staticFallback(app.Config.GetStaticDir()))

	return engine
}

// staticFallback serves files from dir for unmatched GET/HEAD requests and
// answers everything else with the JSON 404.
func staticFallback(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if dir != "" && (c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead) {
			if file, ok := resolveStatic(dir, c.Request.URL.Path); ok {
				c.File(file)
				return
			}
		}
		httpkit.NotFound(c)
	}
}

// resolveStatic maps a URL path to a regular file under dir. Directories
// resolve to their index.html.
func resolveStatic(dir, urlPath string) (string, bool) {
	clean := path.Clean("/" + urlPath)
	name := filepath.Join(dir, filepath.FromSlash(clean))

	info, err := os.Stat(name)
	if err != nil {
		return "", false
	}
	if info.IsDir() {
		name = filepath.Join(name, indexFile)
		info, err = os.Stat(name)
		if err != nil || info.IsDir() {
			return "", false
		}
	}
	return name, true
}
