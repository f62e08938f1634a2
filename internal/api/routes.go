package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"

	"synthara-assistant-go/internal/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, handler *Handler, cfg *config.Config) {
	apiGroup := router.Group("/api")
	{
		// System endpoints
		apiGroup.GET("/health", handler.HealthCheck)
		apiGroup.GET("/ready", handler.ReadyCheck)

		// Upload endpoints
		apiGroup.POST("/upload", handler.UploadFile)
		uploads := apiGroup.Group("/uploads")
		{
			uploads.GET("", handler.ListUploads)
			uploads.GET("/:id", handler.GetUpload)
		}

		// Chat endpoints
		apiGroup.GET("/chat", handler.ChatStatus)
		apiGroup.POST("/chat", handler.Chat)
	}

	router.NoRoute(staticHandler(cfg.Directories.StaticDir, handler.log))
}

// SetupMiddleware configures all middleware
func SetupMiddleware(router *gin.Engine, cfg *config.Config, log *zap.Logger) {
	// Request ID must run first so later middleware can log it
	router.Use(RequestIDMiddleware())
	router.Use(LoggingMiddleware(log))
	router.Use(RecoveryMiddleware(log))
	router.Use(SecurityHeadersMiddleware())
	router.Use(CORSMiddleware(cfg.CORS.AllowedOrigins))

	// Rate limiting
	limiter := rate.NewLimiter(rate.Limit(float64(cfg.RateLimit.RequestsPerMinute)/60.0), cfg.RateLimit.BurstSize)
	router.Use(RateLimitMiddleware(limiter))
}

// staticHandler serves the site from dir, with index.html for "/".
// Anything that is not an existing file gets the JSON 404.
func staticHandler(dir string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if dir != "" && (c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead) {
			// Cleaning a rooted path removes any ".." segments
			rel := path.Clean("/" + c.Request.URL.Path)
			if rel == "/" {
				rel = "/index.html"
			}
			full := filepath.Join(dir, filepath.FromSlash(rel))
			if info, err := os.Stat(full); err == nil && !info.IsDir() {
				c.File(full)
				return
			}
		}

		log.Warn("404 error", zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Resource not found",
		})
	}
}
