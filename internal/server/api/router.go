package api

import (
	"zenvault/internal/server/config"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter creates and configures the echo router with all routes and middleware.
func SetupRouter(handler *Handler, cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))
	e.Use(RequestLogger())
	e.Use(Metrics())

	// Rate limiter on upload endpoint only
	uploadLimiter := NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	// Unauthenticated surface
	e.GET("/health", handler.HandleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Everything under /api requires a bearer token from the identity provider
	api := e.Group("/api", JWTAuth(cfg.JWTSecret))

	api.POST("/files", handler.HandleUpload, uploadLimiter.Middleware())
	api.GET("/files", handler.HandleList)
	api.GET("/files/:id", handler.HandleGet)
	api.GET("/files/:id/download", handler.HandleDownload)
	api.PATCH("/files/:id", handler.HandleUpdate)
	api.PUT("/files/:id/trash", handler.HandleTrash)
	api.PUT("/files/:id/restore", handler.HandleRestore)
	api.DELETE("/files/:id", handler.HandlePurge)

	api.GET("/usage", handler.HandleUsage)

	return e
}
