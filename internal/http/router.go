package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freakishcode/Blog-App/internal/auth"
	"github.com/freakishcode/Blog-App/internal/config"
	"github.com/freakishcode/Blog-App/internal/database"
)

// RouterConfig carries the dependencies the router wires together.
type RouterConfig struct {
	Database       *database.Database
	AuthService    *auth.Service
	AuthController *auth.AuthController
	AuthConfig     config.Auth
	Version        string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Version)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Auth endpoints
	cfg.AuthController.RegisterRoutes(router)

	// Session-protected endpoints
	middleware := auth.NewMiddleware(cfg.AuthService)
	router.GET("/api/auth/me", middleware.RequireSession(), func(c *gin.Context) {
		c.JSON(http.StatusOK, auth.Response{
			Success:  true,
			Message:  "Auto-login successful.",
			Username: auth.GetUsername(c),
		})
	})

	return router
}
