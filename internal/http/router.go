package http

import (
	"html/template"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/toolshed/internal/auth"
	"github.com/mrlokans/toolshed/internal/database"
)

// RouterConfig carries the dependencies for the HTTP router.
type RouterConfig struct {
	Database       *database.Database
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	ToolLister     auth.ToolLister
	TemplatesPath  string
	StaticPath     string
	CSRFSecret     []byte
	SecureCookies  bool
	Version        string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	router.Use(cfg.SessionManager.SessionLoadSave())
	router.Use(cfg.AuthMiddleware.LoadUser())

	// Centralized error handler: failures that handlers forward with
	// c.Error instead of rendering inline end up here.
	router.Use(ErrorHandler())

	// Load page templates; the auth controller parses its own under auth/
	tmpl, err := template.ParseGlob(cfg.TemplatesPath + "/*.html")
	if err != nil {
		log.Printf("WARNING: no page templates at %s: %v", cfg.TemplatesPath, err)
	} else {
		router.SetHTMLTemplate(tmpl)
	}

	router.Static("/static", cfg.StaticPath)

	// Auth routes with their access gates
	authController := auth.NewController(cfg.AuthService, cfg.SessionManager, cfg.ToolLister, cfg.TemplatesPath)
	authController.RegisterRoutes(router, cfg.AuthMiddleware)

	// Authenticated landing page
	homeController := NewHomeController()
	router.GET("/", cfg.AuthMiddleware.RequireAuth(), homeController.HomePage)

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	return router
}
