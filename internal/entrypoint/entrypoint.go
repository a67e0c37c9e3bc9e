package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/toolshed/internal/auth"
	"github.com/mrlokans/toolshed/internal/config"
	"github.com/mrlokans/toolshed/internal/database"
	"github.com/mrlokans/toolshed/internal/database/tools"
	"github.com/mrlokans/toolshed/internal/database/users"
	http_controllers "github.com/mrlokans/toolshed/internal/http"
	"github.com/mrlokans/toolshed/internal/scheduler"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop the scheduler)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Toolshed v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	userRepo := users.NewRepository(db.DB)
	toolRepo := tools.NewRepository(db.DB)

	authService := auth.NewService(userRepo, toolRepo, cfg.Auth)

	// Get underlying SQL DB for the session store
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}

	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	authMiddleware := auth.NewMiddleware(userRepo, sessionManager)

	// Generate or use configured CSRF secret
	var csrfSecret []byte
	if cfg.Auth.SessionSecret != "" {
		csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
		if err != nil {
			// Not hex, use as raw bytes
			csrfSecret = []byte(cfg.Auth.SessionSecret)
		}
	} else {
		secret, err := auth.GenerateSessionSecret()
		if err != nil {
			log.Fatalf("Failed to generate CSRF secret: %v", err)
		}
		csrfSecret, _ = hex.DecodeString(secret)
		log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	}

	// Start the expired-session sweeper
	var cleanupScheduler *scheduler.SessionCleanupScheduler
	if cfg.Sessions.CleanupEnabled {
		cleanupScheduler = scheduler.NewSessionCleanupScheduler(sqlDB, cfg.Sessions.CleanupSchedule)
		if err := cleanupScheduler.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start session cleanup scheduler: %v", err)
		}
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:       db,
		AuthService:    authService,
		AuthMiddleware: authMiddleware,
		SessionManager: sessionManager,
		ToolLister:     toolRepo,
		TemplatesPath:  cfg.UI.TemplatesPath,
		StaticPath:     cfg.UI.StaticPath,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		Version:        version,
	})

	onShutdown := func(ctx context.Context) {
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
		}
	}

	Serve(router, cfg, onShutdown)
}
