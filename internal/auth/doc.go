// Package auth provides session-based authentication: signup, login and
// logout backed by bcrypt password digests and server-side sessions.
//
// # Configuration
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>   # Auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h            # Session duration
//	AUTH_BCRYPT_COST=12                  # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true             # HTTPS-only cookies
//	AUTH_MIN_PASSWORD_LENGTH=8           # shortest accepted password
//
// # Usage
//
// Initialize in entrypoint:
//
//	service := auth.NewService(userRepo, toolRepo, cfg.Auth)
//	sessions, _ := auth.NewSessionManager(sqlDB, cfg.Auth)
//	mw := auth.NewMiddleware(userRepo, sessions)
//	router.Use(sessions.SessionLoadSave())
//	router.Use(mw.LoadUser())
//
// Route gates:
//
//	router.GET("/", mw.RequireAuth(), home)
//	router.GET("/login", mw.RequireGuest(), loginPage)
package auth
