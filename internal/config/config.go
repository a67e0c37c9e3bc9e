package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		UI
		Auth
		Sessions
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Path string
	}

	UI struct {
		TemplatesPath string
		StaticPath    string
	}

	Auth struct {
		SessionSecret     string
		SessionLifetime   time.Duration
		BcryptCost        int
		SecureCookies     bool // Set to false for local dev without HTTPS
		MinPasswordLength int  // Minimum accepted password length
	}

	Sessions struct {
		CleanupEnabled  bool
		CleanupSchedule string // Cron format: "*/30 * * * *" = every 30 minutes
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("templates_path", "./templates")
	v.SetDefault("static_path", "./static")

	// Auth defaults
	v.SetDefault("auth_session_secret", "")          // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h")     // 24 hours
	v.SetDefault("auth_bcrypt_cost", 12)             // bcrypt cost factor
	v.SetDefault("auth_secure_cookies", true)        // HTTPS-only cookies
	v.SetDefault("auth_min_password_length", 8)      // shortest accepted password
	v.SetDefault("session_cleanup_enabled", true)    // sweep expired sessions
	v.SetDefault("session_cleanup_schedule", "*/30 * * * *")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		UI: UI{
			TemplatesPath: v.GetString("TEMPLATES_PATH"),
			StaticPath:    v.GetString("STATIC_PATH"),
		},
		Auth: Auth{
			SessionSecret:     v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:   v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:        v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:     v.GetBool("AUTH_SECURE_COOKIES"),
			MinPasswordLength: v.GetInt("AUTH_MIN_PASSWORD_LENGTH"),
		},
		Sessions: Sessions{
			CleanupEnabled:  v.GetBool("SESSION_CLEANUP_ENABLED"),
			CleanupSchedule: v.GetString("SESSION_CLEANUP_SCHEDULE"),
		},
	}
}
