package config

import (
	"time"

	"github.com/spf13/viper"
)

type MailerMode string

const (
	MailerModeLog  MailerMode = "log"  // Log verification links instead of sending (default)
	MailerModeSMTP MailerMode = "smtp" // Deliver through an SMTP relay
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		Mailer
		Tasks
		Reaper
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

	Auth struct {
		BcryptCost      int
		VerificationTTL time.Duration // Lifetime of email verification tokens (default: 24h)
		SessionTTL      time.Duration // Lifetime of session tokens (default: 168h)

		// Rate limiting configuration for the login endpoint
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}

	Mailer struct {
		Mode     MailerMode
		BaseURL  string // Base URL embedded in verification links
		From     string
		Host     string
		Port     int
		Username string
		Password string
	}

	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}

	Reaper struct {
		Enabled  bool
		Schedule string // Cron format: "0 * * * *" = hourly
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8189)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("auth_bcrypt_cost", 12)          // bcrypt cost factor
	v.SetDefault("auth_verification_ttl", "24h")  // 24 hours
	v.SetDefault("auth_session_ttl", "168h")      // 7 days
	v.SetDefault("auth_max_login_attempts", 5)    // Max failed attempts
	v.SetDefault("auth_rate_limit_window", "15m") // Window for counting attempts
	v.SetDefault("auth_lockout_duration", "30m")  // Lockout duration

	// Mailer defaults
	v.SetDefault("mailer_mode", "log")
	v.SetDefault("mailer_base_url", "http://localhost:8189")
	v.SetDefault("mailer_from", "noreply@localhost")
	v.SetDefault("mailer_host", "")
	v.SetDefault("mailer_port", 587)
	v.SetDefault("mailer_username", "")
	v.SetDefault("mailer_password", "")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "1m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Token reaper defaults
	v.SetDefault("reaper_enabled", false)
	v.SetDefault("reaper_schedule", "0 * * * *") // Hourly at :00

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
		Auth: Auth{
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			VerificationTTL:  v.GetDuration("AUTH_VERIFICATION_TTL"),
			SessionTTL:       v.GetDuration("AUTH_SESSION_TTL"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Mailer: Mailer{
			Mode:     MailerMode(v.GetString("MAILER_MODE")),
			BaseURL:  v.GetString("MAILER_BASE_URL"),
			From:     v.GetString("MAILER_FROM"),
			Host:     v.GetString("MAILER_HOST"),
			Port:     v.GetInt("MAILER_PORT"),
			Username: v.GetString("MAILER_USERNAME"),
			Password: v.GetString("MAILER_PASSWORD"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Reaper: Reaper{
			Enabled:  v.GetBool("REAPER_ENABLED"),
			Schedule: v.GetString("REAPER_SCHEDULE"),
		},
	}
}
