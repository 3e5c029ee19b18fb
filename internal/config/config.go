package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Dashboard presentation
	DashboardTitle string
	ProfileURL     string
	TimeZone       string
	Location       *time.Location

	// Schedule configuration
	RefreshSchedule string // cron expression with seconds
	ReportSchedule  string // "daily" or "weekly"

	// Feed sources
	Keywords      []string
	SeedMentions  bool
	LoadSnapshot  bool
	VKAccessToken string
	VKAPIVersion  string
	VKRateLimit   float64

	// Storage configuration
	StorageBackend    string // "none", "file", "azure" or "redis"
	SnapshotRetention int    // snapshots kept after each refresh, 0 keeps all
	StorageDir        string
	StorageAccount    string
	StorageContainer  string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int

	// Statistics
	StatsMode string // "static" or "derived"

	// Notification configuration
	TeamsWebhookURL   string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string

	// Alerting
	AlertEngagementThreshold int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		DashboardTitle: getEnv("DASHBOARD_TITLE", "Мониторинг упоминаний"),
		ProfileURL:     getEnv("PROFILE_URL", "https://vk.com/kprfkomi"),
		TimeZone:       getEnv("TIMEZONE", "Europe/Moscow"),

		RefreshSchedule: getEnv("REFRESH_SCHEDULE", "0 */15 * * * *"),
		ReportSchedule:  getEnv("REPORT_SCHEDULE", "weekly"),

		Keywords:      getSliceEnv("KEYWORDS", []string{"КПРФ Коми", "kprfkomi"}),
		SeedMentions:  getBoolEnv("SEED_MENTIONS", true),
		LoadSnapshot:  getBoolEnv("LOAD_SNAPSHOT", false),
		VKAccessToken: getEnv("VK_ACCESS_TOKEN", ""),
		VKAPIVersion:  getEnv("VK_API_VERSION", "5.199"),
		VKRateLimit:   getFloatEnv("VK_RATE_LIMIT", 3),

		StorageBackend:    strings.ToLower(getEnv("STORAGE_BACKEND", "none")),
		SnapshotRetention: getIntEnv("SNAPSHOT_RETENTION", 96),
		StorageDir:        getEnv("STORAGE_DIR", "data"),
		StorageAccount:    getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer:  getEnv("AZURE_STORAGE_CONTAINER", "mentions"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getIntEnv("REDIS_DB", 0),

		StatsMode: strings.ToLower(getEnv("STATS_MODE", "static")),

		TeamsWebhookURL:   getEnv("TEAMS_WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),

		AlertEngagementThreshold: getIntEnv("ALERT_ENGAGEMENT_THRESHOLD", 1000),
	}

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.ReportSchedule != "daily" && c.ReportSchedule != "weekly" {
		return fmt.Errorf("REPORT_SCHEDULE must be 'daily' or 'weekly'")
	}

	if c.StatsMode != "static" && c.StatsMode != "derived" {
		return fmt.Errorf("STATS_MODE must be 'static' or 'derived'")
	}

	switch c.StorageBackend {
	case "none", "file", "redis":
	case "azure":
		if c.StorageAccount == "" {
			return fmt.Errorf("AZURE_STORAGE_ACCOUNT is required for the azure storage backend")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of none, file, azure, redis")
	}

	if c.SnapshotRetention < 0 {
		return fmt.Errorf("SNAPSHOT_RETENTION must not be negative")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	if c.VKRateLimit <= 0 {
		return fmt.Errorf("VK_RATE_LIMIT must be positive")
	}

	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.TimeZone, err)
	}
	c.Location = loc

	return nil
}

// NotificationsEnabled reports whether any digest channel is configured
func (c *Config) NotificationsEnabled() bool {
	return c.TeamsWebhookURL != "" || c.NotificationEmail != ""
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var out []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return defaultValue
}
