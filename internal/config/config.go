package config

import (
	"os"
	"strconv"
	"time"
)

// AppSettings holds process-level settings.
type AppSettings struct {
	Host          string
	Port          string
	Timezone      string
	LogLevel      string
	PublicBaseURL string
}

// DatabaseConfig holds PostgreSQL connection settings. An empty Host disables the database
// and settings are kept in memory.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for document payloads. An empty Endpoint
// selects the in-memory backend.
type MinIOConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	UseSSL     bool
	LinkExpiry time.Duration // lifetime of presigned download links
}

// SummaryConfig configures the external document summarization service.
type SummaryConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	// RequestsPerMinute bounds outbound calls. Zero means unlimited.
	RequestsPerMinute int
}

// NotificationConfig configures reminder delivery.
type NotificationConfig struct {
	PromptTimeout time.Duration
}

// AuthConfig configures session and share tokens.
type AuthConfig struct {
	SessionSecret string
	SessionTTL    time.Duration
	ShareTTL      time.Duration
}

// OtelConfig configures trace export.
type OtelConfig struct {
	ServiceName string
	Endpoint    string
	Insecure    bool
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	App           AppSettings
	Database      DatabaseConfig
	MinIO         MinIOConfig
	Summary       SummaryConfig
	Notifications NotificationConfig
	Auth          AuthConfig
	Otel          OtelConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	port := getEnv("PORT", "8080")
	return &AppConfig{
		App: AppSettings{
			Host:          getEnv("APP_HOST", "localhost:"+port),
			Port:          port,
			Timezone:      getEnv("APP_TIMEZONE", "UTC"),
			LogLevel:      getEnv("LOG_LEVEL", "info"),
			PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:"+port),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:   getEnv("MINIO_ENDPOINT", ""),
			AccessKey:  getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:  getEnv("MINIO_SECRET_KEY", ""),
			Bucket:     getEnv("MINIO_BUCKET", "healthdash"),
			UseSSL:     getEnvBool("MINIO_USE_SSL", false),
			LinkExpiry: getEnvDuration("DOCUMENT_LINK_TTL", 15*time.Minute),
		},
		Summary: SummaryConfig{
			APIKey:            getEnv("SUMMARY_API_KEY", ""),
			BaseURL:           getEnv("SUMMARY_BASE_URL", "https://generativelanguage.googleapis.com"),
			Model:             getEnv("SUMMARY_MODEL", "gemini-2.5-flash"),
			Timeout:           getEnvDuration("SUMMARY_TIMEOUT", 60*time.Second),
			RequestsPerMinute: getEnvInt("SUMMARY_RPM", 0),
		},
		Notifications: NotificationConfig{
			PromptTimeout: getEnvDuration("NOTIFY_PROMPT_TIMEOUT", 30*time.Second),
		},
		Auth: AuthConfig{
			SessionSecret: getEnv("SESSION_SECRET", ""),
			SessionTTL:    time.Duration(getEnvInt("SESSION_TTL_HOURS", 24*7)) * time.Hour,
			ShareTTL:      time.Duration(getEnvInt("SHARE_TTL_HOURS", 72)) * time.Hour,
		},
		Otel: OtelConfig{
			ServiceName: getEnv("OTEL_SERVICE_NAME", "healthdash"),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Insecure:    getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		},
	}
}

// Location resolves the configured timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvDuration accepts Go duration strings ("90s") or a bare number of seconds.
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if s, err := strconv.Atoi(v); err == nil {
		return time.Duration(s) * time.Second
	}
	return def
}
