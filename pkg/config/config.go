package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Admin     AdminConfig
	Cron      CronConfig
	SendGrid  SendGridConfig
	Geo       GeoConfig
	Site      SiteConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	Environment  string
	ServiceName  string
	ReadTimeout  int
	WriteTimeout int
	CORSOrigins  string // Comma-separated list of allowed origins
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// AdminConfig holds the admin dashboard credential and session settings.
// PasswordHash is the hex-encoded SHA-256 of the admin password; the
// service never stores the plaintext.
type AdminConfig struct {
	PasswordHash    string
	JWTSecret       string
	SessionTTLHours int
}

// CronConfig holds the shared secret for scheduled-job endpoints
type CronConfig struct {
	Secret string
}

// SendGridConfig holds outbound email settings
type SendGridConfig struct {
	APIKey        string
	BaseURL       string
	FromEmail     string
	FromName      string
	ReplyToEmail  string
	ReplyToName   string
	DigestToEmail string
	DigestToName  string
}

// GeoConfig holds IP geolocation oracle settings
type GeoConfig struct {
	BaseURL        string
	TimeoutSeconds int
	CacheTTLHours  int
}

// SiteConfig identifies the listing this deployment serves
type SiteConfig struct {
	SiteID     string
	FormID     string
	ListingURL string
	AdminURL   string
}

// RateLimitConfig holds request rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool
	WindowSeconds  int
	DefaultLimit   int
	DefaultBurst   int
	AnonymousLimit int
	AnonymousBurst int
	RedisPrefix    string

	// EndpointOverrides maps endpoint paths to per-endpoint limits.
	EndpointOverrides map[string]EndpointRateLimitConfig
}

// EndpointRateLimitConfig overrides the default limits for a single endpoint.
// A zero limit falls back to the default; burst is taken as-is when the
// override exists.
type EndpointRateLimitConfig struct {
	AuthenticatedLimit int
	AuthenticatedBurst int
	AnonymousLimit     int
	AnonymousBurst     int
	WindowSeconds      int
}

// Window returns the rate limit window as a duration, defaulting to a minute
func (c RateLimitConfig) Window() time.Duration {
	if c.WindowSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.WindowSeconds) * time.Second
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ServiceName:  serviceName,
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 30),
			CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "sprinterleads"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 2),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Admin: AdminConfig{
			PasswordHash:    getEnv("ADMIN_PASSWORD_HASH", ""),
			JWTSecret:       getEnv("ADMIN_JWT_SECRET", "change-me-in-production"),
			SessionTTLHours: getEnvAsInt("ADMIN_SESSION_TTL_HOURS", 168),
		},
		Cron: CronConfig{
			Secret: getEnv("CRON_SECRET", ""),
		},
		SendGrid: SendGridConfig{
			APIKey:        getEnv("SENDGRID_API_KEY", ""),
			BaseURL:       getEnv("SENDGRID_BASE_URL", "https://api.sendgrid.com"),
			FromEmail:     getEnv("MAIL_FROM_EMAIL", "dustin@dustinwells.com"),
			FromName:      getEnv("MAIL_FROM_NAME", "Dustin Wells"),
			ReplyToEmail:  getEnv("MAIL_REPLY_TO_EMAIL", "dustin+sprinter@dustinwells.com"),
			ReplyToName:   getEnv("MAIL_REPLY_TO_NAME", "Dustin Wells"),
			DigestToEmail: getEnv("DIGEST_TO_EMAIL", "dustin+sprinter@dustinwells.com"),
			DigestToName:  getEnv("DIGEST_TO_NAME", "Dustin Wells"),
		},
		Geo: GeoConfig{
			BaseURL:        getEnv("GEO_API_URL", "http://ip-api.com"),
			TimeoutSeconds: getEnvAsInt("GEO_TIMEOUT_SECONDS", 3),
			CacheTTLHours:  getEnvAsInt("GEO_CACHE_TTL_HOURS", 24),
		},
		Site: SiteConfig{
			SiteID:     getEnv("SITE_ID", "sprinter-van"),
			FormID:     getEnv("FORM_ID", "sprinter-van-contact"),
			ListingURL: getEnv("LISTING_URL", "https://sprinter.dustinwells.com"),
			AdminURL:   getEnv("ADMIN_URL", "https://sprinter.dustinwells.com/admin"),
		},
		RateLimit: RateLimitConfig{
			Enabled:        getEnvAsBool("RATE_LIMIT_ENABLED", true),
			WindowSeconds:  getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
			DefaultLimit:   getEnvAsInt("RATE_LIMIT_DEFAULT_LIMIT", 100),
			DefaultBurst:   getEnvAsInt("RATE_LIMIT_DEFAULT_BURST", 10),
			AnonymousLimit: getEnvAsInt("RATE_LIMIT_ANONYMOUS_LIMIT", 30),
			AnonymousBurst: getEnvAsInt("RATE_LIMIT_ANONYMOUS_BURST", 5),
			RedisPrefix:    getEnv("RATE_LIMIT_REDIS_PREFIX", "rl"),
		},
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL returns the database connection string in URL form (for migrations)
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// GeoTimeout returns the geo lookup timeout as a duration
func (c *GeoConfig) GeoTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
