package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DevFallbackQRSecret is the built-in signing secret used when
// QR_SIGNING_SECRET is not configured. Tokens signed with it are forgeable by
// anyone reading this source; main refuses to start with it in production.
const DevFallbackQRSecret = "socio-dev-qr-secret-do-not-use"

// Config holds application configuration loaded from environment.
type Config struct {
	Environment string // "development" or "production"
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	QR          QRConfig
	Email       EmailConfig
	RateLimit   RateLimitConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds settings for validating tokens issued by the external
// auth provider (shared HMAC secret).
type JWTConfig struct {
	Secret string
}

// QRConfig holds QR token signing settings.
type QRConfig struct {
	Secret         string // empty means the dev fallback is in effect
	UsingFallback  bool
	ValidityPeriod time.Duration
}

// EmailConfig holds SMTP settings for confirmation emails.
type EmailConfig struct {
	FromAddress string
	FromName    string
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
}

// RateLimitConfig holds token-bucket settings for the public scan endpoint.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// IsProduction reports whether the app runs in a production-like environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "30"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	qrValidityHours := getEnvInt("QR_VALIDITY_HOURS", 24)

	qrSecret := os.Getenv("QR_SIGNING_SECRET")
	usingFallback := qrSecret == ""
	if usingFallback {
		qrSecret = DevFallbackQRSecret
	}

	cfg := &Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "socio"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "change-me-in-production"),
		},
		QR: QRConfig{
			Secret:         qrSecret,
			UsingFallback:  usingFallback,
			ValidityPeriod: time.Duration(qrValidityHours) * time.Hour,
		},
		Email: EmailConfig{
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", "noreply@socio.events"),
			FromName:    getEnv("EMAIL_FROM_NAME", "SOCIO Events"),
			SMTPHost:    getEnv("SMTP_HOST", ""),
			SMTPPort:    getEnvInt("SMTP_PORT", 587),
			SMTPUser:    getEnv("SMTP_USER", ""),
			SMTPPass:    getEnv("SMTP_PASS", ""),
		},
		RateLimit: RateLimitConfig{
			Enabled:        getEnv("RATELIMIT_ENABLED", "true") == "true",
			Capacity:       getEnvInt("RATELIMIT_CAPACITY", 30),
			RefillTokens:   getEnvInt("RATELIMIT_REFILL_TOKENS", 10),
			RefillInterval: time.Duration(getEnvInt("RATELIMIT_REFILL_INTERVAL_SEC", 1)) * time.Second,
			TTL:            time.Duration(getEnvInt("RATELIMIT_TTL_SEC", 120)) * time.Second,
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
