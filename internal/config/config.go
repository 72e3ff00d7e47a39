package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Gallery
	RepostCooldown  time.Duration // cooldown window between reposts of one asset
	GalleryPageSize int
	MaxUploadBytes  int64

	// Reddit
	RedditAPIURL      string
	RedditAccessToken string
	RedditUserAgent   string

	// Security
	APIKeyHash string // bcrypt hash of the dashboard API key
	JWTSecret  string
	JWTExpiry  time.Duration

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, DigitalOcean Spaces, etc.)
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string        // Optional: for S3-compatible services
	S3PresignExpiry time.Duration // Expiry for presigned media URLs
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "PostPilot"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:  envString("APP_URL", "http://localhost:8090"),
		Port:    envString("PORT", "8090"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/postpilot.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Gallery
		RepostCooldown:  envDuration("REPOST_COOLDOWN_HOURS", 72*time.Hour),
		GalleryPageSize: envInt("GALLERY_PAGE_SIZE", 50),
		MaxUploadBytes:  int64(envInt("MAX_UPLOAD_BYTES", 50<<20)),

		// Reddit
		RedditAPIURL:      envString("REDDIT_API_URL", "https://oauth.reddit.com"),
		RedditAccessToken: envString("REDDIT_ACCESS_TOKEN", ""),
		RedditUserAgent:   envString("REDDIT_USER_AGENT", "postpilot/1.0"),

		// Security
		APIKeyHash: envRequired("API_KEY_HASH"),
		JWTSecret:  envRequired("JWT_SECRET"),
		JWTExpiry:  envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage (S3-compatible - required for media uploads)
		S3Region:        envRequired("S3_REGION"),
		S3Bucket:        envRequired("S3_BUCKET"),
		S3AccessKey:     envRequired("S3_ACCESS_KEY"),
		S3SecretKey:     envRequired("S3_SECRET_KEY"),
		S3Endpoint:      envString("S3_ENDPOINT", ""), // Optional: for non-AWS providers
		S3PresignExpiry: envDuration("S3_PRESIGN_EXPIRY", time.Hour),
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures all required services are configured for
// production deployments. Development allows the Reddit client to run in log
// mode without a token for easier local testing.
func validateProduction(cfg *Config) {
	if cfg.RedditAccessToken == "" {
		slog.Error("production deployment requires REDDIT_ACCESS_TOKEN",
			"hint", "set APP_ENV=development for local testing with repost log mode")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	// plain numbers are hours, e.g. REPOST_COOLDOWN_HOURS=72
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Hour
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
