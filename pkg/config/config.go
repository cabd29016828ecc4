package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	DatabaseURL        string
	JWTSecret          string
	JWTAccessExpiry    time.Duration
	JWTRefreshExpiry   time.Duration
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	TokenEncryptionKey string
	CronSecret         string
	SyncInterval       time.Duration
	SyncBatchLimit     int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	accessExpiry := 15 * time.Minute
	if exp := os.Getenv("JWT_ACCESS_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			accessExpiry = parsed
		}
	}

	refreshExpiry := 720 * time.Hour // 30 days
	if exp := os.Getenv("JWT_REFRESH_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			refreshExpiry = parsed
		}
	}

	// 0 disables the in-process scheduler; the cron endpoint still works.
	syncInterval := time.Duration(0)
	if iv := os.Getenv("SYNC_INTERVAL"); iv != "" {
		if parsed, err := time.ParseDuration(iv); err == nil {
			syncInterval = parsed
		}
	}

	batchLimit := 50
	if bl := os.Getenv("SYNC_BATCH_LIMIT"); bl != "" {
		if parsed, err := strconv.Atoi(bl); err == nil && parsed > 0 {
			batchLimit = parsed
		}
	}

	return &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiry:    accessExpiry,
		JWTRefreshExpiry:   refreshExpiry,
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:8080/api/auth/google/callback"),
		TokenEncryptionKey: getEnv("TOKEN_ENCRYPTION_KEY", ""),
		CronSecret:         getEnv("CRON_SECRET", ""),
		SyncInterval:       syncInterval,
		SyncBatchLimit:     batchLimit,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
