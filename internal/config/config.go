package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string

	DatabaseDriver string
	DatabaseURL    string

	RedisURL     string
	PostCacheTTL time.Duration

	StorageDriver  string
	UploadsDir     string
	PublicMediaURL string
	MaxImageSize   int64
	MaxVideoSize   int64

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	CORSOrigins string

	ResendAPIKey string
	FromEmail    string
	AlertEmail   string
}

// UploadsConfig names the three areas of the media store. The directories
// are keys relative to Root.
type UploadsConfig struct {
	Root      string
	ImagesDir string
	VideosDir string
	TmpDir    string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "5001"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DatabaseDriver: getEnv("DATABASE_DRIVER", "postgres"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),

		RedisURL:     getEnv("REDIS_URL", ""),
		PostCacheTTL: getDurationEnv("POST_CACHE_TTL", 10*time.Minute),

		StorageDriver:  getEnv("STORAGE_DRIVER", "local"),
		UploadsDir:     getEnv("UPLOADS_DIR", "uploads"),
		PublicMediaURL: getEnv("PUBLIC_MEDIA_URL", "http://localhost:5001/media"),
		MaxImageSize:   getInt64Env("MAX_IMAGE_SIZE", 20<<20),
		MaxVideoSize:   getInt64Env("MAX_VIDEO_SIZE", 500<<20),

		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinIOBucket:    getEnv("MINIO_BUCKET", "memoria-media"),
		MinIOUseSSL:    getBoolEnv("MINIO_USE_SSL", false),

		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@example.com"),
		AlertEmail:   getEnv("ALERT_EMAIL", ""),
	}
}

func (c *Config) Uploads() UploadsConfig {
	return NewUploadsConfig(c.UploadsDir)
}

func NewUploadsConfig(root string) UploadsConfig {
	return UploadsConfig{
		Root:      filepath.Clean(root),
		ImagesDir: "images",
		VideosDir: "videos",
		TmpDir:    "tmp",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
