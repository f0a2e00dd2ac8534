package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// APIConfig holds settings for reaching the CRM backend.
type APIConfig struct {
	BaseURL    string
	UploadsURL string
	TimeoutSec int
}

// Timeout returns the per-request HTTP timeout.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string
	Format string
}

// MinIOConfig holds object storage settings for uploading documents straight from a bucket.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether enough settings are present to build a client.
func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != ""
}

// AppConfig is the centralized configuration struct for the client.
// It is populated from environment variables.
type AppConfig struct {
	API   APIConfig
	Log   LogConfig
	MinIO MinIOConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load() *AppConfig {
	base := strings.TrimRight(getEnv("TRACKFLOW_API_URL", "http://localhost:8000/api"), "/")
	return &AppConfig{
		API: APIConfig{
			BaseURL:    base,
			UploadsURL: strings.TrimRight(getEnv("TRACKFLOW_UPLOADS_URL", DefaultUploadsURL(base)), "/"),
			TimeoutSec: getEnvInt("TRACKFLOW_TIMEOUT_SEC", 30),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}
}

// DefaultUploadsURL derives the static uploads location from the API base URL.
// Uploads are served next to the API, not under it: https://host/api -> https://host/uploads.
func DefaultUploadsURL(apiBase string) string {
	return strings.TrimSuffix(strings.TrimRight(apiBase, "/"), "/api") + "/uploads"
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
