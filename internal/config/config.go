package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	Log     LogConfig
	Redis   RedisConfig
	Storage StorageConfig
	Upload  UploadConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Pretty bool
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// StorageConfig holds object storage (S3-compatible) configuration
type StorageConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	Bucket          string
	// PublicBaseURL is the URL prefix under which uploaded objects are served
	PublicBaseURL string
}

// UploadConfig constrains what may be staged for upload
type UploadConfig struct {
	// MaxFileBytes caps a single staged file; 0 means unlimited
	MaxFileBytes int64
	// AcceptedImageTypes are the MIME types allowed for staged image files
	AcceptedImageTypes []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Pretty: getEnvAsBoolOrDefault("LOG_PRETTY", false),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			AccessKeyID:     os.Getenv("STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("STORAGE_SECRET_ACCESS_KEY"),
			Endpoint:        os.Getenv("STORAGE_ENDPOINT"),
			Bucket:          getEnvOrDefault("STORAGE_BUCKET", "draftpipe-media"),
			PublicBaseURL:   os.Getenv("STORAGE_PUBLIC_BASE_URL"),
		},
		Upload: UploadConfig{
			MaxFileBytes:       getEnvAsInt64OrDefault("UPLOAD_MAX_FILE_BYTES", 25<<20),
			AcceptedImageTypes: getEnvAsListOrDefault("UPLOAD_ACCEPTED_IMAGE_TYPES", defaultImageTypes()),
		},
	}

	// Storage credentials travel together
	if cfg.Storage.AccessKeyID != "" && cfg.Storage.SecretAccessKey == "" {
		return nil, fmt.Errorf("STORAGE_SECRET_ACCESS_KEY is required when STORAGE_ACCESS_KEY_ID is set")
	}

	return cfg, nil
}

func defaultImageTypes() []string {
	return []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsListOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
