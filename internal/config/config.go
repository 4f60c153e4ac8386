package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the whole application configuration,
// populated from environment variables.
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	ISBNService ISBNServiceConfig
	OpenLibrary OpenLibraryConfig
	MinIO       MinIOConfig
	Import      ImportConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry int // minutes
}

// ISBNServiceConfig points at the external SOAP ISBN validation service.
type ISBNServiceConfig struct {
	URL     string
	Timeout time.Duration
}

// OpenLibraryConfig points at the cover lookup service.
type OpenLibraryConfig struct {
	BaseURL           string
	UserAgent         string
	RequestsPerSecond int
	Timeout           time.Duration
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ImportConfig tunes the bulk ingestion pipeline.
type ImportConfig struct {
	// Workers bounds the number of rows processed concurrently.
	Workers int
}

// Load reads config from environment variables.
func Load() (*Config, error) {
	isbnTimeout, err := time.ParseDuration(getEnv("ISBN_SERVICE_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ISBN_SERVICE_TIMEOUT: %w", err)
	}

	coverTimeout, err := time.ParseDuration(getEnv("OPENLIBRARY_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid OPENLIBRARY_TIMEOUT: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Library Catalog API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "library"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenExpiry: getEnvInt("JWT_ACCESS_EXPIRY", 60), // minutes
		},
		ISBNService: ISBNServiceConfig{
			URL:     getEnv("ISBN_SERVICE_URL", "https://webservices.daehosting.com/services/isbnservice.wso"),
			Timeout: isbnTimeout,
		},
		OpenLibrary: OpenLibraryConfig{
			BaseURL:           getEnv("OPENLIBRARY_BASE_URL", "https://openlibrary.org"),
			UserAgent:         getEnv("OPENLIBRARY_USER_AGENT", "library-backend/1.0"),
			RequestsPerSecond: getEnvInt("OPENLIBRARY_RPS", 3),
			Timeout:           coverTimeout,
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "library"),
			UseSSL:    false,
		},
		Import: ImportConfig{
			Workers: getEnvInt("IMPORT_WORKERS", 4),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
	}

	if c.Import.Workers < 1 {
		return fmt.Errorf("IMPORT_WORKERS must be at least 1")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
