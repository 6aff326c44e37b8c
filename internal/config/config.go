package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"agrodesk/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Storage   StorageConfig
	Logging   LoggingConfig
	Stats     StatsConfig
	Dashboard DashboardConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port           string
	RequestTimeout time.Duration
	MetricsEnabled bool
}

// StorageConfig holds the S3-compatible object storage settings used for
// document uploads
type StorageConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
	PublicBaseURL   string
	URLExpiry       time.Duration
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string
	Format string
}

// StatsConfig holds statistics settings
type StatsConfig struct {
	Alpha float64
}

// DashboardConfig holds dashboard defaults
type DashboardConfig struct {
	DefaultDays int
	TopN        int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load database configuration")
	}
	config.Database = *dbConfig

	config.Server = *loadServerConfig()
	config.Storage = *loadStorageConfig()
	config.Logging = *loadLoggingConfig()
	config.Stats = *loadStatsConfig()
	config.Dashboard = *loadDashboardConfig()

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() (*DatabaseConfig, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	return &DatabaseConfig{
		URL:             url,
		MaxOpenConns:    getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvDurationOrDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute),
	}, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:           getEnvOrDefault("PORT", "8080"),
		RequestTimeout: getEnvDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		MetricsEnabled: getEnvBoolOrDefault("METRICS_ENABLED", true),
	}
}

func loadStorageConfig() *StorageConfig {
	return &StorageConfig{
		Bucket:          getEnvOrDefault("STORAGE_S3_BUCKET", "document-uploads"),
		Region:          getEnvOrDefault("STORAGE_S3_REGION", "us-east-1"),
		Endpoint:        getEnvOrDefault("STORAGE_S3_ENDPOINT", ""),
		AccessKeyID:     getEnvOrDefault("STORAGE_S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnvOrDefault("STORAGE_S3_SECRET_ACCESS_KEY", ""),
		PathStyle:       getEnvBoolOrDefault("STORAGE_S3_PATH_STYLE", false),
		PublicBaseURL:   strings.TrimRight(getEnvOrDefault("STORAGE_PUBLIC_BASE_URL", ""), "/"),
		URLExpiry:       getEnvDurationOrDefault("STORAGE_URL_EXPIRY", 15*time.Minute),
	}
}

func loadLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "INFO"),
		Format: getEnvOrDefault("LOG_FORMAT", "json"),
	}
}

func loadStatsConfig() *StatsConfig {
	return &StatsConfig{
		Alpha: getEnvFloatOrDefault("STATS_ALPHA", 0.05),
	}
}

func loadDashboardConfig() *DashboardConfig {
	return &DashboardConfig{
		DefaultDays: getEnvIntOrDefault("DASHBOARD_DEFAULT_DAYS", 30),
		TopN:        getEnvIntOrDefault("DASHBOARD_TOP_N", 5),
	}
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("database URL is required")
	}
	if config.Storage.Bucket == "" {
		return errors.ConfigInvalid("storage bucket is required")
	}
	if config.Stats.Alpha <= 0 || config.Stats.Alpha >= 1 {
		return errors.ConfigInvalid("STATS_ALPHA must be in (0, 1)")
	}
	if config.Dashboard.TopN <= 0 {
		return errors.ConfigInvalid("DASHBOARD_TOP_N must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
