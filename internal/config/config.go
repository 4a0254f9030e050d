package config

import (
	"os"
	"strconv"
	"time"

	"github.com/robertofernandezmartinez/ai-corporate-suite/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig `validate:"required"`
	Server   ServerConfig   `validate:"required"`
	Models   ModelConfig    `validate:"required"`
	Pipeline PipelineConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string `validate:"required"`
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `validate:"required"`
	OpsPort string
	GinMode string
}

// ModelConfig holds scoring artifact settings
type ModelConfig struct {
	ArtifactDir string `validate:"required"`
}

// PipelineConfig holds batch processing settings
type PipelineConfig struct {
	BatchRetries  int
	RetryBackoff  time.Duration
	MaxConcurrent int
	MaxRecords    int
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

	modelConfig, err := loadModelConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load model configuration")
	}
	config.Models = *modelConfig

	config.Pipeline = *loadPipelineConfig()

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
		URL:     url,
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		OpsPort: getEnvOrDefault("OPS_PORT", "8081"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadModelConfig() (*ModelConfig, error) {
	dir := getEnvOrDefault("MODEL_DIR", "./models")
	if dir == "" {
		return nil, errors.ConfigInvalid("MODEL_DIR is required")
	}
	return &ModelConfig{ArtifactDir: dir}, nil
}

func loadPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		BatchRetries:  getEnvIntOrDefault("BATCH_RETRIES", 3),
		RetryBackoff:  getEnvDurationOrDefault("RETRY_BACKOFF", 250*time.Millisecond),
		MaxConcurrent: getEnvIntOrDefault("MAX_CONCURRENT_UPLOADS", 4),
		MaxRecords:    getEnvIntOrDefault("MAX_UPLOAD_RECORDS", 500000),
	}
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("database URL is required")
	}
	if config.Models.ArtifactDir == "" {
		return errors.ConfigInvalid("model artifact directory is required")
	}
	if config.Pipeline.BatchRetries < 0 {
		return errors.ConfigInvalid("batch retries must not be negative")
	}
	if config.Pipeline.MaxConcurrent < 1 {
		return errors.ConfigInvalid("max concurrent uploads must be at least 1")
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
