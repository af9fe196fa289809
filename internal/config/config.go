package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"utitriage/internal/errors"
)

// Artifact source kinds
const (
	SourceFilesystem = "fs"
	SourcePostgres   = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	Artifacts ArtifactConfig
	Database  DatabaseConfig
	Server    ServerConfig
	Log       LogConfig
}

// ArtifactConfig says where the model bundle comes from
type ArtifactConfig struct {
	Source  string
	Dir     string
	Version string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port                     string
	APIPort                  string
	GinMode                  string
	MaxConcurrentAssessments int
	RequestTimeout           time.Duration
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Artifacts: *loadArtifactConfig(),
		Database:  *loadDatabaseConfig(),
		Server:    *loadServerConfig(),
		Log:       LogConfig{Level: getEnvOrDefault("LOG_LEVEL", "INFO")},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadArtifactConfig() *ArtifactConfig {
	return &ArtifactConfig{
		Source:  strings.ToLower(getEnvOrDefault("ARTIFACT_SOURCE", SourceFilesystem)),
		Dir:     getEnvOrDefault("ARTIFACTS_DIR", "./artifacts"),
		Version: getEnvOrDefault("ARTIFACT_VERSION", "latest"),
	}
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL:     os.Getenv("DATABASE_URL"),
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:                     getEnvOrDefault("PORT", "8080"),
		APIPort:                  getEnvOrDefault("API_PORT", "8081"),
		GinMode:                  getEnvOrDefault("GIN_MODE", "release"),
		MaxConcurrentAssessments: getEnvIntOrDefault("MAX_CONCURRENT_ASSESSMENTS", 16),
		RequestTimeout:           getEnvDurationOrDefault("REQUEST_TIMEOUT", 10*time.Second),
	}
}

func validateConfig(config *Config) error {
	switch config.Artifacts.Source {
	case SourceFilesystem:
		if config.Artifacts.Dir == "" {
			return errors.ConfigInvalid("ARTIFACTS_DIR is required for the fs artifact source")
		}
	case SourcePostgres:
		if config.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required for the postgres artifact source")
		}
	default:
		return errors.ConfigInvalid("ARTIFACT_SOURCE must be fs or postgres, got " + strconv.Quote(config.Artifacts.Source))
	}
	if config.Server.MaxConcurrentAssessments < 1 {
		return errors.ConfigInvalid("MAX_CONCURRENT_ASSESSMENTS must be at least 1")
	}
	if config.Server.RequestTimeout <= 0 {
		return errors.ConfigInvalid("REQUEST_TIMEOUT must be positive")
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
