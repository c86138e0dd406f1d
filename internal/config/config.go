package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Credential policies for the auth service.
const (
	CredentialPassword = "password"
	CredentialIdentity = "identity"
)

// Admin authorization policies.
const (
	AdminPolicyFlag   = "flag"
	AdminPolicySecret = "secret"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	App      AppConfig
	Auth     AuthConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver   string // "sqlite" or "postgres"
	Path     string // sqlite file path
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	DefaultPoints int
	SessionTTL    time.Duration
}

// AuthConfig selects the credential and admin-authorization policies.
// Exactly one credential policy is active per deployment.
type AuthConfig struct {
	CredentialPolicy string // "password" or "identity"
	AdminPolicy      string // "flag" or "secret"
	AdminKey         string // shared secret, required when AdminPolicy is "secret"
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	defaultPoints, err := strconv.Atoi(getEnv("DEFAULT_POINTS", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_POINTS: %w", err)
	}

	ttlHours, err := strconv.Atoi(getEnv("SESSION_TTL_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL_HOURS: %w", err)
	}

	config := &Config{
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "sqlite"),
			Path:     getEnv("DB_PATH", "market.db"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "points_market"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		App: AppConfig{
			DefaultPoints: defaultPoints,
			SessionTTL:    time.Duration(ttlHours) * time.Hour,
		},
		Auth: AuthConfig{
			CredentialPolicy: getEnv("CREDENTIAL_POLICY", CredentialPassword),
			AdminPolicy:      getEnv("ADMIN_POLICY", AdminPolicyFlag),
			AdminKey:         getEnv("ADMIN_KEY", ""),
		},
	}

	switch config.Database.Driver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", config.Database.Driver)
	}

	switch config.Auth.CredentialPolicy {
	case CredentialPassword, CredentialIdentity:
	default:
		return nil, fmt.Errorf("unsupported CREDENTIAL_POLICY %q", config.Auth.CredentialPolicy)
	}

	switch config.Auth.AdminPolicy {
	case AdminPolicyFlag:
	case AdminPolicySecret:
		if config.Auth.AdminKey == "" {
			return nil, fmt.Errorf("ADMIN_KEY is required when ADMIN_POLICY=secret")
		}
	default:
		return nil, fmt.Errorf("unsupported ADMIN_POLICY %q", config.Auth.AdminPolicy)
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
