package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Storage  StorageConfig
	Platform PlatformConfig
	Payroll  PayrollConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

type StorageConfig struct {
	Type     string
	BasePath string
	BaseURL  string
}

// PlatformConfig holds the marketplace operator's own bank account, used as the
// commission recipient in generated bank instructions.
type PlatformConfig struct {
	BankName    string
	BankBSB     string
	BankAccount string
}

type PayrollConfig struct {
	ArtifactTimeout time.Duration
	OverdueAfter    time.Duration
}

func Load() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "ozziework-contracts"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Storage configuration
	config.Storage = StorageConfig{
		Type:     getEnv("STORAGE_TYPE", "local"),
		BasePath: getEnv("STORAGE_BASE_PATH", "./uploads"),
		BaseURL:  getEnv("STORAGE_BASE_URL", "http://localhost:8080/uploads"),
	}

	// Platform bank account configuration
	config.Platform = PlatformConfig{
		BankName:    getEnv("PLATFORM_BANK_NAME", "OzzieWork Pty Ltd"),
		BankBSB:     getEnv("PLATFORM_BANK_BSB", ""),
		BankAccount: getEnv("PLATFORM_BANK_ACCOUNT", ""),
	}

	// Payroll configuration
	artifactTimeout, err := time.ParseDuration(getEnv("ARTIFACT_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ARTIFACT_TIMEOUT: %w", err)
	}
	overdueAfter, err := time.ParseDuration(getEnv("PAYSLIP_OVERDUE_AFTER", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYSLIP_OVERDUE_AFTER: %w", err)
	}
	config.Payroll = PayrollConfig{
		ArtifactTimeout: artifactTimeout,
		OverdueAfter:    overdueAfter,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Platform.BankBSB == "" {
		return fmt.Errorf("PLATFORM_BANK_BSB is required")
	}
	if c.Platform.BankAccount == "" {
		return fmt.Errorf("PLATFORM_BANK_ACCOUNT is required")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
