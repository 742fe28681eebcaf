package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Credential store backends
const (
	StoreKeyring = "keyring"
	StoreSQLite  = "sqlite"
	StoreMemory  = "memory"
)

// DefaultHTTPTimeout applies when MEMBERCTL_HTTP_TIMEOUT is unset
const DefaultHTTPTimeout = 30 * time.Second

// Config holds all runtime configuration for the CLI
type Config struct {
	// Logging Configuration
	Logging LoggingConfig

	// HTTP Configuration
	HTTP HTTPConfig

	// Credential Configuration
	Credentials CredentialsConfig
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `validate:"required"`
	Format string `validate:"oneof=json console"`
}

// HTTPConfig holds outbound HTTP client settings
type HTTPConfig struct {
	Timeout     time.Duration `validate:"gt=0"`
	InsecureTLS bool
}

// CredentialsConfig selects where the bearer token is persisted
type CredentialsConfig struct {
	Store        string `validate:"oneof=keyring sqlite memory"`
	DatabasePath string `validate:"required_if=Store sqlite"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	timeout := DefaultHTTPTimeout
	if raw := os.Getenv("MEMBERCTL_HTTP_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid MEMBERCTL_HTTP_TIMEOUT %q: %w", raw, err)
		}
		timeout = d
	}

	insecure := false
	if raw := os.Getenv("MEMBERCTL_INSECURE_TLS"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid MEMBERCTL_INSECURE_TLS %q: %w", raw, err)
		}
		insecure = v
	}

	dbPath := os.Getenv("MEMBERCTL_CREDENTIAL_DB")
	if dbPath == "" {
		dbPath = defaultDatabasePath()
	}

	cfg := &Config{
		Logging: LoggingConfig{
			Level:  getenv("MEMBERCTL_LOG_LEVEL", "error"),
			Format: getenv("MEMBERCTL_LOG_FORMAT", "console"),
		},
		HTTP: HTTPConfig{
			Timeout:     timeout,
			InsecureTLS: insecure,
		},
		Credentials: CredentialsConfig{
			Store:        getenv("MEMBERCTL_CREDENTIAL_STORE", StoreKeyring),
			DatabasePath: dbPath,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultDatabasePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "memberctl-credentials.sqlite"
	}
	return filepath.Join(homeDir, ".config", "memberctl", "credentials.sqlite")
}
