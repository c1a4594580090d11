package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yigit/collegeerp/internal/pkg/helpers"
)

// Store backends
const (
	BackendMemory   = "memory"
	BackendCSV      = "csv"
	BackendPostgres = "postgres"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
	} `yaml:"server"`

	Store struct {
		Backend     string `yaml:"backend" env:"STORE_BACKEND"`
		DataDir     string `yaml:"data_dir" env:"STORE_DATA_DIR"`
		LockTimeout string `yaml:"lock_timeout" env:"STORE_LOCK_TIMEOUT"`
		TxTimeout   string `yaml:"tx_timeout" env:"STORE_TX_TIMEOUT"`
		Seed        bool   `yaml:"seed" env:"STORE_SEED"`
	} `yaml:"store"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	Fees struct {
		Currency string `yaml:"currency" env:"FEES_CURRENCY"`
	} `yaml:"fees"`

	Email struct {
		Host      string `yaml:"host" env:"SMTP_HOST"`
		Port      int    `yaml:"port" env:"SMTP_PORT"`
		Username  string `yaml:"username" env:"SMTP_USERNAME"`
		Password  string `yaml:"password" env:"SMTP_PASSWORD"`
		FromName  string `yaml:"from_name" env:"SMTP_FROM_NAME"`
		FromEmail string `yaml:"from_email" env:"SMTP_FROM_EMAIL"`
		UseTLS    bool   `yaml:"use_tls" env:"SMTP_USE_TLS"`
	} `yaml:"email"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file, an optional .env file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Values already present in the environment win over .env entries
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"

	config.Store.Backend = BackendMemory
	config.Store.DataDir = "data"
	config.Store.LockTimeout = "2s"
	config.Store.TxTimeout = "10s"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "collegeerp"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"

	config.Fees.Currency = "INR"

	config.Email.Port = 587
	config.Email.FromName = "College Office"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	config.Store.Backend = strings.ToLower(strings.TrimSpace(config.Store.Backend))
	switch config.Store.Backend {
	case BackendMemory:
	case BackendCSV:
		if config.Store.DataDir == "" {
			return fmt.Errorf("store data_dir is required for the csv backend")
		}
	case BackendPostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required for the postgres backend")
		}
		if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
			return fmt.Errorf("invalid database conn_max_lifetime: %w", err)
		}
	default:
		return fmt.Errorf("unknown store backend %q", config.Store.Backend)
	}

	if d, err := time.ParseDuration(config.Store.LockTimeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid store lock_timeout %q", config.Store.LockTimeout)
	}
	if d, err := time.ParseDuration(config.Store.TxTimeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid store tx_timeout %q", config.Store.TxTimeout)
	}

	if strings.TrimSpace(config.Fees.Currency) == "" {
		return fmt.Errorf("fees currency is required")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// Fallbacks used when a duration setting is unparseable.
const (
	defaultLockTimeout     = 2 * time.Second
	defaultTxTimeout       = 10 * time.Second
	defaultConnMaxLifetime = time.Hour
)

// LockTimeout returns the parsed per-entity lock timeout
func (c *Config) LockTimeout() time.Duration {
	return helpers.ParseDuration(c.Store.LockTimeout, defaultLockTimeout)
}

// TxTimeout returns the parsed unit-of-work timeout
func (c *Config) TxTimeout() time.Duration {
	return helpers.ParseDuration(c.Store.TxTimeout, defaultTxTimeout)
}

// ConnMaxLifetime returns how long a pooled database connection may live.
func (c *Config) ConnMaxLifetime() time.Duration {
	return helpers.ParseDuration(c.Database.ConnMaxLifetime, defaultConnMaxLifetime)
}
