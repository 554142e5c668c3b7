package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
	} `yaml:"server"`

	Database struct {
		Driver          string `yaml:"driver" env:"DB_DRIVER"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
		SeedDemo        bool   `yaml:"seed_demo" env:"DB_SEED_DEMO"`
	} `yaml:"database"`

	Allocation struct {
		TargetExaminers int  `yaml:"target_examiners" env:"ALLOC_TARGET_EXAMINERS"`
		DefaultCapacity int  `yaml:"default_capacity" env:"ALLOC_DEFAULT_CAPACITY"`
		MinCapacity     int  `yaml:"min_capacity" env:"ALLOC_MIN_CAPACITY"`
		MaxCapacity     int  `yaml:"max_capacity" env:"ALLOC_MAX_CAPACITY"`
		SerializeResets bool `yaml:"serialize_resets" env:"ALLOC_SERIALIZE_RESETS"`
	} `yaml:"allocation"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED"`
		Path    string `yaml:"path" env:"METRICS_PATH"`
	} `yaml:"metrics"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	// EnvOverrides lists the environment variables that were applied on load
	EnvOverrides []string `yaml:"-"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load default config with sane defaults
	config := &Config{}
	setDefaults(config)

	// Try to read config file if it exists
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Parse YAML into Config structure
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	applied, err := applyEnvOverrides(config)
	if err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}
	config.EnvOverrides = applied

	// Validate config
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "development"

	// Database defaults
	config.Database.Driver = "postgres"
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "examalloc"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	// Allocation defaults
	config.Allocation.TargetExaminers = 2
	config.Allocation.DefaultCapacity = 25
	config.Allocation.MinCapacity = 1
	config.Allocation.MaxCapacity = 100
	config.Allocation.SerializeResets = true

	// Metrics defaults
	config.Metrics.Enabled = true
	config.Metrics.Path = "/metrics"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	// Ensure required fields are set
	if config.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid database connection max lifetime: %w", err)
	}

	// Allocation policy
	alloc := config.Allocation
	if alloc.TargetExaminers < 1 {
		return fmt.Errorf("allocation target examiners must be at least 1, got %d", alloc.TargetExaminers)
	}
	if alloc.MinCapacity < 1 {
		return fmt.Errorf("allocation min capacity must be at least 1, got %d", alloc.MinCapacity)
	}
	if alloc.MaxCapacity < alloc.MinCapacity {
		return fmt.Errorf("allocation max capacity %d is below min capacity %d", alloc.MaxCapacity, alloc.MinCapacity)
	}
	if alloc.DefaultCapacity < alloc.MinCapacity || alloc.DefaultCapacity > alloc.MaxCapacity {
		return fmt.Errorf("allocation default capacity %d is outside [%d, %d]", alloc.DefaultCapacity, alloc.MinCapacity, alloc.MaxCapacity)
	}

	if config.Metrics.Enabled && !strings.HasPrefix(config.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with '/', got %q", config.Metrics.Path)
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

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
