// Package config loads application configuration in three layers:
// built-in defaults, an optional YAML file, then environment variables.
// Later layers win.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// envPrefix namespaces all environment variables, e.g. RESULT_SERVER_PORT.
const envPrefix = "RESULT"

// Config is the complete application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Storage StorageConfig `yaml:"storage" envconfig:"STORAGE"`
	Auth    AuthConfig    `yaml:"auth" envconfig:"AUTH"`
	Extract ExtractConfig `yaml:"extract" envconfig:"EXTRACT"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	// MaxUploadBytes bounds multipart result-sheet uploads.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// StorageConfig contains database and upload paths.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path" envconfig:"DATABASE_PATH"`
	UploadDir    string `yaml:"upload_dir" envconfig:"UPLOAD_DIR"`
}

// AuthConfig contains authentication configuration.
type AuthConfig struct {
	TokenTTL   time.Duration `yaml:"token_ttl" envconfig:"TOKEN_TTL"`
	BcryptCost int           `yaml:"bcrypt_cost" envconfig:"BCRYPT_COST"`
}

// ExtractConfig tunes the result-sheet extractors.
type ExtractConfig struct {
	// LegacyYearPrefix switches registration-number recognition to the
	// old literal-prefix mode (e.g. "2019/") for parity with historical
	// imports. Empty means shape-based matching.
	LegacyYearPrefix string `yaml:"legacy_year_prefix" envconfig:"LEGACY_YEAR_PREFIX"`
}

// Default returns the built-in configuration baseline.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxUploadBytes:  10 << 20,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "stdout",
			FilePath: "logs/app.log",
		},
		Storage: StorageConfig{
			DatabasePath: "data/results.db",
			UploadDir:    "data/uploads",
		},
		Auth: AuthConfig{
			TokenTTL:   12 * time.Hour,
			BcryptCost: 10,
		},
	}
}

// Load reads configuration from the optional YAML file at path, then lets
// environment variables override it. An empty path skips the file layer; a
// named file that does not exist is an error, so typos fail loudly.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Storage.DatabasePath == "" {
		return fmt.Errorf("storage database path must not be empty")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost %d out of range", c.Auth.BcryptCost)
	}
	return nil
}
