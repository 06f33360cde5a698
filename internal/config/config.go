// Package config provides unified configuration for the raidmeter
// persistence service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the full service configuration.
type Config struct {
	// DataDir is the base directory for all data files
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Database configuration
	Database DatabaseConfig `json:"database" yaml:"database"`

	// Uplink configuration
	Uplink UplinkConfig `json:"uplink" yaml:"uplink"`
}

// DatabaseConfig holds the encounter database configuration.
type DatabaseConfig struct {
	// Path is the SQLite file path; defaults to encounters.db under DataDir
	Path string `json:"path" yaml:"path"`

	// ReadPoolSize is the maximum number of read connections
	ReadPoolSize int `json:"read_pool_size" yaml:"read_pool_size"`
}

// UplinkConfig holds the encounter uplink configuration.
type UplinkConfig struct {
	// Enabled controls whether finished encounters are pushed upstream
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Storage is the uplink target: local, s3
	Storage string `json:"storage" yaml:"storage"`

	// Path is the local uplink directory (for local storage)
	Path string `json:"path" yaml:"path"`

	// S3 configuration (for s3 storage)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 uplink configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// DefaultConfig returns the default configuration for local use.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data/raidmeter",
		Database: DatabaseConfig{
			Path:         "",
			ReadPoolSize: 4,
		},
		Uplink: UplinkConfig{
			Enabled: false,
			Storage: "local",
			Path:    "",
		},
	}
}

// Resolve resolves relative paths and sets defaults based on DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/raidmeter"
	}
	if c.Database.Path == "" {
		c.Database.Path = filepath.Join(c.DataDir, "encounters.db")
	}
	if c.Uplink.Path == "" {
		c.Uplink.Path = filepath.Join(c.DataDir, "uplink")
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.Database.ReadPoolSize < 1 {
		return fmt.Errorf("database.read_pool_size must be at least 1, got %d", c.Database.ReadPoolSize)
	}

	if c.Uplink.Storage != "local" && c.Uplink.Storage != "s3" {
		return fmt.Errorf("invalid uplink storage: %s (must be local or s3)", c.Uplink.Storage)
	}

	if c.Uplink.Storage == "s3" && c.Uplink.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required when uplink storage is s3")
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the RAIDMETER_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("RAIDMETER_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("RAIDMETER_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("RAIDMETER_DATABASE_READ_POOL_SIZE"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Database.ReadPoolSize)
	}

	// Uplink configuration
	if v := os.Getenv("RAIDMETER_UPLINK_ENABLED"); v != "" {
		cfg.Uplink.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("RAIDMETER_UPLINK_STORAGE"); v != "" {
		cfg.Uplink.Storage = v
	}
	if v := os.Getenv("RAIDMETER_UPLINK_PATH"); v != "" {
		cfg.Uplink.Path = v
	}
	if v := os.Getenv("RAIDMETER_S3_BUCKET"); v != "" {
		cfg.Uplink.S3.Bucket = v
	}
	if v := os.Getenv("RAIDMETER_S3_REGION"); v != "" {
		cfg.Uplink.S3.Region = v
	}
	if v := os.Getenv("RAIDMETER_S3_ENDPOINT"); v != "" {
		cfg.Uplink.S3.Endpoint = v
	}
}

// EnsureDirectories creates all required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.DataDir,
		filepath.Dir(c.Database.Path),
	}
	if c.Uplink.Enabled && c.Uplink.Storage == "local" {
		dirs = append(dirs, c.Uplink.Path)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
