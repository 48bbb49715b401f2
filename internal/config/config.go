package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Environment string         `yaml:"environment"`
	Server      ServerConfig   `yaml:"server"`
	Database    DatabaseConfig `yaml:"database"`
	AWS         AWSConfig      `yaml:"aws"`
	Auth        AuthConfig     `yaml:"auth"`
	Upload      UploadConfig   `yaml:"upload"`
	Log         LogConfig      `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// AWSConfig holds AWS configuration
type AWSConfig struct {
	Region     string `yaml:"region"`
	S3Bucket   string `yaml:"s3_bucket"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Endpoint   string `yaml:"endpoint"`
	DisableSSL bool   `yaml:"disable_ssl"`
}

// AuthConfig holds token-signing configuration
type AuthConfig struct {
	Secret string `yaml:"secret"`
}

// UploadConfig holds upload and image-processing configuration
type UploadConfig struct {
	MaxFileSize       int64 `yaml:"max_file_size"`
	WebMaxDimension   int   `yaml:"web_max_dimension"`
	WebQuality        int   `yaml:"web_quality"`
	ThumbMaxDimension int   `yaml:"thumb_max_dimension"`
	ThumbQuality      int   `yaml:"thumb_quality"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

const (
	defaultMaxFileSize  = 50 * 1024 * 1024 // high-res photos
	defaultWebMaxDim    = 1920
	defaultWebQuality   = 88
	defaultThumbMaxDim  = 600
	defaultThumbQuality = 82
)

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Upload.MaxFileSize == 0 {
		c.Upload.MaxFileSize = defaultMaxFileSize
	}
	if c.Upload.WebMaxDimension == 0 {
		c.Upload.WebMaxDimension = defaultWebMaxDim
	}
	if c.Upload.WebQuality == 0 {
		c.Upload.WebQuality = defaultWebQuality
	}
	if c.Upload.ThumbMaxDimension == 0 {
		c.Upload.ThumbMaxDimension = defaultThumbMaxDim
	}
	if c.Upload.ThumbQuality == 0 {
		c.Upload.ThumbQuality = defaultThumbQuality
	}
}

func (c *Config) validate() error {
	if len(c.Auth.Secret) < 32 {
		return fmt.Errorf("auth secret must be at least 32 characters")
	}
	if c.IsProduction() && c.AWS.S3Bucket == "" {
		return fmt.Errorf("s3 bucket must be configured in production")
	}
	return nil
}

// IsProduction reports whether the app runs in a production-like environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// S3Configured reports whether object storage credentials are present
func (c *Config) S3Configured() bool {
	return c.AWS.S3Bucket != ""
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
