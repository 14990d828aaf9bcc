package storage

import (
	"github.com/kbukum/artifactstore/validation"
)

// Provider constants for supported storage backends.
const (
	ProviderDatabase = "database"
	ProviderS3       = "s3"
	ProviderMemory   = "memory"
)

// Compression constants for the database backend.
const (
	CompressionNone = "none"
	CompressionZstd = "zstd"
)

// Default configuration values.
const (
	DefaultDriver = "sqlite"
	DefaultDSN    = "artifacts.db"
	DefaultTable  = "files"
	DefaultRegion = "us-east-1"
)

// Config selects and configures the storage backend. It is passed
// explicitly to New; nothing reads it from global state.
type Config struct {
	// Provider selects the backend: "database", "s3" or "memory". When
	// empty, "s3" is chosen if S3.Bucket is set, otherwise "database".
	Provider string `mapstructure:"provider" validate:"oneof=database s3 memory"`

	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
}

// DatabaseConfig configures the relational backend.
type DatabaseConfig struct {
	Driver      string `mapstructure:"driver" validate:"oneof=sqlite"`
	DSN         string `mapstructure:"dsn" validate:"required"`
	Table       string `mapstructure:"table" validate:"required"`
	Compression string `mapstructure:"compression" validate:"oneof=none zstd"`
}

// S3Config configures the object store backend.
type S3Config struct {
	Bucket         string `mapstructure:"bucket"`
	Region         string `mapstructure:"region"`
	Endpoint       string `mapstructure:"endpoint" validate:"omitempty,url"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		if c.S3.Bucket != "" {
			c.Provider = ProviderS3
		} else {
			c.Provider = ProviderDatabase
		}
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DefaultDriver
	}
	if c.Database.DSN == "" {
		c.Database.DSN = DefaultDSN
	}
	if c.Database.Table == "" {
		c.Database.Table = DefaultTable
	}
	if c.Database.Compression == "" {
		c.Database.Compression = CompressionNone
	}
	if c.S3.Region == "" {
		c.S3.Region = DefaultRegion
	}
}

// Validate checks the configuration for the selected provider.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if c.Provider == ProviderS3 {
		if err := validation.Validate(&s3Required{c.S3.Bucket, c.S3.Region}); err != nil {
			return err
		}
	}
	return nil
}

type s3Required struct {
	Bucket string `mapstructure:"s3.bucket" validate:"required"`
	Region string `mapstructure:"s3.region" validate:"required"`
}

// GetBucket returns the S3 bucket, if any.
func (c *Config) GetBucket() string { return c.S3.Bucket }
