package config

import (
	"fmt"
	"slices"

	"github.com/kbukum/artifactstore/logger"
	"github.com/kbukum/artifactstore/observability"
	"github.com/kbukum/artifactstore/storage"
	"github.com/kbukum/artifactstore/validation"
	"github.com/kbukum/artifactstore/version"
)

// ServiceName is used to locate config files and tag logs.
const ServiceName = "artifactstore"

var validEnvironments = []string{"development", "staging", "production"}

// ServiceConfig contains the fields every command needs.
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults applies default values to the base configuration.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	if c.Version == "" {
		c.Version = version.Get().Short()
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	// Propagate service name into logging so Init() uses the right tag.
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the base configuration fields.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	if !slices.Contains(validEnvironments, c.Environment) {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", validEnvironments, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}

// Config is the complete artifactstore configuration.
type Config struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Storage       storage.Config       `yaml:"storage" mapstructure:"storage"`
	Telemetry     observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults fills in defaults for every section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("config.storage: %w", err)
	}
	if err := validation.Validate(&c.Telemetry); err != nil {
		return fmt.Errorf("config.telemetry: %w", err)
	}
	return nil
}

// Load reads, defaults and validates the artifactstore configuration.
func Load(opts ...LoaderOption) (*Config, error) {
	var cfg Config
	if err := LoadConfig(ServiceName, &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
