package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/kbukum/artifactstore/logger"
)

// Config is the telemetry section of the service configuration.
type Config struct {
	Enabled bool `mapstructure:"enabled"`
	// Endpoint is the OTLP/HTTP collector as host:port.
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
	// SampleRate is the trace sampling ratio. Unset samples everything;
	// an explicit 0 disables sampling.
	SampleRate *float64      `mapstructure:"sample_rate" validate:"omitempty,min=0,max=1"`
	Interval   time.Duration `mapstructure:"interval"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == nil {
		rate := 1.0
		c.SampleRate = &rate
	}
	if c.Interval <= 0 {
		c.Interval = 15 * time.Second
	}
}

// Rate returns the effective sampling ratio.
func (c Config) Rate() float64 {
	if c.SampleRate == nil {
		return 1.0
	}
	return *c.SampleRate
}

// ServiceInfo identifies the process in exported telemetry.
type ServiceInfo struct {
	Name        string
	Version     string
	Environment string
}

func newResource(info ServiceInfo) (*resource.Resource, error) {
	// Schemaless so the merge never conflicts with the SDK default schema.
	return resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(info.Name),
			semconv.ServiceVersion(info.Version),
			attribute.String("environment", info.Environment),
		),
	)
}

// Setup installs OTLP meter and tracer providers when cfg.Enabled is set.
// When disabled the global no-op providers stay in place. The returned
// function flushes and shuts down whatever was installed.
func Setup(ctx context.Context, info ServiceInfo, cfg Config) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}
	cfg.ApplyDefaults()

	res, err := newResource(info)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	mp, err := InitMeter(ctx, res, cfg)
	if err != nil {
		return nil, err
	}
	tp, err := InitTracer(ctx, res, cfg)
	if err != nil {
		_ = mp.Shutdown(ctx)
		return nil, err
	}

	logger.Info("telemetry enabled", logger.Fields(
		"service", info.Name,
		"endpoint", cfg.Endpoint,
		"sample_rate", cfg.Rate(),
		"interval", cfg.Interval.String(),
	))

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}
