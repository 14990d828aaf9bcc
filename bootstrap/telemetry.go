package bootstrap

import (
	"context"
	"fmt"

	"github.com/kbukum/artifactstore/component"
	"github.com/kbukum/artifactstore/config"
	"github.com/kbukum/artifactstore/logger"
	"github.com/kbukum/artifactstore/observability"
)

// telemetryComponent installs the OpenTelemetry providers for the life of
// the app and flushes them on Stop.
type telemetryComponent struct {
	cfg      *config.Config
	log      *logger.Logger
	shutdown func(context.Context) error
}

var _ component.Component = (*telemetryComponent)(nil)

func newTelemetryComponent(cfg *config.Config, log *logger.Logger) *telemetryComponent {
	return &telemetryComponent{cfg: cfg, log: log.WithComponent("telemetry")}
}

func (t *telemetryComponent) Name() string { return "telemetry" }

func (t *telemetryComponent) Start(ctx context.Context) error {
	shutdown, err := observability.Setup(ctx, observability.ServiceInfo{
		Name:        t.cfg.Name,
		Version:     t.cfg.Version,
		Environment: t.cfg.Environment,
	}, t.cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("telemetry start: %w", err)
	}
	t.shutdown = shutdown
	return nil
}

func (t *telemetryComponent) Stop(ctx context.Context) error {
	if t.shutdown == nil {
		return nil
	}
	err := t.shutdown(ctx)
	t.shutdown = nil
	return err
}

func (t *telemetryComponent) Health(_ context.Context) component.Health {
	return component.Health{Name: t.Name(), Status: component.StatusHealthy}
}

func (t *telemetryComponent) Describe() component.Description {
	details := "disabled"
	if t.cfg.Telemetry.Enabled {
		details = fmt.Sprintf("endpoint=%s sample_rate=%.2f", t.cfg.Telemetry.Endpoint, t.cfg.Telemetry.Rate())
	}
	return component.Description{
		Name:    "Telemetry",
		Type:    "telemetry",
		Details: details,
	}
}
