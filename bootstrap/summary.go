package bootstrap

import (
	"context"
	"time"

	"github.com/kbukum/artifactstore/component"
	"github.com/kbukum/artifactstore/logger"
)

// Summary tracks what the app started and reports it once startup is done.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	names           []string
}

// NewSummary creates a new bootstrap summary tracker.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{
		serviceName: serviceName,
		version:     version,
	}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Components returns the tracked component names in registration order.
func (s *Summary) Components() []string {
	return append([]string(nil), s.names...)
}

func (s *Summary) track(name string) {
	s.names = append(s.names, name)
}

// Log writes one debug line per component with its description and live health.
func (s *Summary) Log(registry *component.Registry, log *logger.Logger) {
	health := make(map[string]component.Health)
	for _, h := range registry.HealthAll(context.Background()) {
		health[h.Name] = h
	}

	for _, name := range s.names {
		fields := logger.Fields(logger.FieldComponent, name, "status", string(health[name].Status))
		if d, ok := registry.Get(name).(component.Describable); ok {
			desc := d.Describe()
			fields["type"] = desc.Type
			fields["details"] = desc.Details
		}
		if msg := health[name].Message; msg != "" {
			fields["message"] = msg
		}
		log.Debug("Component ready", fields)
	}

	log.Debug("Startup complete", map[string]interface{}{
		"service":     s.serviceName,
		"version":     s.version,
		"duration_ms": s.startupDuration.Milliseconds(),
		"components":  len(s.names),
	})
}
