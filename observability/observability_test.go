package observability

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{1.5, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
		{0.25, "TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		if got := sampler(tt.rate).Description(); got != tt.want {
			t.Errorf("sampler(%v) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}

func TestNewResource(t *testing.T) {
	res, err := newResource(ServiceInfo{Name: "artifactstore", Version: "1.0.0", Environment: "test"})
	if err != nil {
		t.Fatalf("newResource: %v", err)
	}
	got := map[string]string{}
	for _, kv := range res.Attributes() {
		got[string(kv.Key)] = kv.Value.Emit()
	}
	if got["service.name"] != "artifactstore" || got["service.version"] != "1.0.0" || got["environment"] != "test" {
		t.Errorf("unexpected resource attributes: %v", got)
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" || cfg.Rate() != 1.0 || cfg.Interval != 15*time.Second {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestConfigSampleRate(t *testing.T) {
	zero, quarter := 0.0, 0.25
	tests := []struct {
		name string
		rate *float64
		want string
	}{
		{"unset", nil, "AlwaysOnSampler"},
		{"explicit zero", &zero, "AlwaysOffSampler"},
		{"ratio", &quarter, "TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{SampleRate: tt.rate}
			cfg.ApplyDefaults()
			if got := sampler(cfg.Rate()).Description(); got != tt.want {
				t.Errorf("sampler = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetup_Disabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), ServiceInfo{Name: "svc"}, Config{})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestStorageMetrics_Noop(t *testing.T) {
	m, err := NewStorageMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("NewStorageMetrics: %v", err)
	}
	ctx := context.Background()
	m.RecordPut(ctx, "memory", OutcomeOK, 10, time.Millisecond)
	m.RecordGet(ctx, "memory", OutcomeNotFound)
}

func TestStorageMetrics_Recorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	m, err := NewStorageMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewStorageMetrics: %v", err)
	}
	ctx := context.Background()
	m.RecordPut(ctx, "database", OutcomeOK, 100, time.Millisecond)
	m.RecordPut(ctx, "database", OutcomeOK, 50, time.Millisecond)
	m.RecordPut(ctx, "database", OutcomeError, 999, time.Millisecond)
	m.RecordGet(ctx, "database", OutcomeNotFound)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	sums := map[string]map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			data, ok := md.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			byOutcome := map[string]int64{}
			for _, dp := range data.DataPoints {
				outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
				byOutcome[outcome.AsString()] += dp.Value
			}
			sums[md.Name] = byOutcome
		}
	}

	if got := sums[MetricPutTotal][OutcomeOK]; got != 2 {
		t.Errorf("put ok = %d, want 2", got)
	}
	if got := sums[MetricPutTotal][OutcomeError]; got != 1 {
		t.Errorf("put error = %d, want 1", got)
	}
	if got := sums[MetricPutBytes][""]; got != 150 {
		t.Errorf("put bytes = %d, want 150", got)
	}
	if got := sums[MetricGetTotal][OutcomeNotFound]; got != 1 {
		t.Errorf("get not_found = %d, want 1", got)
	}
}
