package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// InitMeter installs a periodic OTLP/HTTP meter provider as the global
// provider. The caller shuts it down on exit.
func InitMeter(ctx context.Context, res *resource.Resource, cfg Config) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metric names recorded by the storage layer.
const (
	MetricPutTotal    = "artifactstore.blob.put.total"
	MetricPutBytes    = "artifactstore.blob.put.bytes"
	MetricPutDuration = "artifactstore.blob.put.duration"
	MetricGetTotal    = "artifactstore.blob.get.total"
)

// Outcome values for the "outcome" attribute.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// StorageMetrics holds the instruments recorded around backend calls.
type StorageMetrics struct {
	putTotal    metric.Int64Counter
	putBytes    metric.Int64Counter
	putDuration metric.Float64Histogram
	getTotal    metric.Int64Counter
}

// NewStorageMetrics creates storage instruments on the given meter.
func NewStorageMetrics(meter metric.Meter) (*StorageMetrics, error) {
	putTotal, err := meter.Int64Counter(MetricPutTotal,
		metric.WithDescription("Blobs written, by provider and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricPutTotal, err)
	}

	putBytes, err := meter.Int64Counter(MetricPutBytes,
		metric.WithDescription("Payload bytes successfully written"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricPutBytes, err)
	}

	putDuration, err := meter.Float64Histogram(MetricPutDuration,
		metric.WithDescription("Duration of blob writes in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricPutDuration, err)
	}

	getTotal, err := meter.Int64Counter(MetricGetTotal,
		metric.WithDescription("Blob reads, by provider and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricGetTotal, err)
	}

	return &StorageMetrics{
		putTotal:    putTotal,
		putBytes:    putBytes,
		putDuration: putDuration,
		getTotal:    getTotal,
	}, nil
}

// RecordPut records one write attempt. Bytes are only counted on success.
func (m *StorageMetrics) RecordPut(ctx context.Context, provider, outcome string, size int64, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	)
	m.putTotal.Add(ctx, 1, attrs)
	m.putDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("provider", provider),
	))
	if outcome == OutcomeOK {
		m.putBytes.Add(ctx, size, metric.WithAttributes(
			attribute.String("provider", provider),
		))
	}
}

// RecordGet records one read attempt.
func (m *StorageMetrics) RecordGet(ctx context.Context, provider, outcome string) {
	m.getTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	))
}
