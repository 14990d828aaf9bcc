// Package observability wires OpenTelemetry metrics and tracing.
//
// Setup installs OTLP/HTTP exporters when telemetry is enabled; otherwise
// the global no-op providers remain and instruments cost nothing.
// StorageMetrics holds the blob read/write instruments used by the
// storage layer.
package observability
