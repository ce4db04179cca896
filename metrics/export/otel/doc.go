// Package otel publishes engine counters as OpenTelemetry observable
// instruments. The caller owns the MeterProvider.
package otel
