// Package telemetry installs the OpenTelemetry tracer provider used by the
// packing engine's run spans.
package telemetry
