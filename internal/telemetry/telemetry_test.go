package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/eugenenazirov/load-planner/internal/config"
	"github.com/eugenenazirov/load-planner/internal/packing"
)

func testConfig() config.Config {
	return config.Config{
		OrderMode:        packing.OrderInput,
		Distribute:       true,
		DecimalPrecision: 2,
		Workers:          4,
		ServiceName:      "dock-7",
		TraceSampleRatio: 1,
	}
}

func TestInitWithoutEndpoint(t *testing.T) {
	previous := otel.GetTracerProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
	})

	shutdown, err := Init(context.Background(), testConfig(), "test")
	if err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	_, span := otel.Tracer("test").Start(context.Background(), "Packer.Pack")
	if !span.SpanContext().IsValid() {
		t.Fatalf("expected a recording tracer provider to be installed")
	}
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown returned error: %v", err)
	}
}

func TestProviderCarriesRunSettings(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := newProvider(testConfig(), "1.2.3", sdktrace.WithSyncer(exporter))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
	})

	_, span := tp.Tracer("test").Start(context.Background(), "Packer.Pack")
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 exported span, got %d", len(spans))
	}

	attrs := spans[0].Resource.Set()
	want := map[attribute.Key]attribute.Value{
		semconv.ServiceNameKey:      attribute.StringValue("dock-7"),
		semconv.ServiceVersionKey:   attribute.StringValue("1.2.3"),
		"planner.order_mode":        attribute.StringValue("input_order"),
		"planner.distribute":        attribute.BoolValue(true),
		"planner.decimal_precision": attribute.IntValue(2),
		"planner.workers":           attribute.IntValue(4),
	}
	for key, value := range want {
		got, ok := attrs.Value(key)
		if !ok {
			t.Fatalf("resource is missing %s", key)
		}
		if got.Type() != value.Type() || got.Emit() != value.Emit() {
			t.Fatalf("expected %s=%s, got %s", key, value.Emit(), got.Emit())
		}
	}
}

func TestProviderHonoursSampleRatio(t *testing.T) {
	cfg := testConfig()
	cfg.TraceSampleRatio = 0

	exporter := tracetest.NewInMemoryExporter()
	tp := newProvider(cfg, "test", sdktrace.WithSyncer(exporter))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
	})

	_, span := tp.Tracer("test").Start(context.Background(), "Packer.Pack")
	if span.SpanContext().IsSampled() {
		t.Fatalf("expected root span to be dropped at ratio 0")
	}
	span.End()

	if got := len(exporter.GetSpans()); got != 0 {
		t.Fatalf("expected no exported spans, got %d", got)
	}
}
