package application

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eugenenazirov/load-planner/internal/config"
	"github.com/eugenenazirov/load-planner/internal/job"
	"github.com/eugenenazirov/load-planner/internal/packing"
)

func TestNewInitializesDependencies(t *testing.T) {
	cfg := baseTestConfig()
	cfg.Distribute = true
	cfg.Workers = 3

	app, err := New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if app.Packer() == nil {
		t.Fatalf("expected packer to be initialized")
	}
	if got := app.Packer().Options(); got != cfg.PackingOptions() {
		t.Fatalf("expected packer options %+v, got %+v", cfg.PackingOptions(), got)
	}
}

func TestNewRejectsInvalidPackingOptions(t *testing.T) {
	cfg := baseTestConfig()
	cfg.OrderMode = "smallest_first"

	_, err := New(cfg, zaptest.NewLogger(t))
	if !errors.Is(err, packing.ErrInvalidOptions) {
		t.Fatalf("expected ErrInvalidOptions, got %v", err)
	}
}

func TestRunPacksJob(t *testing.T) {
	app, err := New(baseTestConfig(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	res, err := app.Run(context.Background(), sampleJob())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if _, err := ulid.ParseStrict(res.RunID); err != nil {
		t.Fatalf("expected a ULID run id, got %q: %v", res.RunID, err)
	}
	if got := res.PlacedCount(); got != 4 {
		t.Fatalf("expected 4 placements, got %d", got)
	}
	if len(res.Unplaced) != 1 || res.Unplaced[0] != "oversize" {
		t.Fatalf("expected oversize to be unplaced, got %v", res.Unplaced)
	}
	if len(res.Containers) != 2 {
		t.Fatalf("expected 2 container summaries, got %d", len(res.Containers))
	}
	if res.Containers[0].ContainerID != "Truck-1" || res.Containers[1].ContainerID != "Truck-2" {
		t.Fatalf("unexpected container ids: %s, %s", res.Containers[0].ContainerID, res.Containers[1].ContainerID)
	}
	if got := len(res.PlacementsFor("Truck-1")); got != 4 {
		t.Fatalf("expected first truck to take every crate, got %d", got)
	}
}

func TestRunDistributesAcrossContainers(t *testing.T) {
	cfg := baseTestConfig()
	cfg.Distribute = true

	app, err := New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	res, err := app.Run(context.Background(), sampleJob())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	for _, id := range []string{"Truck-1", "Truck-2"} {
		if got := len(res.PlacementsFor(id)); got != 2 {
			t.Fatalf("expected 2 crates in %s, got %d", id, got)
		}
	}
}

func TestRunUsesClockForRunID(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	app, err := New(baseTestConfig(), zaptest.NewLogger(t), WithClock(func() time.Time { return fixed }))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	first, err := app.Run(context.Background(), sampleJob())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	second, err := app.Run(context.Background(), sampleJob())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	id := ulid.MustParse(first.RunID)
	if got := ulid.Time(id.Time()); !got.Equal(fixed) {
		t.Fatalf("expected run id timestamp %v, got %v", fixed, got)
	}
	if first.RunID == second.RunID {
		t.Fatalf("expected distinct run ids, both were %s", first.RunID)
	}
	if first.RunID >= second.RunID {
		t.Fatalf("expected monotonic run ids, got %s then %s", first.RunID, second.RunID)
	}
}

func TestRunReturnsExpansionErrors(t *testing.T) {
	app, err := New(baseTestConfig(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	j := sampleJob()
	j.Items[0].Quantity = -1

	if _, err := app.Run(context.Background(), j); !errors.Is(err, job.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestRunReturnsValidationErrors(t *testing.T) {
	app, err := New(baseTestConfig(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	j := sampleJob()
	j.Containers[0].Height = 0

	if _, err := app.Run(context.Background(), j); !errors.Is(err, packing.ErrInvalidDimension) {
		t.Fatalf("expected ErrInvalidDimension, got %v", err)
	}
}

func TestRunRequiresContainers(t *testing.T) {
	app, err := New(baseTestConfig(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	j := sampleJob()
	j.Containers = nil

	if _, err := app.Run(context.Background(), j); !errors.Is(err, packing.ErrEmptyContainerSet) {
		t.Fatalf("expected ErrEmptyContainerSet, got %v", err)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	app, err := New(baseTestConfig(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := app.Run(ctx, sampleJob()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunLogsSummary(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	app, err := New(baseTestConfig(), zap.New(core))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	res, err := app.Run(context.Background(), sampleJob())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	finished := logs.FilterMessage("run finished").All()
	if len(finished) != 1 {
		t.Fatalf("expected one run finished entry, got %d", len(finished))
	}
	fields := finished[0].ContextMap()
	if fields["run_id"] != res.RunID {
		t.Fatalf("expected run_id %s, got %v", res.RunID, fields["run_id"])
	}
	if fields["placed"] != int64(4) || fields["unplaced"] != int64(1) {
		t.Fatalf("unexpected summary fields: %v", fields)
	}
	if logs.FilterMessage("packing completed").Len() != 1 {
		t.Fatalf("expected the packing engine to log through the application logger")
	}
}

func TestRunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	content := `containers:
  - id: Van
    length: 4
    width: 2
    height: 2
    max_weight: 100
items:
  - id: box
    length: 2
    width: 2
    height: 2
    weight: 10
    quantity: 3
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write job file: %v", err)
	}

	app, err := New(baseTestConfig(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	res, err := app.RunFile(context.Background(), path)
	if err != nil {
		t.Fatalf("RunFile returned error: %v", err)
	}
	if res.PlacedCount() != 2 {
		t.Fatalf("expected 2 boxes to fit, got %d", res.PlacedCount())
	}
	if len(res.Unplaced) != 1 || res.Unplaced[0] != "box_2" {
		t.Fatalf("expected box_2 unplaced, got %v", res.Unplaced)
	}
}

func TestRunFileMissing(t *testing.T) {
	app, err := New(baseTestConfig(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if _, err := app.RunFile(context.Background(), filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func sampleJob() job.Job {
	maxWeight := 100.0
	return job.Job{
		Containers: []job.ContainerSpec{
			{ID: "Truck", Length: 10, Width: 10, Height: 10, MaxWeight: &maxWeight, Quantity: 2},
		},
		Items: []job.ItemSpec{
			{ID: "crate", Length: 5, Width: 5, Height: 5, Weight: 10, Quantity: 4},
			{ID: "oversize", Length: 11, Width: 1, Height: 1, Weight: 1},
		},
	}
}

func baseTestConfig() config.Config {
	return config.Config{
		OrderMode:        packing.OrderBiggerFirst,
		DecimalPrecision: packing.DefaultDecimalPrecision,
		Workers:          1,
		Timeout:          time.Minute,
		DefaultMaxWeight: job.DefaultMaxWeight,
		LogLevel:         "debug",
		ProgressInterval: time.Second,
	}
}
