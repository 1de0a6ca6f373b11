package application

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/load-planner/internal/config"
	"github.com/eugenenazirov/load-planner/internal/job"
	"github.com/eugenenazirov/load-planner/internal/packing"
	"github.com/eugenenazirov/load-planner/internal/result"
)

// App wires configuration, the packing engine and the result assembler.
type App struct {
	cfg    config.Config
	packer *packing.Packer
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	entropy io.Reader
}

// Option configures an App.
type Option func(*App)

// WithClock overrides the time source used for run identifiers.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		if now != nil {
			a.now = now
		}
	}
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.PackingOptions().Validate(); err != nil {
		return nil, fmt.Errorf("invalid packing options: %w", err)
	}

	app := &App{
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
	app.packer = packing.New(cfg.PackingOptions(), app.packerDefaults()...)
	for _, opt := range opts {
		opt(app)
	}
	return app, nil
}

func (a *App) packerDefaults() []packing.Option {
	return []packing.Option{
		packing.WithLogger(a.logger.Named("packing")),
		packing.WithProgressInterval(a.cfg.ProgressInterval),
	}
}

// Packer returns the packing engine used by the application.
func (a *App) Packer() *packing.Packer {
	return a.packer
}

// RunFile loads a job file and packs it.
func (a *App) RunFile(ctx context.Context, path string) (result.Result, error) {
	j, err := job.Load(path)
	if err != nil {
		return result.Result{}, err
	}
	return a.Run(ctx, j)
}

// Run expands the job, packs it and assembles the report. The configured
// timeout bounds the packing step.
func (a *App) Run(ctx context.Context, j job.Job) (result.Result, error) {
	containers, items, err := j.Expand(a.cfg.DefaultMaxWeight)
	if err != nil {
		return result.Result{}, fmt.Errorf("expand job: %w", err)
	}

	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	runID := a.newRunID()
	logger := a.logger.With(zap.String("run_id", runID))
	logger.Info("run started",
		zap.Int("containers", len(containers)),
		zap.Int("items", len(items)),
		zap.String("order_mode", string(a.cfg.OrderMode)),
		zap.Bool("distribute", a.cfg.Distribute),
	)

	start := a.now()
	outcome, err := a.packer.Pack(ctx, containers, items)
	if err != nil {
		logger.Error("run failed", zap.Error(err))
		return result.Result{}, err
	}

	res := result.Assemble(outcome)
	res.RunID = runID

	logger.Info("run finished",
		zap.Int("placed", res.PlacedCount()),
		zap.Int("unplaced", len(res.Unplaced)),
		zap.Duration("elapsed", a.now().Sub(start)),
	)
	return res, nil
}

func (a *App) newRunID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(a.now()), a.entropy).String()
}
