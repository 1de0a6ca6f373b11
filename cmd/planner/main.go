package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/load-planner/internal/application"
	"github.com/eugenenazirov/load-planner/internal/config"
	"github.com/eugenenazirov/load-planner/internal/logging"
	"github.com/eugenenazirov/load-planner/internal/result"
	"github.com/eugenenazirov/load-planner/internal/telemetry"
)

const telemetryFlushTimeout = 5 * time.Second

var (
	version      = "dev"
	signalNotify = signal.Notify
)

// cliFlags holds the parsed command line.
type cliFlags struct {
	configFile    *string
	orderMode     *string
	distribute    *bool
	distributeSet bool
	decimals      *int
	decimalsSet   bool
	workers       *int
	workersSet    bool
	timeout       *time.Duration
	timeoutSet    bool
	format        *string
	logLevel      *string
	output        *string
	jobFile       *string
}

func newCLI() (*kingpin.Application, *kingpin.CmdClause, *cliFlags) {
	kingpinApp := kingpin.New("planner", "Load Planner - greedy 3D packing of items into containers")
	kingpinApp.Version(version)

	flags := &cliFlags{}
	flags.configFile = kingpinApp.Flag("config", "Path to YAML configuration file").String()
	flags.orderMode = kingpinApp.Flag("order-mode", "Item ordering: bigger_first or input_order").String()
	flags.distribute = kingpinApp.Flag("distribute", "Spread items across containers round-robin").IsSetByUser(&flags.distributeSet).Bool()
	flags.decimals = kingpinApp.Flag("decimals", "Decimal places kept when comparing sizes and weights").IsSetByUser(&flags.decimalsSet).Int()
	flags.workers = kingpinApp.Flag("workers", "Containers evaluated concurrently per item").IsSetByUser(&flags.workersSet).Int()
	flags.timeout = kingpinApp.Flag("timeout", "Abort the run after this long (0 disables)").IsSetByUser(&flags.timeoutSet).Duration()
	flags.format = kingpinApp.Flag("format", "Output format: json or yaml").String()
	flags.logLevel = kingpinApp.Flag("log-level", "Log level: debug, info, warn or error").String()

	runCmd := kingpinApp.Command("run", "Pack the items of a job file into its containers")
	flags.output = runCmd.Flag("output", "Write the result to this file instead of stdout").Short('o').String()
	flags.jobFile = runCmd.Arg("job", "Job file (YAML or JSON)").Required().ExistingFile()

	return kingpinApp, runCmd, flags
}

// overrides converts the flags the user actually set into config overrides.
func (f *cliFlags) overrides() *config.CLIOverrides {
	overrides := &config.CLIOverrides{
		ConfigFile: *f.configFile,
	}

	if *f.orderMode != "" {
		overrides.OrderMode = f.orderMode
	}
	if f.distributeSet {
		overrides.Distribute = f.distribute
	}
	if f.decimalsSet {
		overrides.DecimalPrecision = f.decimals
	}
	if f.workersSet {
		overrides.Workers = f.workers
	}
	if f.timeoutSet {
		overrides.Timeout = f.timeout
	}
	if *f.format != "" {
		overrides.OutputFormat = f.format
	}
	if *f.logLevel != "" {
		overrides.LogLevel = f.logLevel
	}

	return overrides
}

func main() {
	kingpinApp, _, flags := newCLI()
	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	if err := run(context.Background(), flags, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "planner: %v\n", err)
		os.Exit(1)
	}
}

// run executes the run command for already parsed flags.
func run(ctx context.Context, flags *cliFlags, stdout io.Writer) error {
	cfg, err := config.Load(flags.overrides())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := notifyContext(ctx, logger)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, cfg, version)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), telemetryFlushTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	res, err := app.RunFile(ctx, *flags.jobFile)
	if err != nil {
		logger.Error("packing run failed", zap.String("job", *flags.jobFile), zap.Error(err))
		return err
	}

	return writeResult(res, cfg.OutputFormat, *flags.output, stdout)
}

func writeResult(res result.Result, format result.Format, path string, stdout io.Writer) error {
	if path == "" {
		return res.Encode(stdout, format)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := res.Encode(f, format); err != nil {
		_ = f.Close()
		return fmt.Errorf("write output file: %w", err)
	}
	return f.Close()
}

// notifyContext cancels the returned context when SIGINT or SIGTERM arrives.
func notifyContext(parent context.Context, logger *zap.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-quit:
			logger.Info("interrupt received, cancelling run", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(quit)
		cancel()
	}
}
