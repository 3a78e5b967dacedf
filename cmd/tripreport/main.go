package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tripreport/internal/config"
	"tripreport/internal/errors"
	"tripreport/internal/infrastructure"
	"tripreport/internal/operations"
	"tripreport/pkg/contracts"
)

// Exit codes
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// options holds the command line. Flags left unset keep the configured value.
type options struct {
	configFile  string
	inDir       string
	outDir      string
	pattern     string
	timezone    string
	metricsFile string
	topN        int
	maxMinutes  float64
	excel       bool
	daily       bool
	parallel    bool
	bom         bool
	version     bool
	set         map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{set: make(map[string]bool)}

	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configFile, "config", "", "path to a YAML config file")
	fs.StringVar(&opts.inDir, "in", "", "directory holding the monthly trip CSV files")
	fs.StringVar(&opts.outDir, "out", "", "directory the summary tables are written to")
	fs.StringVar(&opts.pattern, "pattern", "", "regular expression trip file names must match")
	fs.StringVar(&opts.timezone, "tz", "", "IANA time zone of naive timestamps")
	fs.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")
	fs.IntVar(&opts.topN, "top", 0, "number of start stations ranked per rider type")
	fs.Float64Var(&opts.maxMinutes, "max-minutes", 0, "exclusive upper bound on ride length in minutes")
	fs.BoolVar(&opts.excel, "excel", false, "also write report.xlsx")
	fs.BoolVar(&opts.daily, "daily", false, "also write rides_by_date.csv")
	fs.BoolVar(&opts.parallel, "parallel", true, "build summary tables concurrently")
	fs.BoolVar(&opts.bom, "bom", false, "prefix CSV files with a UTF-8 byte order mark")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// apply overlays explicitly set flags onto cfg
func (o *options) apply(cfg *config.Config) {
	if o.set["in"] {
		cfg.Pipeline.InputDir = o.inDir
	}
	if o.set["out"] {
		cfg.Output.Dir = o.outDir
	}
	if o.set["pattern"] {
		cfg.Pipeline.FilePattern = o.pattern
	}
	if o.set["tz"] {
		cfg.Pipeline.Timezone = o.timezone
	}
	if o.set["metrics-file"] {
		cfg.Telemetry.MetricsFile = o.metricsFile
	}
	if o.set["top"] {
		cfg.Pipeline.TopStations = o.topN
	}
	if o.set["max-minutes"] {
		cfg.Pipeline.MaxRideMinutes = o.maxMinutes
	}
	if o.set["excel"] {
		cfg.Output.Excel = o.excel
	}
	if o.set["daily"] {
		cfg.Pipeline.IncludeDaily = o.daily
	}
	if o.set["parallel"] {
		cfg.Pipeline.ParallelAggregation = o.parallel
	}
	if o.set["bom"] {
		cfg.Output.BOMPrefix = o.bom
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return exitUsage
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return exitOK
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return exitUsage
	}
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Invalid settings: %v\n", err)
		return exitUsage
	}

	paths, err := config.NewPaths("", cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to resolve paths: %v\n", err)
		return exitFailed
	}
	if err := paths.EnsureDirectories(); err != nil {
		fmt.Fprintf(stderr, "Failed to create directories: %v\n", err)
		return exitFailed
	}
	cfg.Pipeline.InputDir = paths.InputDir
	cfg.Output.Dir = paths.OutputDir

	logger, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return exitFailed
	}
	defer infrastructure.CloseLogFile()
	slog.SetDefault(logger)
	paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", slog.String("error", err.Error()))
		return exitFailed
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	tracer, err := operations.NewOperationTracer(providers)
	if err != nil {
		logger.Error("Failed to create pipeline metrics", slog.String("error", err.Error()))
		return exitFailed
	}

	registry, err := operations.NewPipelineRegistry(infrastructure.WithComponent(logger, "pipeline"), tracer.Metrics())
	if err != nil {
		logger.Error("Failed to register pipeline steps", slog.String("error", err.Error()))
		return exitFailed
	}
	manager := operations.NewManager(registry, operations.NewConfig(), tracer, infrastructure.WithComponent(logger, "operations"))

	params, err := operations.ParamsFromConfig(cfg)
	if err != nil {
		logger.Error("Invalid run parameters", slog.String("error", err.Error()))
		return exitUsage
	}

	logger.Info("Starting trip report",
		slog.String("version", contracts.Version),
		slog.String("input_dir", params.InputDir),
		slog.String("output_dir", params.OutputDir),
		slog.String("timezone", params.Location.String()),
		slog.Bool("excel", params.Excel),
		slog.Bool("daily", params.IncludeDaily))

	state, runErr := manager.Run(ctx, operations.OperationRequest{Params: params})

	if err := providers.WriteMetricsFile(cfg.Telemetry.MetricsFile); err != nil {
		logger.Warn("Failed to write metrics file", slog.String("error", err.Error()))
	}

	if runErr != nil {
		switch errors.TypeOf(runErr) {
		case errors.ErrTypeIngest:
			fmt.Fprintf(stderr, "Cannot read trip files: %v\n", runErr)
		case errors.ErrTypeStorage:
			fmt.Fprintf(stderr, "Cannot write report: %v\n", runErr)
		default:
			fmt.Fprintf(stderr, "Trip report failed: %v\n", runErr)
		}
		return exitFailed
	}

	printSummary(stdout, state)
	return exitOK
}

// printSummary writes a short human readable account of the run
func printSummary(w io.Writer, state *operations.OperationState) {
	s := state.Summary
	fmt.Fprintf(w, "Read %d rows from %d file(s)\n", s.RowsLoaded, len(s.Files))
	fmt.Fprintf(w, "Removed: %d duplicate, %d incomplete, %d malformed timestamp, %d non-positive, %d over cap\n",
		s.Duplicates, s.MissingRequired, s.MalformedTimestamps, s.NonPositive, s.OverCap)
	fmt.Fprintf(w, "Retained %d rides (%d without a start station)\n", s.Retained, s.WithoutStation)
	fmt.Fprintf(w, "Wrote %s to %s in %s\n",
		strings.Join(state.Written, ", "), state.Params.OutputDir, state.Duration().Round(time.Millisecond))
}
