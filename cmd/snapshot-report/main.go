// Command snapshot-report computes a market snapshot for every comparables
// file given on the command line and writes the reports to a directory.
// Directory arguments are expanded to the .csv and .xlsx files they hold.
//
//	snapshot-report -vehicle-brand Toyota -vehicle-model Corolla -vehicle-year 2020 \
//	    -out reports -workers 4 corolla_cdmx.csv corolla_gdl.xlsx
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"carpulse/internal/config"
	"carpulse/internal/exporter"
	"carpulse/internal/infrastructure"
	"carpulse/internal/listings"
	"carpulse/internal/middleware"
	"carpulse/internal/pricing"
	api "carpulse/pkg/contracts/api/v1"
)

// SummaryFile is written next to the reports when -summary is set
const SummaryFile = "summary.csv"

type options struct {
	vehicle  api.Vehicle
	outDir   string
	workers  int
	summary  bool
	logLevel string
	files    []string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("snapshot-report", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.vehicle.Brand, "vehicle-brand", "", "brand of the priced vehicle (required)")
	fs.StringVar(&opts.vehicle.Model, "vehicle-model", "", "model of the priced vehicle")
	fs.IntVar(&opts.vehicle.ModelYear, "vehicle-year", 0, "model year of the priced vehicle (required)")
	fs.StringVar(&opts.vehicle.Trim, "vehicle-trim", "", "trim of the priced vehicle")
	fs.StringVar(&opts.outDir, "out", config.DefaultReportDir, "output directory")
	fs.IntVar(&opts.workers, "workers", config.DefaultReportWorkers, "files processed concurrently")
	fs.BoolVar(&opts.summary, "summary", false, "also write "+SummaryFile)
	fs.StringVar(&opts.logLevel, "log-level", config.DefaultLogLevel, "debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	files, err := listings.ExpandPaths(fs.Args())
	if err != nil {
		return opts, err
	}
	opts.files = files

	if len(opts.files) == 0 {
		return opts, errors.New("at least one comparables file is required")
	}
	if opts.workers < 1 {
		return opts, fmt.Errorf("workers must be at least 1, got %d", opts.workers)
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := infrastructure.NewLoggerWithWriter(os.Stderr, infrastructure.ParseLogLevel(opts.logLevel))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	engine, err := pricing.NewEngine(cfg.Pricing.Params(), logger)
	if err != nil {
		logger.Error("Failed to create pricing engine", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := run(ctx, engine, opts, logger); err != nil {
		logger.Error("Report generation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run processes every file with at most opts.workers in flight. A failing
// file does not stop the others; all failures are returned joined.
func run(ctx context.Context, engine *pricing.Engine, opts options, logger *slog.Logger) ([]exporter.Report, error) {
	if err := middleware.NewValidator(logger).ValidateStruct(opts.vehicle); err != nil {
		return nil, fmt.Errorf("invalid vehicle: %w", err)
	}
	seen := make(map[string]string, len(opts.files))
	for _, path := range opts.files {
		name := exporter.ReportName(path)
		if other, ok := seen[name]; ok {
			return nil, fmt.Errorf("%s and %s would both write report %q", other, path, name)
		}
		seen[name] = path
	}

	vehicle := opts.vehicle.Descriptor()
	exp := exporter.NewSnapshotExporter(opts.outDir, logger)

	reports := make([]exporter.Report, len(opts.files))
	failures := make([]error, len(opts.files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers)

	for i, path := range opts.files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report, err := processFile(engine, exp, path, vehicle, logger)
			if err != nil {
				logger.Error("file failed", slog.String("file", path), slog.String("error", err.Error()))
				failures[i] = err
				return nil
			}
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	done := make([]exporter.Report, 0, len(reports))
	for i, r := range reports {
		if failures[i] == nil {
			done = append(done, r)
		}
	}

	if opts.summary && len(done) > 0 {
		if err := exp.NewSummaryExporter().Export(SummaryFile, done); err != nil {
			return done, fmt.Errorf("write summary: %w", err)
		}
	}

	logger.Info("reports complete",
		slog.Int("files", len(opts.files)),
		slog.Int("written", len(done)),
		slog.String("out", opts.outDir))

	return done, errors.Join(failures...)
}

func processFile(engine *pricing.Engine, exp *exporter.SnapshotExporter, path string, vehicle pricing.VehicleDescriptor, logger *slog.Logger) (exporter.Report, error) {
	result, err := listings.ReadFile(path)
	if err != nil {
		return exporter.Report{}, err
	}
	for _, skipped := range result.Skipped {
		logger.Warn("row skipped", slog.String("file", path), slog.String("reason", skipped.Error()))
	}

	snapshot := engine.ComputeMarketSnapshot(result.Listings, vehicle)
	report := exporter.NewReport(path, vehicle, snapshot, len(result.Skipped), time.Now())
	if _, err := exp.Export(report); err != nil {
		return exporter.Report{}, err
	}
	return report, nil
}
