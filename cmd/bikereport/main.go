// Command bikereport writes every dashboard summary for a date window to
// disk, one file per summary plus a combined workbook.
//
//	bikereport -dataset data/hour.csv -start 2011-06-01 -end 2011-08-31 -out reports -format xlsx
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"

	"bikepulse/internal/config"
	"bikepulse/internal/dataprocessing"
	"bikepulse/internal/exporter"
	"bikepulse/internal/infrastructure"
	"bikepulse/internal/services"
	"bikepulse/internal/validation"
	v1 "bikepulse/pkg/contracts/api/v1"
)

// workbookName is the combined workbook written next to the summary files
const workbookName = "dashboard"

// maxParallelWrites bounds concurrent file writes
const maxParallelWrites = 4

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "bikereport: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configFile string
	dataset    string
	sheet      string
	start      string
	end        string
	outDir     string
	format     string
	workbook   bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("bikereport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configFile, "config", "", "YAML config file (defaults to config.yaml lookup)")
	fs.StringVar(&opts.dataset, "dataset", "", "dataset file, .csv or .xlsx (overrides config)")
	fs.StringVar(&opts.sheet, "sheet", "", "worksheet of an .xlsx dataset")
	fs.StringVar(&opts.start, "start", "", "first day, YYYY-MM-DD (defaults to the dataset start)")
	fs.StringVar(&opts.end, "end", "", "last day, YYYY-MM-DD (defaults to the dataset end)")
	fs.StringVar(&opts.outDir, "out", "reports", "output directory")
	fs.StringVar(&opts.format, "format", string(exporter.FormatCSV), "summary file format: csv or xlsx")
	fs.BoolVar(&opts.workbook, "workbook", true, "also write every summary into "+workbookName+".xlsx")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	if opts.configFile != "" {
		os.Setenv(config.ConfigFileEnv, opts.configFile)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.dataset != "" {
		cfg.Dataset.Path = opts.dataset
	}
	if opts.sheet != "" {
		cfg.Dataset.Sheet = opts.sheet
	}

	logger := infrastructure.WithComponent(infrastructure.NewLogger(stderr, cfg.Logging), "bikereport")
	ctx = infrastructure.EnsureTraceID(ctx)

	format, err := exporter.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	req := v1.DashboardRequest{Start: opts.start, End: opts.end}
	if err := validation.NewRequestValidator().Struct(req); err != nil {
		return fmt.Errorf("invalid date window: %w", err)
	}

	fv := validation.NewFileValidator(logger)
	if err := fv.ValidateDatasetFile(cfg.Dataset.Path); err != nil {
		return err
	}
	if err := fv.ValidateOutputDirectory(opts.outDir); err != nil {
		return err
	}

	table, err := dataprocessing.LoadFile(ctx, cfg.Dataset.Path, dataprocessing.LoadOptions{
		Sheet:  cfg.Dataset.Sheet,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	service := services.NewDashboardService(table, nil, logger)
	bounds, err := service.Bounds()
	if err != nil {
		return err
	}
	rng, err := req.Resolve(bounds)
	if err != nil {
		return err
	}

	sheets, err := service.Sheets(ctx, rng)
	if err != nil {
		return err
	}

	written, err := writeReports(ctx, exporter.NewFileWriter(opts.outDir, logger), sheets, format, opts.workbook)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "Report complete",
		slog.String("range", rng.String()),
		slog.Int("files", len(written)),
		slog.String("out", opts.outDir))
	for _, path := range written {
		fmt.Fprintln(stdout, path)
	}
	return nil
}

// writeReports writes each sheet as its own file, plus the optional workbook,
// concurrently. It returns the written paths sorted.
func writeReports(ctx context.Context, writer *exporter.FileWriter, sheets []exporter.Sheet, format exporter.Format, workbook bool) ([]string, error) {
	var (
		mu      sync.Mutex
		written []string
	)
	record := func(path string) {
		mu.Lock()
		written = append(written, path)
		mu.Unlock()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelWrites)

	for _, sheet := range sheets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, err := writer.WriteFile(sheet.Name, sheet.Table, format)
			if err != nil {
				return fmt.Errorf("failed to write %s: %w", sheet.Name, err)
			}
			record(path)
			return nil
		})
	}

	if workbook {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, err := writer.WriteWorkbook(workbookName, sheets...)
			if err != nil {
				return fmt.Errorf("failed to write workbook: %w", err)
			}
			record(path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(written)
	return written, nil
}
