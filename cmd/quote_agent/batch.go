package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/quote-pipeline/internal/config"
	"github.com/jonathan/quote-pipeline/internal/observability"
)

var batchCommand = &cobra.Command{
	Use:   "batch <request.json>...",
	Short: "Build quotes for many request files in parallel",
	Long: `Runs the quote pipeline for every request file and writes <name>.quote.json files into --out-dir.

A failing request does not stop the others; the command exits non-zero if any request failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatchCmd,
}

var (
	batchConfigPath  string
	batchOutDir      string
	batchConcurrency int
	batchAutoFix     bool
	batchCap         bool
	batchDate        string
	batchLogLevel    string
)

func init() {
	batchCommand.Flags().StringVar(&batchConfigPath, "config", "", "Path to config file (values can be overridden by other flags)")
	batchCommand.Flags().StringVarP(&batchOutDir, "out-dir", "o", "quotes", "Directory for the generated quotes")
	batchCommand.Flags().IntVarP(&batchConcurrency, "concurrency", "c", 0, "Pipelines to run at once (defaults to 4)")
	batchCommand.Flags().BoolVar(&batchAutoFix, "autofix", false, "Add missing mandatory items and re-validate once")
	batchCommand.Flags().BoolVar(&batchCap, "cap-deduction", false, "Limit the ROT/RUT deduction to the statutory yearly cap")
	batchCommand.Flags().StringVar(&batchDate, "date", "", "Quote date as YYYY-MM-DD (defaults to today)")
	batchCommand.Flags().StringVar(&batchLogLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(batchCommand)
}

// batchEntry is the outcome of one request file
type batchEntry struct {
	Request  string
	Output   string
	QuoteID  string
	Customer float64
	Blocking bool
	Err      error
}

func runBatchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(batchConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = batchConcurrency
	}
	if cmd.Flags().Changed("autofix") {
		cfg.AutoFix = batchAutoFix
	}
	if cmd.Flags().Changed("cap-deduction") {
		cfg.CapDeduction = batchCap
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = batchLogLevel
	}
	cfg = finishSettings(cfg)

	now, err := parseDate(batchDate)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	entries, err := runBatch(cmd.Context(), args, batchOutDir, now, cfg, logger)
	if err != nil {
		return err
	}
	return reportBatch(cmd.OutOrStdout(), entries)
}

// runBatch builds one quote per request file with at most cfg.Concurrency pipelines in flight.
// Entries keep the order of paths. Per-file failures are recorded, not returned.
func runBatch(ctx context.Context, paths []string, outDir string, now time.Time, cfg config.Config, logger *zap.Logger) ([]batchEntry, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	entries := make([]batchEntry, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Concurrency, 1))

	for i, path := range paths {
		g.Go(func() error {
			entry := batchEntry{Request: path, Output: outputPath(outDir, path)}
			out, err := produceQuote(gctx, quoteInput{RequestPath: path, AutoFix: cfg.AutoFix, Now: now}, cfg, logger)
			if err == nil {
				err = writeJSON(nil, entry.Output, out)
			}
			if err != nil {
				logger.Warn("batch request failed", zap.String("request", path), zap.Error(err))
				entry.Err = err
			} else {
				entry.QuoteID = out.Quote.ID
				entry.Customer = out.Quote.Summary.CustomerPays
				entry.Blocking = out.Blocking
			}
			entries[i] = entry
			// a canceled parent stops the remaining requests
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return entries, err
	}
	return entries, nil
}

// outputPath maps requests/a.json to <outDir>/a.quote.json
func outputPath(outDir, requestPath string) string {
	base := strings.TrimSuffix(filepath.Base(requestPath), filepath.Ext(requestPath))
	return filepath.Join(outDir, base+".quote.json")
}

func reportBatch(out io.Writer, entries []batchEntry) error {
	failed := 0
	for _, e := range entries {
		switch {
		case e.Err != nil:
			failed++
			fmt.Fprintf(out, "FAIL     %s: %v\n", e.Request, e.Err)
		case e.Blocking:
			fmt.Fprintf(out, "BLOCKED  %s -> %s (%s)\n", e.Request, e.Output, e.QuoteID)
		default:
			fmt.Fprintf(out, "OK       %s -> %s (%.0f kr)\n", e.Request, e.Output, e.Customer)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d requests failed", failed, len(entries))
	}
	return nil
}
