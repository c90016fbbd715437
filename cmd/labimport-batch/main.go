package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/labreport-import/internal/common"
	"github.com/joseph-ayodele/labreport-import/internal/core/async"
	"github.com/joseph-ayodele/labreport-import/internal/core/pipeline"
	"github.com/joseph-ayodele/labreport-import/internal/export"
	"github.com/joseph-ayodele/labreport-import/internal/ingest"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir        = flag.String("dir", "", "directory to import lab reports from (required)")
		out        = flag.String("out", "", "output XLSX file path (optional, defaults to <dir>/../lab-results.xlsx)")
		workers    = flag.Int("workers", 0, "parallel extractions (defaults to BATCH_WORKERS)")
		watch      = flag.Bool("watch", false, "keep running and import new reports as they appear")
		skipHidden = flag.Bool("skip-hidden", true, "skip hidden files and directories")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(filepath.Clean(*dir)), "lab-results.xlsx")
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		printError("Warning: failed to load .env: %v\n", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *workers > 0 {
		cfg.Batch.Workers = *workers
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		mu   sync.Mutex
		rows []export.Row
	)
	queue := async.NewProcessorQueue(pipeline.NewFromConfig(cfg, logger), logger,
		async.WithWorkers(cfg.Batch.Workers),
		async.WithProcessTimeout(cfg.Extract.Timeout),
		async.WithResultHandler(func(r async.JobResult) {
			row := export.Row{Path: r.Job.Path, Result: r.Result}
			if r.Err != nil {
				row.Err = r.Err.Error()
			}
			mu.Lock()
			rows = append(rows, row)
			mu.Unlock()
		}),
	)

	if *watch {
		events, errs, err := ingest.Watch(ctx, ingest.WatchConfig{
			Roots:       []string{*dir},
			InitialScan: true,
			Debounce:    2 * time.Second,
			SkipHidden:  *skipHidden,
		}, logger)
		if err != nil {
			logger.Error("watch failed", "dir", *dir, "error", err)
			os.Exit(1)
		}
		logger.Info("watching for reports", "dir", *dir)
		go func() {
			for err := range errs {
				logger.Warn("watch error", "error", err)
			}
		}()
		for path := range events {
			if err := queue.Enqueue(ctx, async.Job{Path: path, Label: filepath.Base(path)}); err != nil {
				logger.Warn("enqueue failed", "path", path, "error", err)
			}
		}
	} else {
		paths, skipped, stats, err := ingest.ScanDirectory(*dir, *skipHidden)
		if err != nil {
			logger.Error("scan failed", "dir", *dir, "error", err)
			os.Exit(1)
		}
		for _, s := range skipped {
			logger.Warn("skipped entry", "path", s.Path, "error", s.Err)
		}
		logger.Info("scan complete", "scanned", stats.Scanned, "matched", stats.Matched, "failed", stats.Failed)
		for _, p := range paths {
			if err := queue.Enqueue(ctx, async.Job{Path: p, Label: filepath.Base(p)}); err != nil {
				logger.Warn("enqueue failed", "path", p, "error", err)
				break
			}
		}
	}

	// after an interrupt, give in-flight reports a bounded grace period
	drainCtx := context.Background()
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		drainCtx, cancel = context.WithTimeout(drainCtx, cfg.Extract.Timeout)
		defer cancel()
	}
	queue.Shutdown(drainCtx)

	mu.Lock()
	defer mu.Unlock()
	sort.Slice(rows, func(i, j int) bool { return rows[i].Path < rows[j].Path })
	if err := export.NewService(logger).WriteResultsXLSX(context.Background(), *out, rows); err != nil {
		logger.Error("export failed", "out", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("batch complete", "reports", len(rows), "out", *out)
}
