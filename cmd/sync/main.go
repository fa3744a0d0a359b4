package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matchtv/tvsync/internal/app"
	"github.com/matchtv/tvsync/internal/config"
	"github.com/matchtv/tvsync/internal/observability"
	"github.com/matchtv/tvsync/internal/platform/logging"
	"github.com/matchtv/tvsync/internal/usecase"
)

const dateLayout = "2006-01-02"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		competitionID = flag.String("competition-id", "", "sync a single competition instead of all active ones")
		dateFrom      = flag.String("date-from", "", "only fixtures kicking off on or after this date (YYYY-MM-DD)")
		dateTo        = flag.String("date-to", "", "only fixtures kicking off on or before this date (YYYY-MM-DD)")
		dryRun        = flag.Bool("dry-run", false, "walk the provider without writing anything")
		verbose       = flag.Bool("verbose", false, "debug logging")
		reclassify    = flag.Bool("reclassify", false, "re-run provider keyword mapping over stored broadcasts instead of syncing")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	level := cfg.LogLevel
	if *verbose {
		level = logging.LevelDebug
	}
	logger := logging.NewJSON(level)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	opts := usecase.SyncOptions{
		CompetitionID:      *competitionID,
		DryRun:             *dryRun,
		TVSyncEnabled:      cfg.TVSyncEnabled,
		RequestDelay:       cfg.SportMonksRequestDelay,
		BroadcastRetention: cfg.BroadcastRetention,
	}
	if opts.DateFrom, err = parseDateFlag(*dateFrom, false); err != nil {
		fmt.Fprintf(os.Stderr, "parse --date-from: %v\n", err)
		return 1
	}
	if opts.DateTo, err = parseDateFlag(*dateTo, true); err != nil {
		fmt.Fprintf(os.Stderr, "parse --date-to: %v\n", err)
		return 1
	}
	if !opts.DateFrom.IsZero() && !opts.DateTo.IsZero() && opts.DateTo.Before(opts.DateFrom) {
		fmt.Fprintln(os.Stderr, "--date-to must not be before --date-from")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownUptrace(shutdownCtx)
	}()

	stopPyroscope, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		return 1
	}
	defer func() { _ = stopPyroscope() }()

	application, err := app.NewSyncApp(cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		return 1
	}
	defer func() { _ = application.Close() }()

	if *reclassify {
		result, err := application.Broadcasts.ReclassifyAll(ctx, usecase.ReclassifyAllInput{
			Workers: cfg.ReclassifyWorkers,
			DryRun:  *dryRun,
		})
		if err != nil {
			logger.ErrorContext(ctx, "reclassify failed", "error", err)
			return 1
		}
		logger.InfoContext(ctx, "reclassify finished",
			"fixtures", result.Fixtures,
			"updated", result.Updated,
			"errors", result.Errors,
		)
		return 0
	}

	logger.InfoContext(ctx, "sync starting",
		"competitionID", opts.CompetitionID,
		"dryRun", opts.DryRun,
		"tvSyncEnabled", opts.TVSyncEnabled,
	)

	stats, err := application.Sync.SyncAll(ctx, opts)
	if err != nil {
		logger.ErrorContext(ctx, "sync failed", "error", err)
		return 1
	}

	// Partial failures are reported through counters; only fatal setup
	// errors flip the exit code.
	logger.InfoContext(ctx, "sync finished",
		"processed", stats.Processed,
		"created", stats.Created,
		"updated", stats.Updated,
		"errors", stats.Errors,
		"apiCalls", stats.APICalls,
		"competitionsSynced", stats.CompetitionsSynced,
		"competitionsSkipped", stats.CompetitionsSkipped,
		"broadcastsStored", stats.BroadcastsStored,
	)
	return 0
}

// parseDateFlag reads a YYYY-MM-DD value; the upper bound is pushed to the
// end of its day so --date-to is inclusive.
func parseDateFlag(value string, endOfDay bool) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD, got %q", value)
	}
	if endOfDay {
		parsed = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return parsed.UTC(), nil
}
