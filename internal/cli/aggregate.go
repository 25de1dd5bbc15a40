package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pfrederiksen/concert-events/internal/logger"
	"github.com/pfrederiksen/concert-events/internal/metrics"
	"github.com/pfrederiksen/concert-events/internal/notifier"
	"github.com/pfrederiksen/concert-events/internal/storage"
	"github.com/spf13/cobra"
)

var (
	flagDryRun      bool
	flagAggFormat   string
	flagExitCode    bool
	flagMetricsFile string
	flagNotify      []string
)

func newAggregateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Fetch every source, merge duplicates and update the catalog",
		Long: `Fetch listings from every source, resolve duplicates into one catalog,
enrich prices from detail pages and store the result. Reports listings that
were not in the catalog before.`,
		RunE: runAggregate,
	}

	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Report without updating the catalog")
	cmd.Flags().StringVar(&flagAggFormat, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&flagExitCode, "exit-code", false, "Exit with status 2 when new listings were found")
	cmd.Flags().StringVar(&flagMetricsFile, "metrics-file", "", "Write run metrics to this node exporter textfile")
	cmd.Flags().StringSliceVar(&flagNotify, "notify", nil, "Announce new listings: twitter, telegram (printed only with --dry-run)")

	return cmd
}

func runAggregate(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(flagAggFormat, FormatText, FormatJSON)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer store.Close() // nolint:errcheck

	m := metrics.New()
	runner, err := newRunner(cfg, store, m)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := runner.Run(ctx, flagDryRun)
	if err != nil {
		return fmt.Errorf("aggregating: %w", err)
	}

	if report.HasErrors() {
		logger.Warn("Aggregation finished with errors", logger.Fields{"errors": len(report.Errors)})
	}

	if flagMetricsFile != "" {
		if err := m.WriteToTextfile(flagMetricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	if len(flagNotify) > 0 && report.New > 0 {
		notifiers, err := buildNotifiers(cfg, flagNotify, flagDryRun, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		if err := notify(ctx, notifiers, notifier.Select(report.Diff.NewEvents, time.Now(), cfg.NotifyMax)); err != nil {
			return err
		}
	}

	result := &OutputResult{
		CheckedAt:  time.Now().UTC(),
		Concerts:   report.Diff.NewEvents,
		EventCount: len(report.Diff.NewEvents),
		ByVenue:    report.Diff.ByVenue,
		Report:     report,
	}
	if err := WriteOutput(cmd.OutOrStdout(), result, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if flagExitCode && report.New > 0 {
		return &ExitCodeError{Code: ExitNewEvents}
	}
	return nil
}

// contextOrBackground guards commands executed without a context
func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
