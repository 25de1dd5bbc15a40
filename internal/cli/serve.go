package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pfrederiksen/concert-events/internal/httpapi"
	"github.com/pfrederiksen/concert-events/internal/logger"
	"github.com/pfrederiksen/concert-events/internal/metrics"
	"github.com/pfrederiksen/concert-events/internal/storage"
	"github.com/spf13/cobra"
)

var flagAddr string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog, calendar feed and cron endpoint over HTTP",
		RunE:  runServe,
	}

	cmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default HTTP_ADDR)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagAddr != "" {
		cfg.HTTPAddr = flagAddr
	}
	if cfg.CronSecret == "" {
		logger.Warn("CRON_SECRET not set, the aggregate endpoint accepts any caller", nil)
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

	server := httpapi.NewServer(store, runner, m, httpapi.Options{
		Addr:       cfg.HTTPAddr,
		CronSecret: cfg.CronSecret,
	})
	return server.Start(ctx)
}
