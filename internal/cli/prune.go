package cli

import (
	"fmt"
	"time"

	"github.com/pfrederiksen/concert-events/internal/logger"
	"github.com/pfrederiksen/concert-events/internal/storage"
	"github.com/spf13/cobra"
)

var flagPruneAll bool

func newPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete past listings from the catalog",
		Long: `Delete listings older than the RETENTION window from the catalog.
With --all every listing is deleted.`,
		RunE: runPrune,
	}

	cmd.Flags().BoolVar(&flagPruneAll, "all", false, "Delete every listing")

	return cmd
}

func runPrune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := storage.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer store.Close() // nolint:errcheck

	ctx := contextOrBackground(cmd.Context())

	var deleted int64
	if flagPruneAll {
		deleted, err = store.DeleteAll(ctx)
	} else {
		cutoff := time.Now().Add(-cfg.Retention)
		deleted, err = store.DeleteBefore(ctx, cutoff)
	}
	if err != nil {
		return fmt.Errorf("pruning catalog: %w", err)
	}

	logger.Info("Pruned catalog", logger.Fields{"deleted": deleted, "all": flagPruneAll})
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d listings\n", deleted)
	return nil
}
