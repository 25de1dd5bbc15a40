package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/concert-events/internal/config"
	"github.com/pfrederiksen/concert-events/internal/enrich"
	"github.com/pfrederiksen/concert-events/internal/extract"
	"github.com/pfrederiksen/concert-events/internal/logger"
	"github.com/pfrederiksen/concert-events/internal/metrics"
	"github.com/pfrederiksen/concert-events/internal/pipeline"
	"github.com/pfrederiksen/concert-events/internal/resolve"
	"github.com/pfrederiksen/concert-events/internal/source"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess   = 0
	ExitError     = 1
	ExitNewEvents = 2
)

var (
	flagEnvFile string
	flagVerbose bool
)

// ExitCodeError ends the process with Code without printing an error
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "concert-events",
		Short: "Aggregate NYC classical concert listings",
		Long: `A CLI tool that collects classical concert listings from New York venues
and review sites, merges duplicates into one catalog, and reports new listings.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "Optional .env file to load")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(
		newAggregateCmd(),
		newResolveCmd(),
		newListCmd(),
		newPruneCmd(),
		newServeCmd(),
	)
	return cmd
}

// loadConfig reads configuration and sets up logging
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagEnvFile)
	if err != nil {
		return nil, err
	}
	if flagVerbose {
		cfg.LogLevel = string(logger.LevelDebug)
	}
	if err := logger.Configure(cfg.Environment, cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadTables returns the resolution tables, overlaid from TABLES_FILE if set
func loadTables(cfg *config.Config) (resolve.Tables, error) {
	if cfg.TablesFile == "" {
		return resolve.DefaultTables(), nil
	}
	tables, err := resolve.LoadTables(cfg.TablesFile)
	if err != nil {
		return resolve.Tables{}, fmt.Errorf("loading tables: %w", err)
	}
	return tables, nil
}

// newRunner wires sources, extraction, resolution and enrichment
func newRunner(cfg *config.Config, store pipeline.Store, m *metrics.Metrics) (*pipeline.Runner, error) {
	tables, err := loadTables(cfg)
	if err != nil {
		return nil, err
	}
	resolver, err := resolve.New(tables)
	if err != nil {
		return nil, fmt.Errorf("building resolver: %w", err)
	}

	sources := source.Default(source.Options{
		Client:        source.NewClient(cfg.FetchTimeout),
		JuilcalURL:    cfg.JuilcalURL,
		JuilcalAPIKey: cfg.JuilcalAPIKey,
	})

	var extractor extract.Extractor
	if cfg.ExtractionEnabled() {
		client, err := extract.New(extract.Options{
			URL:       cfg.ExtractorURL,
			APIKey:    cfg.ExtractorAPIKey,
			Model:     cfg.ExtractorModel,
			MaxTokens: cfg.ExtractorMaxTokens,
			Timeout:   cfg.ExtractorTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("building extractor: %w", err)
		}
		extractor = client
	} else {
		logger.Warn("EXTRACTOR_API_KEY not set, only structured sources will run", nil)
	}

	return pipeline.New(pipeline.Options{
		Sources:     sources,
		Extractor:   extractor,
		Resolver:    resolver,
		Enricher:    enrich.New(source.NewClient(cfg.EnrichTimeout), cfg.EnrichConcurrency, cfg.EnrichTimeout),
		Store:       store,
		Metrics:     m,
		Concurrency: cfg.FetchConcurrency,
		Retention:   cfg.Retention,
	}), nil
}

// startOfToday is the local calendar day now
func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// Execute runs the CLI
func Execute() {
	err := NewRootCmd().Execute()
	if err == nil {
		os.Exit(ExitSuccess)
	}

	var exit *ExitCodeError
	if errors.As(err, &exit) {
		os.Exit(exit.Code)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(ExitError)
}
