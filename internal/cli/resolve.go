package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pfrederiksen/concert-events/internal/event"
	"github.com/pfrederiksen/concert-events/internal/resolve"
	"github.com/spf13/cobra"
)

var (
	flagInput         string
	flagResolveFormat string
)

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Merge already extracted records without fetching or storing",
		Long: `Read source batches as a JSON array of {source_name, source_url, records}
and print the merged catalog. Use --input - to read from stdin.`,
		RunE: runResolve,
	}

	cmd.Flags().StringVar(&flagInput, "input", "-", "JSON file with source batches, or - for stdin")
	cmd.Flags().StringVar(&flagResolveFormat, "format", "text", "Output format: text, json, or ics")

	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(flagResolveFormat, FormatText, FormatJSON, FormatICS)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	batches, err := readBatches(cmd.InOrStdin(), flagInput)
	if err != nil {
		return err
	}

	tables, err := loadTables(cfg)
	if err != nil {
		return err
	}
	resolver, err := resolve.New(tables)
	if err != nil {
		return fmt.Errorf("building resolver: %w", err)
	}

	result := resolver.Resolve(batches)
	concerts := result.Records
	sortConcerts(concerts, SortByDate)

	if format == FormatText {
		s := result.Stats
		fmt.Fprintf(cmd.OutOrStdout(), "Resolved %d records into %d listings (%d exact, %d fuzzy, %d word matches)\n",
			s.Input, s.Canonical, s.Exact, s.Fuzzy, s.Word)
	}

	return WriteOutput(cmd.OutOrStdout(), &OutputResult{
		CheckedAt:  time.Now().UTC(),
		Concerts:   concerts,
		EventCount: len(concerts),
		ShowAll:    true,
	}, format, flagVerbose)
}

// readBatches decodes source batches from path, or from stdin when path is "-"
func readBatches(stdin io.Reader, path string) ([]event.SourceBatch, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening input: %w", err)
		}
		defer f.Close() // nolint:errcheck
		r = f
	}

	var batches []event.SourceBatch
	if err := json.NewDecoder(r).Decode(&batches); err != nil {
		return nil, fmt.Errorf("decoding input: %w", err)
	}
	return batches, nil
}
