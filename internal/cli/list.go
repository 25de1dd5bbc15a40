package cli

import (
	"fmt"
	"time"

	"github.com/pfrederiksen/concert-events/internal/filter"
	"github.com/pfrederiksen/concert-events/internal/logger"
	"github.com/pfrederiksen/concert-events/internal/storage"
	"github.com/spf13/cobra"
)

var (
	flagRange      string
	flagFrom       string
	flagTo         string
	flagMaxPrice   string
	flagTags       string
	flagVenue      []string
	flagWeekends   bool
	flagAll        bool
	flagSort       string
	flagListFormat string
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List listings from the stored catalog",
		Long: `List listings from the stored catalog. By default only listings from today
onwards are shown; use --all to include past listings.

Examples:
  concert-events list --range "Nov 1-15"
  concert-events list --max-price 20 --tags orchestral,free
  concert-events list --venue "Merkin" --format ics > merkin.ics`,
		RunE: runList,
	}

	cmd.Flags().StringVar(&flagRange, "range", "", `Date range, e.g. "Mar 1-15", "March 1 - April 15", "March"`)
	cmd.Flags().StringVar(&flagFrom, "from", "", "First day, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&flagTo, "to", "", "Last day, YYYY-MM-DD")
	cmd.Flags().StringVar(&flagMaxPrice, "max-price", "", "Maximum price in dollars")
	cmd.Flags().StringVar(&flagTags, "tags", "", "Comma-separated tags, any of which must match")
	cmd.Flags().StringSliceVar(&flagVenue, "venue", nil, "Venue substring (repeatable)")
	cmd.Flags().BoolVar(&flagWeekends, "weekends", false, "Only Saturday and Sunday listings")
	cmd.Flags().BoolVar(&flagAll, "all", false, "Include past listings")
	cmd.Flags().StringVar(&flagSort, "sort", "date", "Sort order: date, venue, or title")
	cmd.Flags().StringVar(&flagListFormat, "format", "text", "Output format: text, json, or ics")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(flagListFormat, FormatText, FormatJSON, FormatICS)
	if err != nil {
		return err
	}
	order, err := parseSortOrder(flagSort)
	if err != nil {
		return err
	}

	f, err := buildFilter(startOfToday())
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

	logger.Debug("Listing catalog", logger.Fields{"filter": f.String()})
	concerts, err := store.List(contextOrBackground(cmd.Context()), f)
	if err != nil {
		return fmt.Errorf("listing catalog: %w", err)
	}
	sortConcerts(concerts, order)

	return WriteOutput(cmd.OutOrStdout(), &OutputResult{
		CheckedAt:  time.Now().UTC(),
		Concerts:   concerts,
		EventCount: len(concerts),
		ShowAll:    true,
	}, format, flagVerbose)
}

// buildFilter turns the list flags into a catalog filter. --range wins over
// --from and --to; without any of them the filter starts at today.
func buildFilter(today time.Time) (*filter.Filter, error) {
	f := filter.NewFilter()

	switch {
	case flagRange != "":
		from, to, err := filter.ParseDateRange(flagRange)
		if err != nil {
			return nil, fmt.Errorf("invalid --range: %w", err)
		}
		f.DateFrom, f.DateTo = from, to
	default:
		if flagFrom != "" {
			day, err := filter.ParseDay(flagFrom)
			if err != nil {
				return nil, fmt.Errorf("invalid --from: %w", err)
			}
			f.DateFrom = day
		} else if !flagAll {
			f.DateFrom = &today
		}
		if flagTo != "" {
			day, err := filter.ParseDay(flagTo)
			if err != nil {
				return nil, fmt.Errorf("invalid --to: %w", err)
			}
			f.DateTo = day
		}
	}

	if flagMaxPrice != "" {
		cents, err := filter.ParsePrice(flagMaxPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid --max-price: %w", err)
		}
		f.MaxPriceCents = &cents
	}

	if tags := filter.ParseTags(flagTags); len(tags) > 0 {
		f.Tags = tags
	}
	if len(flagVenue) > 0 {
		f.Venues = flagVenue
	}
	f.WeekendsOnly = flagWeekends
	return f, nil
}

func parseSortOrder(value string) (SortOrder, error) {
	switch SortOrder(value) {
	case SortByDate, SortByVenue, SortByTitle:
		return SortOrder(value), nil
	default:
		return "", fmt.Errorf("invalid sort order: %s (must be 'date', 'venue', or 'title')", value)
	}
}
