package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pfrederiksen/concert-events/internal/calendar"
	"github.com/pfrederiksen/concert-events/internal/event"
	"github.com/pfrederiksen/concert-events/internal/pipeline"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatICS  OutputFormat = "ics"
)

const calendarName = "NYC Concerts"

// OutputResult contains data to be output
type OutputResult struct {
	CheckedAt  time.Time                     `json:"checked_at"`
	Concerts   []*event.Canonical            `json:"concerts"`
	EventCount int                           `json:"event_count"`
	ByVenue    map[string][]*event.Canonical `json:"by_venue,omitempty"`
	ShowAll    bool                          `json:"show_all,omitempty"`
	Report     *pipeline.Report              `json:"report,omitempty"`
}

// parseFormat validates a --format value against the allowed formats
func parseFormat(value string, allowed ...OutputFormat) (OutputFormat, error) {
	for _, f := range allowed {
		if OutputFormat(value) == f {
			return f, nil
		}
	}
	names := make([]string, len(allowed))
	for i, f := range allowed {
		names[i] = "'" + string(f) + "'"
	}
	return "", fmt.Errorf("invalid format: %s (must be one of %v)", value, names)
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	case FormatICS:
		_, err := io.WriteString(w, calendar.GenerateBulkICS(result.Concerts, calendarName))
		return err
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if result.Report != nil {
		writeReport(w, result.Report)
	}

	// Determine labels based on ShowAll mode
	eventLabel := "new"
	eventPrefix := "NEW"
	if result.ShowAll {
		eventLabel = "listings"
		eventPrefix = ""
	}

	if result.EventCount == 0 {
		if result.ShowAll {
			fmt.Fprintln(w, "No listings found.")
		} else {
			fmt.Fprintln(w, "No new listings found.")
		}
		return nil
	}

	if len(result.ByVenue) > 0 {
		venues := make([]string, 0, len(result.ByVenue))
		for venue := range result.ByVenue {
			venues = append(venues, venue)
		}
		sort.Strings(venues)

		for _, venue := range venues {
			concerts := result.ByVenue[venue]
			if len(concerts) == 0 {
				continue
			}
			fmt.Fprintf(w, "\n%s (%d %s):\n", venue, len(concerts), eventLabel)
			for _, c := range concerts {
				writeConcert(w, "  ", eventPrefix, c, false, verbose)
			}
		}
		fmt.Fprintf(w, "\nTotal: %d %s across %d venues\n", result.EventCount, eventLabel, len(result.ByVenue))
		return nil
	}

	for _, c := range result.Concerts {
		writeConcert(w, "", eventPrefix, c, true, verbose)
	}
	fmt.Fprintf(w, "\nTotal: %d %s\n", result.EventCount, eventLabel)
	return nil
}

func writeConcert(w io.Writer, indent, prefix string, c *event.Canonical, withVenue, verbose bool) {
	line := fmt.Sprintf("%s  %s", event.FormatDateNice(c.Date), c.Title)
	if withVenue {
		line += " @ " + c.Venue
	}
	if c.Price != "" {
		line += " (" + c.Price + ")"
	}
	if prefix != "" {
		line = prefix + ": " + line
	}
	fmt.Fprintf(w, "%s%s\n", indent, line)

	if !verbose {
		return
	}
	detail := indent + "     "
	fmt.Fprintf(w, "%sID: %s\n", detail, c.ID)
	if text := c.Performers.Text(); text != "" {
		fmt.Fprintf(w, "%sPerformers: %s\n", detail, text)
	}
	if c.Program != "" {
		fmt.Fprintf(w, "%sProgram: %s\n", detail, c.Program)
	}
	if len(c.Tags) > 0 {
		fmt.Fprintf(w, "%sTags: %v\n", detail, c.Tags)
	}
	if c.SourceURL != "" {
		fmt.Fprintf(w, "%sURL: %s\n", detail, c.SourceURL)
	}
	if c.TicketURL != "" {
		fmt.Fprintf(w, "%sTickets: %s\n", detail, c.TicketURL)
	}
	fmt.Fprintf(w, "%sSource: %s\n", detail, c.SourceName)
}

// writeReport prints per-source counts and failures of an aggregation run
func writeReport(w io.Writer, r *pipeline.Report) {
	fmt.Fprintln(w, "Sources:")
	for _, s := range r.Sources {
		fmt.Fprintf(w, "  %s: %d\n", s.Name, s.Count)
	}
	fmt.Fprintf(w, "Resolved %d records into %d listings (%d exact, %d fuzzy, %d word matches)\n",
		r.Stats.Input, r.Stats.Canonical, r.Stats.Exact, r.Stats.Fuzzy, r.Stats.Word)
	if r.Enriched > 0 {
		fmt.Fprintf(w, "Enriched %d listings from detail pages\n", r.Enriched)
	}
	if r.DryRun {
		fmt.Fprintln(w, "Dry run: catalog not updated")
	}
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  %s (%s): %v\n", e.Source, e.Stage, e.Err)
		}
	}
}
