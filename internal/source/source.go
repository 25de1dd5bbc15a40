package source

import (
	"context"
	"time"

	"github.com/pfrederiksen/concert-events/internal/event"
)

// Source is one listings provider
type Source interface {
	// Name is the human-readable source name recorded as provenance
	Name() string
	// URL is the source's base URL, the fallback link for its listings
	URL() string
}

// PageFetcher is a source whose pages go through the extraction service
type PageFetcher interface {
	Source
	// Fetch returns cleaned page content. Empty content means no listings.
	Fetch(ctx context.Context) (string, error)
}

// DirectExtractor is a source that publishes structured listings
type DirectExtractor interface {
	Source
	Extract(ctx context.Context) ([]*event.Record, error)
}

// Options configures the default source set
type Options struct {
	Client        *Client
	JuilcalURL    string
	JuilcalAPIKey string
	// Now anchors month-based calendars; defaults to time.Now
	Now func() time.Time
}

// Default returns the aggregated sources in processing order. Order matters
// to resolution: on a same-kind tie the earlier source's record is kept.
func Default(opts Options) []Source {
	if opts.Client == nil {
		opts.Client = NewClient(Timeout)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return []Source{
		NewNYCR(opts.Client),
		NewTrinity(opts.Client),
		NewKaufman(opts.Client, opts.Now),
		NewJuilliard(opts.Client, opts.JuilcalURL, opts.JuilcalAPIKey, opts.Now),
		NewMSM(opts.Client, opts.Now),
	}
}

// monthStart returns the first day of the month offset months after now
func monthStart(now time.Time, offset int) time.Time {
	return time.Date(now.Year(), now.Month()+time.Month(offset), 1, 0, 0, 0, 0, now.Location())
}
