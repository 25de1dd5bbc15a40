package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/concert-events/internal/event"
)

// Interval is the pause between two posts to the same channel
const Interval = 2 * time.Second

// Notifier defines the interface for posting new listing announcements
type Notifier interface {
	// Name identifies the channel in logs and errors
	Name() string
	// Notify posts one message per listing
	Notify(ctx context.Context, concerts []*event.Canonical) error
}

// Select keeps listings that have not happened yet as of now, at most max
// of them in the given order. max <= 0 selects none.
func Select(concerts []*event.Canonical, now time.Time, max int) []*event.Canonical {
	var selected []*event.Canonical
	for _, c := range concerts {
		if len(selected) >= max {
			break
		}
		if c.Date.IsUpcoming(now) {
			selected = append(selected, c)
		}
	}
	return selected
}

// summaryLines renders the facts shared by every channel
func summaryLines(c *event.Canonical) []string {
	lines := []string{c.Title}
	if when := event.FormatDateNice(c.Date); when != "" {
		lines = append(lines, when)
	}
	if c.Venue != "" {
		lines = append(lines, c.Venue)
	}
	if c.Price != "" && c.Price != event.PricePlaceholder {
		lines = append(lines, c.Price)
	}
	return lines
}

// link prefers the ticket page over the listing page
func link(c *event.Canonical) string {
	if c.TicketURL != "" {
		return c.TicketURL
	}
	return c.SourceURL
}

// wait pauses between posts unless ctx ends first
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-3])) + "..."
}

func postError(channel string, c *event.Canonical, err error) error {
	return fmt.Errorf("posting %s for listing %s: %w", channel, c.ID, err)
}
