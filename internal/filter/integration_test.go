package filter_test

import (
	"testing"
	"time"

	"github.com/pfrederiksen/concert-events/internal/event"
	"github.com/pfrederiksen/concert-events/internal/filter"
)

// TestIntegration demonstrates the full filter workflow
func TestIntegration(t *testing.T) {
	cents := func(v int) *int { return &v }

	concerts := []*event.Canonical{
		{
			ID:         "1",
			Title:      "Spring Gala",
			Venue:      "Merkin Hall",
			Date:       event.MustParseDate("2026-03-07T19:30:00"), // Saturday
			PriceCents: cents(4000),
			Tags:       []string{"chamber"},
		},
		{
			ID:         "2",
			Title:      "Bach at One",
			Venue:      "Trinity Church",
			Date:       event.MustParseDate("2026-03-12T13:00:00"),
			Price:      "Free",
			PriceCents: cents(0),
			Tags:       []string{"free", "church", "organ"},
		},
		{
			ID:    "3",
			Title: "Juilliard Orchestra",
			Venue: "Alice Tully Hall",
			Date:  event.MustParseDate("2026-04-05T19:30:00"),
			Price: "See website",
			Tags:  []string{"orchestral", "student"},
		},
		{
			ID:         "4",
			Title:      "Composers Concert",
			Venue:      "Manhattan School of Music",
			Date:       event.MustParseDate("2026-03-10T19:30:00"),
			PriceCents: cents(1500),
			Tags:       []string{"new-music", "cheap"},
		},
	}

	t.Run("Filter by date range", func(t *testing.T) {
		now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		from, to, err := filter.ParseDateRangeAt("March 1-11", now)
		if err != nil {
			t.Fatalf("ParseDateRangeAt failed: %v", err)
		}

		f := filter.NewFilter()
		f.DateFrom = from
		f.DateTo = to

		results := f.Apply(concerts)
		if len(results) != 2 {
			t.Errorf("Expected 2 listings in March 1-11, got %d", len(results))
		}
	})

	t.Run("Filter by price", func(t *testing.T) {
		f := filter.NewFilter()
		f.MaxPriceCents = cents(2000)

		// Listing 3 has no known price and passes
		results := f.Apply(concerts)
		if len(results) != 3 {
			t.Errorf("Expected 3 listings under $20, got %d", len(results))
		}
	})

	t.Run("Combine multiple filters", func(t *testing.T) {
		f := filter.NewFilter()
		f.Tags = filter.ParseTags("free,cheap")
		f.Venues = []string{"trinity"}

		results := f.Apply(concerts)
		if len(results) != 1 || results[0].ID != "2" {
			t.Errorf("Expected only listing 2, got %d listings", len(results))
		}
	})

	t.Run("Weekends only", func(t *testing.T) {
		f := filter.NewFilter()
		f.WeekendsOnly = true

		results := f.Apply(concerts)
		if len(results) != 2 {
			t.Errorf("Expected 2 weekend listings, got %d", len(results))
		}
	})

	t.Run("Filter string representation", func(t *testing.T) {
		f := filter.NewFilter()
		f.Venues = []string{"Merkin"}
		f.WeekendsOnly = true

		want := "Venues: Merkin | Weekends only"
		if got := f.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	})
}
