package cli

import (
	"testing"
	"time"
)

func resetListFlags() {
	flagRange, flagFrom, flagTo, flagMaxPrice, flagTags = "", "", "", "", ""
	flagVenue = nil
	flagWeekends, flagAll = false, false
}

func TestBuildFilter(t *testing.T) {
	today := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	t.Run("defaults to today", func(t *testing.T) {
		resetListFlags()
		f, err := buildFilter(today)
		if err != nil {
			t.Fatalf("buildFilter() error: %v", err)
		}
		if f.FromDay() != "2026-10-15" || f.DateTo != nil {
			t.Errorf("range = %q..%q, want 2026-10-15..", f.FromDay(), f.ToDay())
		}
	})

	t.Run("all drops the lower bound", func(t *testing.T) {
		resetListFlags()
		flagAll = true
		f, err := buildFilter(today)
		if err != nil {
			t.Fatalf("buildFilter() error: %v", err)
		}
		if !f.IsEmpty() {
			t.Errorf("filter = %s, want empty", f)
		}
	})

	t.Run("explicit days", func(t *testing.T) {
		resetListFlags()
		flagFrom, flagTo = "2026-11-01", "2026-11-30"
		f, err := buildFilter(today)
		if err != nil {
			t.Fatalf("buildFilter() error: %v", err)
		}
		if f.FromDay() != "2026-11-01" || f.ToDay() != "2026-11-30" {
			t.Errorf("range = %q..%q", f.FromDay(), f.ToDay())
		}
	})

	t.Run("price tags venues weekends", func(t *testing.T) {
		resetListFlags()
		flagMaxPrice = "$19.50"
		flagTags = "Orchestral, free,"
		flagVenue = []string{"Merkin"}
		flagWeekends = true
		f, err := buildFilter(today)
		if err != nil {
			t.Fatalf("buildFilter() error: %v", err)
		}
		if f.MaxPriceCents == nil || *f.MaxPriceCents != 1950 {
			t.Errorf("MaxPriceCents = %v, want 1950", f.MaxPriceCents)
		}
		if len(f.Tags) != 2 || f.Tags[0] != "orchestral" || f.Tags[1] != "free" {
			t.Errorf("Tags = %v, want [orchestral free]", f.Tags)
		}
		if len(f.Venues) != 1 || f.Venues[0] != "Merkin" {
			t.Errorf("Venues = %v", f.Venues)
		}
		if !f.WeekendsOnly {
			t.Error("WeekendsOnly = false, want true")
		}
	})

	errorCases := []struct {
		name string
		set  func()
	}{
		{"bad from", func() { flagFrom = "Nov 1" }},
		{"bad to", func() { flagTo = "2026-13-01" }},
		{"bad price", func() { flagMaxPrice = "cheap" }},
		{"bad range", func() { flagRange = "Smarch 1-5" }},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			resetListFlags()
			tt.set()
			if _, err := buildFilter(today); err == nil {
				t.Error("buildFilter() expected error")
			}
		})
	}
	resetListFlags()
}
