// Package filter provides catalog filtering for canonical concert listings.
//
// Filters narrow the catalog on these criteria:
//   - Date ranges (from/to dates, whole days)
//   - Venues (substring matching, case-insensitive)
//   - Tags (any overlap with the listing's tags)
//   - Maximum price in cents (listings without a known price always pass)
//   - Weekends only (Saturday/Sunday)
//
// Example usage:
//
//	// Free or cheap chamber music at Merkin Hall
//	f := filter.NewFilter()
//	f.Venues = []string{"Merkin"}
//	f.Tags = []string{"free", "cheap"}
//
//	filtered := f.Apply(concerts)
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/concert-events/internal/event"
)

const dayLayout = "2006-01-02"

// Filter represents catalog filtering criteria
type Filter struct {
	// Date range filtering, compared on calendar days
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`

	// Venue filtering (case-insensitive substring match)
	Venues []string `json:"venues,omitempty"`

	// Tag filtering: a listing matches if it carries any of these tags
	Tags []string `json:"tags,omitempty"`

	// Weekend-only filtering (Saturday/Sunday)
	WeekendsOnly bool `json:"weekends_only,omitempty"`

	// Price filtering in cents. Listings with unknown price_cents pass.
	MaxPriceCents *int `json:"max_price_cents,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all listings until criteria are added.
func NewFilter() *Filter {
	return &Filter{
		Venues: []string{},
		Tags:   []string{},
	}
}

// IsEmpty checks if the filter has any active criteria.
// Returns true if the filter would match all listings.
func (f *Filter) IsEmpty() bool {
	return f.DateFrom == nil &&
		f.DateTo == nil &&
		len(f.Venues) == 0 &&
		len(f.Tags) == 0 &&
		!f.WeekendsOnly &&
		f.MaxPriceCents == nil
}

// FromDay returns the lower date bound as YYYY-MM-DD, or "" when unset
func (f *Filter) FromDay() string {
	if f.DateFrom == nil {
		return ""
	}
	return f.DateFrom.Format(dayLayout)
}

// ToDay returns the upper date bound as YYYY-MM-DD, or "" when unset
func (f *Filter) ToDay() string {
	if f.DateTo == nil {
		return ""
	}
	return f.DateTo.Format(dayLayout)
}

// Matches checks if a listing matches all active filter criteria.
// An empty filter matches all listings.
//
// Matching logic:
//   - Date range: the listing's calendar date must be within DateFrom and DateTo (inclusive)
//   - Venues: the venue must contain at least one venue string (case-insensitive)
//   - Tags: the listing must carry at least one of the tags (case-insensitive)
//   - WeekendsOnly: the listing must be on Saturday or Sunday
//   - MaxPriceCents: price_cents must be at most the limit, or unknown
func (f *Filter) Matches(c *event.Canonical) bool {
	// Empty filter matches all listings
	if f.IsEmpty() {
		return true
	}

	day := c.Date.DateOnly()

	if from := f.FromDay(); from != "" && (day == "" || day < from) {
		return false
	}
	if to := f.ToDay(); to != "" && (day == "" || day > to) {
		return false
	}

	if f.WeekendsOnly {
		if c.Date.IsZero() {
			return false
		}
		weekday := c.Date.Weekday()
		if weekday != time.Saturday && weekday != time.Sunday {
			return false
		}
	}

	if len(f.Venues) > 0 {
		matched := false
		venueLower := strings.ToLower(c.Venue)
		for _, venue := range f.Venues {
			if strings.Contains(venueLower, strings.ToLower(venue)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.Tags) > 0 {
		matched := false
		for _, tag := range f.Tags {
			if c.HasTag(tag) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if f.MaxPriceCents != nil && c.PriceCents != nil && *c.PriceCents > *f.MaxPriceCents {
		return false
	}

	return true
}

// Apply applies the filter to a list of listings and returns only matching ones.
// If the filter is empty, returns the original list unchanged.
func (f *Filter) Apply(concerts []*event.Canonical) []*event.Canonical {
	if f.IsEmpty() {
		return concerts
	}

	var filtered []*event.Canonical
	for _, c := range concerts {
		if f.Matches(c) {
			filtered = append(filtered, c)
		}
	}

	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Returns "No active filters" if the filter is empty.
// Format: "From: Mar 1, 2026 | To: Mar 15, 2026 | Venues: Merkin | Max price: $20.00"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if f.DateFrom != nil {
		parts = append(parts, fmt.Sprintf("From: %s", f.DateFrom.Format("Jan 2, 2006")))
	}

	if f.DateTo != nil {
		parts = append(parts, fmt.Sprintf("To: %s", f.DateTo.Format("Jan 2, 2006")))
	}

	if len(f.Venues) > 0 {
		parts = append(parts, fmt.Sprintf("Venues: %s", strings.Join(f.Venues, ", ")))
	}

	if len(f.Tags) > 0 {
		parts = append(parts, fmt.Sprintf("Tags: %s", strings.Join(f.Tags, ", ")))
	}

	if f.WeekendsOnly {
		parts = append(parts, "Weekends only")
	}

	if f.MaxPriceCents != nil {
		parts = append(parts, fmt.Sprintf("Max price: $%.2f", float64(*f.MaxPriceCents)/100))
	}

	return strings.Join(parts, " | ")
}
