package cli

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/concert-events/internal/event"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDate  SortOrder = "date"
	SortByVenue SortOrder = "venue"
	SortByTitle SortOrder = "title"
)

// sortConcerts sorts listings based on the specified sort order
func sortConcerts(concerts []*event.Canonical, sortOrder SortOrder) {
	switch sortOrder {
	case SortByDate:
		sort.SliceStable(concerts, func(i, j int) bool {
			return compareByDate(concerts[i], concerts[j])
		})
	case SortByVenue:
		sort.SliceStable(concerts, func(i, j int) bool {
			vi, vj := strings.ToLower(concerts[i].Venue), strings.ToLower(concerts[j].Venue)
			if vi != vj {
				return vi < vj
			}
			// If venues are equal, sort by date
			return compareByDate(concerts[i], concerts[j])
		})
	case SortByTitle:
		sort.SliceStable(concerts, func(i, j int) bool {
			ti, tj := strings.ToLower(concerts[i].Title), strings.ToLower(concerts[j].Title)
			if ti != tj {
				return ti < tj
			}
			// If titles are equal, sort by date
			return compareByDate(concerts[i], concerts[j])
		})
	}
}

// compareByDate compares two listings by their date
// Returns true if listing i should come before listing j
func compareByDate(i, j *event.Canonical) bool {
	// If both dates are valid, compare them
	if !i.Date.IsZero() && !j.Date.IsZero() {
		if !i.Date.Equal(j.Date.Time) {
			return i.Date.Before(j.Date.Time)
		}
	} else if !i.Date.IsZero() {
		// If only one date is valid, put the valid one first
		return true
	} else if !j.Date.IsZero() {
		return false
	}

	// Same or missing dates sort by venue then title
	if i.Venue != j.Venue {
		return strings.ToLower(i.Venue) < strings.ToLower(j.Venue)
	}
	return strings.ToLower(i.Title) < strings.ToLower(j.Title)
}
