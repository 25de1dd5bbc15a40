package resolve

import (
	"sort"

	"github.com/pfrederiksen/concert-events/internal/event"
)

// DiffResult contains the listings of a run that a previous catalog lacked
type DiffResult struct {
	NewEvents []*event.Canonical
	ByVenue   map[string][]*event.Canonical // new events grouped by venue
	Matches   []Match                       // current records found in the previous catalog, in input order
}

// Match pairs a current record with its counterpart in a previous catalog
type Match struct {
	Current  *event.Canonical
	Previous *event.Canonical
}

// Diff compares current records against a previous catalog using the same
// identity rules as Resolve. Identifiers are regenerated every run, so they
// cannot be used to pair records.
func (r *Resolver) Diff(previous, current []*event.Canonical) *DiffResult {
	result := &DiffResult{
		NewEvents: make([]*event.Canonical, 0),
		ByVenue:   make(map[string][]*event.Canonical),
		Matches:   make([]Match, 0),
	}

	index := newKeyIndex()
	prevRecords := make([]*event.Record, 0, len(previous))
	for i, c := range previous {
		rec := c.Record()
		prevRecords = append(prevRecords, rec)
		for _, k := range r.keys.Keys(rec) {
			index.bind(k, i)
		}
	}

	for _, c := range current {
		rec := c.Record()
		handle, _, found := index.lookup(r.keys.Keys(rec))
		if !found {
			for i, prev := range prevRecords {
				if r.words.Match(rec, prev) {
					handle, found = i, true
					break
				}
			}
		}
		if found {
			result.Matches = append(result.Matches, Match{Current: c, Previous: previous[handle]})
			continue
		}

		result.NewEvents = append(result.NewEvents, c)
		result.ByVenue[c.Venue] = append(result.ByVenue[c.Venue], c)
	}

	// Sort new events for consistent output
	sort.SliceStable(result.NewEvents, func(i, j int) bool {
		return lessByDate(result.NewEvents[i], result.NewEvents[j])
	})
	for venue := range result.ByVenue {
		group := result.ByVenue[venue]
		sort.SliceStable(group, func(i, j int) bool {
			return lessByDate(group[i], group[j])
		})
	}

	return result
}

func lessByDate(a, b *event.Canonical) bool {
	if !a.Date.Equal(b.Date.Time) {
		return a.Date.Before(b.Date.Time)
	}
	return a.Title < b.Title
}
