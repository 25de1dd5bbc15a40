package resolve

import (
	"strings"
	"unicode/utf8"

	"github.com/pfrederiksen/concert-events/internal/event"
)

// Merger combines two records already judged to be the same event.
//
// Venue-operated sources are authoritative for logistics (date, venue,
// address, price, URLs); aggregators usually carry richer program and
// performer text. When both records come from the same kind of source the
// more complete one is kept whole.
type Merger struct {
	venueSources []string
}

// NewMerger creates a merger with the given venue-operated source names
func NewMerger(venueSources []string) *Merger {
	return &Merger{venueSources: append([]string(nil), venueSources...)}
}

// IsVenueSource reports whether sourceName is a venue-operated source
func (m *Merger) IsVenueSource(sourceName string) bool {
	for _, v := range m.venueSources {
		if strings.Contains(sourceName, v) {
			return true
		}
	}
	return false
}

// Merge returns a new record combining existing and incoming. Neither input
// is modified. Tags are always the union of both sides.
func (m *Merger) Merge(existing, incoming *event.Record) *event.Record {
	existingIsVenue := m.IsVenueSource(existing.SourceName)
	incomingIsVenue := m.IsVenueSource(incoming.SourceName)

	var venue, aggregator *event.Record
	switch {
	case incomingIsVenue && !existingIsVenue:
		venue, aggregator = incoming, existing
	case existingIsVenue && !incomingIsVenue:
		venue, aggregator = existing, incoming
	default:
		// Same kind: ties keep the record that was already canonical
		kept := existing
		if Completeness(incoming) > Completeness(existing) {
			kept = incoming
		}
		merged := kept.Clone()
		merged.Tags = event.UnionTags(existing.Tags, incoming.Tags)
		return merged
	}

	merged := &event.Record{
		Date:          venue.Date,
		Venue:         venue.Venue,
		Address:       firstNonBlank(venue.Address, aggregator.Address),
		SourceURL:     firstNonBlank(venue.SourceURL, aggregator.SourceURL),
		TicketURL:     firstNonBlank(venue.TicketURL, aggregator.TicketURL),
		SourceName:    venue.SourceName,
		SourceBaseURL: venue.SourceBaseURL,
		Program:       firstNonBlank(aggregator.Program, venue.Program),
		Tags:          event.UnionTags(venue.Tags, aggregator.Tags),
	}

	if hasRealPrice(venue.Price) || isBlank(aggregator.Price) {
		merged.Price = venue.Price
		merged.PriceCents = firstCents(venue.PriceCents, aggregator.PriceCents)
	} else {
		merged.Price = aggregator.Price
		merged.PriceCents = firstCents(aggregator.PriceCents, venue.PriceCents)
	}

	if utf8.RuneCountInString(aggregator.Title) > utf8.RuneCountInString(venue.Title) {
		merged.Title = aggregator.Title
	} else {
		merged.Title = venue.Title
	}

	if aggregator.Performers.Len() > venue.Performers.Len() {
		merged.Performers = aggregator.Performers
	} else {
		merged.Performers = venue.Performers
	}

	return merged
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if !isBlank(v) {
			return v
		}
	}
	return ""
}

func firstCents(values ...*int) *int {
	for _, v := range values {
		if v != nil {
			cents := *v
			return &cents
		}
	}
	return nil
}
