package resolve

import (
	"strings"

	"github.com/pfrederiksen/concert-events/internal/event"
)

// Completeness counts the populated fields of r (0-10). It only breaks ties
// between duplicates from sources of the same kind.
func Completeness(r *event.Record) int {
	score := 0
	for _, populated := range []bool{
		!isBlank(r.Title),
		!r.Date.IsZero(),
		!isBlank(r.Venue),
		!isBlank(r.Address),
		hasRealPrice(r.Price),
		r.PriceCents != nil,
		!isBlank(r.Program),
		!r.Performers.IsZero(),
		!isBlank(r.SourceURL),
		len(r.Tags) > 0,
	} {
		if populated {
			score++
		}
	}
	return score
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// hasRealPrice reports whether price is listed and is not the placeholder
func hasRealPrice(price string) bool {
	return !isBlank(price) && price != event.PricePlaceholder
}
