package resolve

import (
	"strings"

	"github.com/pfrederiksen/concert-events/internal/event"
)

// Key identifies an event by normalized venue, calendar date and a normalized
// discriminator (primary performer or title).
type Key struct {
	Venue string
	Date  string
	Title string
}

// String renders the key as venue:date:title
func (k Key) String() string {
	return k.Venue + ":" + k.Date + ":" + k.Title
}

// KeyGenerator derives candidate identity keys for records
type KeyGenerator struct {
	venues *VenueNormalizer
}

// NewKeyGenerator creates a generator using venues for venue normalization
func NewKeyGenerator(venues *VenueNormalizer) *KeyGenerator {
	return &KeyGenerator{venues: venues}
}

// Keys returns the candidate keys for r, most specific first. The title key
// is always present; a performer key precedes it when a primary performer is
// listed.
func (g *KeyGenerator) Keys(r *event.Record) []Key {
	venue := g.venues.Normalize(r.Venue)
	date := r.Date.DateOnly()

	keys := make([]Key, 0, 2)
	if primary := r.Performers.Primary(); primary != "" {
		name, _, _ := strings.Cut(primary, ",")
		// A performer that normalizes to nothing would prefix-match every key
		// at the venue, so it is not used as a discriminator.
		if n := Normalize(name); n != "" {
			keys = append(keys, Key{Venue: venue, Date: date, Title: n})
		}
	}
	keys = append(keys, Key{Venue: venue, Date: date, Title: Normalize(r.Title)})
	return keys
}

// FuzzyMatch reports whether two keys denote the same event: identical, or
// same venue and date with one title a prefix of the other.
func FuzzyMatch(a, b Key) bool {
	if a == b {
		return true
	}
	if a.Venue != b.Venue || a.Date != b.Date {
		return false
	}
	if a.Title == "" || b.Title == "" {
		return false
	}
	return strings.HasPrefix(a.Title, b.Title) || strings.HasPrefix(b.Title, a.Title)
}
