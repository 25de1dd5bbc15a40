package resolve

import (
	"strings"
	"unicode"

	"github.com/pfrederiksen/concert-events/internal/event"
)

const (
	minWordLen     = 2
	minWordOverlap = 2
	minOverlapRate = 0.5
)

// WordMatcher compares significant title words of two records that share a
// venue and date.
type WordMatcher struct {
	venues        *VenueNormalizer
	abbreviations map[string]string
	stopwords     map[string]bool
}

// NewWordMatcher creates a matcher from the abbreviation and stopword tables
func NewWordMatcher(venues *VenueNormalizer, abbreviations map[string]string, stopwords []string) *WordMatcher {
	stop := make(map[string]bool, len(stopwords))
	for _, w := range stopwords {
		stop[w] = true
	}
	abbr := make(map[string]string, len(abbreviations))
	for k, v := range abbreviations {
		abbr[k] = v
	}
	return &WordMatcher{venues: venues, abbreviations: abbr, stopwords: stop}
}

// TitleWords returns the significant words of a title: lowercase
// alphanumeric tokens of length >= 2, abbreviations expanded, stopwords removed.
func (m *WordMatcher) TitleWords(title string) map[string]bool {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}

	words := make(map[string]bool)
	for _, w := range strings.Fields(b.String()) {
		if len(w) < minWordLen {
			continue
		}
		if expanded, ok := m.abbreviations[w]; ok {
			w = expanded
		}
		if m.stopwords[w] {
			continue
		}
		words[w] = true
	}
	return words
}

// Match reports whether a and b describe the same event by title words.
// Records at different venues or on different dates never match.
func (m *WordMatcher) Match(a, b *event.Record) bool {
	if m.venues.Normalize(a.Venue) != m.venues.Normalize(b.Venue) {
		return false
	}
	if a.Date.DateOnly() != b.Date.DateOnly() {
		return false
	}

	wordsA := m.TitleWords(a.Title)
	wordsB := m.TitleWords(b.Title)
	if len(wordsA) < minWordOverlap || len(wordsB) < minWordOverlap {
		return false
	}

	overlap := 0
	for w := range wordsA {
		if wordsB[w] {
			overlap++
		}
	}
	smaller := min(len(wordsA), len(wordsB))

	return overlap >= minWordOverlap && float64(overlap)/float64(smaller) >= minOverlapRate
}
