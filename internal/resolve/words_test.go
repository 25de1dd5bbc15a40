package resolve

import (
	"reflect"
	"sort"
	"testing"

	"github.com/pfrederiksen/concert-events/internal/event"
)

func newTestWordMatcher(t *testing.T) *WordMatcher {
	t.Helper()
	tables := DefaultTables()
	v, err := NewVenueNormalizer(tables.VenueAliases)
	if err != nil {
		t.Fatalf("NewVenueNormalizer() error = %v", err)
	}
	return NewWordMatcher(v, tables.Abbreviations, tables.Stopwords)
}

func TestWordMatcher_TitleWords(t *testing.T) {
	m := newTestWordMatcher(t)

	tests := []struct {
		title string
		want  []string
	}{
		{"NY Phil plays Beethoven", []string{"beethoven", "newyork", "philharmonic", "plays"}},
		{"New York Philharmonic: Beethoven Symphony", []string{"beethoven", "new", "philharmonic", "symphony", "york"}},
		{"Recital at Merkin Hall: Jane Doe", []string{"doe", "jane"}},
		{"Str. Qt. No. 1 - a tribute", []string{"no", "quartet", "string", "tribute"}},
		{"", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			words := m.TitleWords(tt.title)
			got := make([]string, 0, len(words))
			for w := range words {
				got = append(got, w)
			}
			sort.Strings(got)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TitleWords(%q) = %v, want %v", tt.title, got, tt.want)
			}
		})
	}
}

func TestWordMatcher_Match(t *testing.T) {
	m := newTestWordMatcher(t)

	record := func(title, venue, date string) *event.Record {
		return &event.Record{Title: title, Venue: venue, Date: event.MustParseDate(date)}
	}

	tests := []struct {
		name string
		a, b *event.Record
		want bool
	}{
		{
			name: "Abbreviations expanded",
			a:    record("NY Phil plays Beethoven", "Carnegie Hall", "2026-05-01"),
			b:    record("New York Philharmonic: Beethoven Symphony", "Carnegie Hall", "2026-05-01"),
			want: true,
		},
		{
			name: "Different program",
			a:    record("NY Phil plays Beethoven", "Carnegie Hall", "2026-05-01"),
			b:    record("Quartet plays Brahms", "Carnegie Hall", "2026-05-01"),
			want: false,
		},
		{
			name: "Time of day ignored",
			a:    record("Juilliard Orchestra with Barry Douglas", "Alice Tully Hall", "2026-04-02T19:30:00"),
			b:    record("Juilliard Orch: Barry Douglas, piano", "Alice Tully", "2026-04-02"),
			want: true,
		},
		{
			name: "Different date",
			a:    record("NY Phil plays Beethoven", "Carnegie Hall", "2026-05-01"),
			b:    record("New York Philharmonic: Beethoven Symphony", "Carnegie Hall", "2026-05-02"),
			want: false,
		},
		{
			name: "Different venue",
			a:    record("NY Phil plays Beethoven", "Carnegie Hall", "2026-05-01"),
			b:    record("New York Philharmonic: Beethoven Symphony", "David Geffen Hall", "2026-05-01"),
			want: false,
		},
		{
			name: "Single significant word is too little",
			a:    record("Messiah", "Carnegie Hall", "2026-12-20"),
			b:    record("Messiah", "Carnegie Hall", "2026-12-20"),
			want: false,
		},
		{
			name: "Overlap below half of smaller set",
			a:    record("Beethoven Brahms Schubert Schumann Liszt", "Carnegie Hall", "2026-05-01"),
			b:    record("Beethoven Brahms Mahler Bruckner Wagner", "Carnegie Hall", "2026-05-01"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Match(tt.a, tt.b); got != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.a.Title, tt.b.Title, got, tt.want)
			}
			if got := m.Match(tt.b, tt.a); got != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v (reversed)", tt.b.Title, tt.a.Title, got, tt.want)
			}
		})
	}
}
