package resolve

import (
	"reflect"
	"testing"

	"github.com/pfrederiksen/concert-events/internal/event"
)

func newTestKeyGenerator(t *testing.T) *KeyGenerator {
	t.Helper()
	v, err := NewVenueNormalizer(DefaultTables().VenueAliases)
	if err != nil {
		t.Fatalf("NewVenueNormalizer() error = %v", err)
	}
	return NewKeyGenerator(v)
}

func TestKeyGenerator_Keys(t *testing.T) {
	g := newTestKeyGenerator(t)

	tests := []struct {
		name string
		rec  *event.Record
		want []string
	}{
		{
			name: "Title only",
			rec: &event.Record{
				Title: "Spring Gala",
				Venue: "Merkin Concert Hall",
				Date:  event.MustParseDate("2026-03-01"),
			},
			want: []string{"merkinhall:2026-03-01:springgala"},
		},
		{
			name: "Performer line cut at first comma",
			rec: &event.Record{
				Title:      "Spring Gala",
				Venue:      "Merkin Hall",
				Date:       event.MustParseDate("2026-03-01T19:00:00"),
				Performers: event.SinglePerformer("Jonathan Biss, piano"),
			},
			want: []string{"merkinhall:2026-03-01:jonathanbiss", "merkinhall:2026-03-01:springgala"},
		},
		{
			name: "First list entry is primary",
			rec: &event.Record{
				Title:      "Late Beethoven",
				Venue:      "Alice Tully Hall",
				Date:       event.MustParseDate("2026-04-10T19:30:00-04:00"),
				Performers: event.PerformerList("Emerson String Quartet", "Yefim Bronfman"),
			},
			want: []string{"alicetullyhall:2026-04-10:emersonstringquartet", "alicetullyhall:2026-04-10:latebeethoven"},
		},
		{
			name: "Performer with no letters is ignored",
			rec: &event.Record{
				Title:      "Organ Recital",
				Venue:      "Trinity Church",
				Date:       event.MustParseDate("2026-03-05T13:00:00"),
				Performers: event.SinglePerformer("—, TBA"),
			},
			want: []string{"trinitychurch:2026-03-05:organrecital"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys := g.Keys(tt.rec)
			got := make([]string, 0, len(keys))
			for _, k := range keys {
				got = append(got, k.String())
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Keys() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		name string
		a, b Key
		want bool
	}{
		{
			name: "Identical",
			a:    Key{"merkinhall", "2026-03-01", "springgala"},
			b:    Key{"merkinhall", "2026-03-01", "springgala"},
			want: true,
		},
		{
			name: "Truncated title",
			a:    Key{"carnegiehall", "2026-05-01", "symphonyno5"},
			b:    Key{"carnegiehall", "2026-05-01", "symphonyno5incminor"},
			want: true,
		},
		{
			name: "Prefix either direction",
			a:    Key{"carnegiehall", "2026-05-01", "symphonyno5incminor"},
			b:    Key{"carnegiehall", "2026-05-01", "symphonyno5"},
			want: true,
		},
		{
			name: "Different venue",
			a:    Key{"carnegiehall", "2026-05-01", "symphonyno5"},
			b:    Key{"zankelhall", "2026-05-01", "symphonyno5"},
			want: false,
		},
		{
			name: "Different date",
			a:    Key{"carnegiehall", "2026-05-01", "symphonyno5"},
			b:    Key{"carnegiehall", "2026-05-02", "symphonyno5"},
			want: false,
		},
		{
			name: "No prefix relation",
			a:    Key{"carnegiehall", "2026-05-01", "brahmstrio"},
			b:    Key{"carnegiehall", "2026-05-01", "schubertoctet"},
			want: false,
		},
		{
			name: "Empty title only matches exactly",
			a:    Key{"carnegiehall", "2026-05-01", ""},
			b:    Key{"carnegiehall", "2026-05-01", "schubertoctet"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FuzzyMatch(tt.a, tt.b); got != tt.want {
				t.Errorf("FuzzyMatch(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
