package resolve

import (
	"testing"

	"github.com/pfrederiksen/concert-events/internal/event"
)

func canonical(id, title, date, venue string) *event.Canonical {
	return &event.Canonical{
		ID:    id,
		Title: title,
		Date:  event.MustParseDate(date),
		Venue: venue,
	}
}

func TestResolver_Diff(t *testing.T) {
	r := newTestResolver(t)

	previous := []*event.Canonical{
		canonical("old-1", "Spring Gala", "2026-03-01", "Merkin Hall"),
		canonical("old-2", "NY Phil plays Beethoven", "2026-05-01T20:00:00", "Carnegie Hall"),
	}

	tests := []struct {
		name      string
		current   []*event.Canonical
		wantNew   []string
		wantVenue map[string]int
	}{
		{
			name: "Same events with new ids",
			current: []*event.Canonical{
				canonical("new-1", "Spring Gala", "2026-03-01", "Merkin Hall"),
				canonical("new-2", "NY Phil plays Beethoven", "2026-05-01T20:00:00", "Carnegie Hall"),
			},
			wantNew:   []string{},
			wantVenue: map[string]int{},
		},
		{
			name: "Fuzzy and word matches are not new",
			current: []*event.Canonical{
				canonical("new-1", "Spring Gala Concert", "2026-03-01T19:00:00", "Merkin Concert Hall"),
				canonical("new-2", "New York Philharmonic: Beethoven Symphony", "2026-05-01", "Carnegie Hall"),
			},
			wantNew:   []string{},
			wantVenue: map[string]int{},
		},
		{
			name: "New events sorted by date",
			current: []*event.Canonical{
				canonical("new-1", "Spring Gala", "2026-03-01", "Merkin Hall"),
				canonical("new-3", "Organ Hour", "2026-04-02", "Trinity Church"),
				canonical("new-4", "Bach at One", "2026-04-01", "Trinity Church"),
				canonical("new-5", "Spring Gala", "2026-03-08", "Merkin Hall"),
			},
			wantNew:   []string{"new-5", "new-4", "new-3"},
			wantVenue: map[string]int{"Trinity Church": 2, "Merkin Hall": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Diff(previous, tt.current)

			if len(got.NewEvents) != len(tt.wantNew) {
				t.Fatalf("got %d new events, want %d", len(got.NewEvents), len(tt.wantNew))
			}
			for i, id := range tt.wantNew {
				if got.NewEvents[i].ID != id {
					t.Errorf("NewEvents[%d] = %s, want %s", i, got.NewEvents[i].ID, id)
				}
			}
			if len(got.ByVenue) != len(tt.wantVenue) {
				t.Errorf("got %d venues, want %d", len(got.ByVenue), len(tt.wantVenue))
			}
			for venue, n := range tt.wantVenue {
				if len(got.ByVenue[venue]) != n {
					t.Errorf("ByVenue[%q] has %d events, want %d", venue, len(got.ByVenue[venue]), n)
				}
			}
		})
	}
}

func TestResolver_Diff_Matches(t *testing.T) {
	r := newTestResolver(t)
	previous := []*event.Canonical{
		canonical("old-1", "Spring Gala", "2026-03-01", "Merkin Hall"),
		canonical("old-2", "Organ Hour", "2026-04-02", "Trinity Church"),
	}
	current := []*event.Canonical{
		canonical("new-1", "Organ Hour", "2026-04-02", "Trinity Church"),
		canonical("new-2", "Bach at One", "2026-04-01", "Trinity Church"),
		canonical("new-3", "Spring Gala Concert", "2026-03-01", "Merkin Concert Hall"),
	}

	got := r.Diff(previous, current)

	want := map[string]string{"new-1": "old-2", "new-3": "old-1"}
	if len(got.Matches) != len(want) {
		t.Fatalf("got %d matches, want %d", len(got.Matches), len(want))
	}
	for _, m := range got.Matches {
		if want[m.Current.ID] != m.Previous.ID {
			t.Errorf("match %s -> %s, want %s", m.Current.ID, m.Previous.ID, want[m.Current.ID])
		}
	}
}

func TestResolver_Diff_EmptyPrevious(t *testing.T) {
	r := newTestResolver(t)
	current := []*event.Canonical{
		canonical("a", "Organ Hour", "2026-04-02", "Trinity Church"),
	}

	got := r.Diff(nil, current)
	if len(got.NewEvents) != 1 {
		t.Errorf("got %d new events, want 1", len(got.NewEvents))
	}
}
