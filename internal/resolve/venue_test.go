package resolve

import "testing"

func TestVenueNormalizer_Normalize(t *testing.T) {
	v, err := NewVenueNormalizer(DefaultTables().VenueAliases)
	if err != nil {
		t.Fatalf("NewVenueNormalizer() error = %v", err)
	}

	tests := []struct {
		venue string
		want  string
	}{
		{"Merkin Concert Hall", "merkinhall"},
		{"Merkin Hall", "merkinhall"},
		{"Kaufman Music Center - Merkin Hall", "merkinhall"},
		{"Alice Tully Hall", "alicetullyhall"},
		{"Alice Tully", "alicetullyhall"},
		{"David Geffen Hall", "davidgeffenhall"},
		{"Weill Recital Hall at Carnegie Hall", "weillhall"},
		{"Zankel Hall, Carnegie Hall", "zankelhall"},
		{"Carnegie Hall", "carnegiehall"},
		{"92nd Street Y", "92ny"},
		{"92NY", "92ny"},
		{"Metropolitan Opera House", "metopera"},
		{"Cathedral of St. John the Divine", "stjohndivine"},
		{"Le Poisson Rouge", "lepoissonrouge"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.venue, func(t *testing.T) {
			if got := v.Normalize(tt.venue); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.venue, got, tt.want)
			}
		})
	}
}

func TestVenueNormalizer_FirstAliasWins(t *testing.T) {
	v, err := NewVenueNormalizer([]VenueAlias{
		{Pattern: "hall", Canonical: "first"},
		{Pattern: "merkinhall", Canonical: "second"},
	})
	if err != nil {
		t.Fatalf("NewVenueNormalizer() error = %v", err)
	}

	if got := v.Normalize("Merkin Hall"); got != "first" {
		t.Errorf("Normalize(%q) = %q, want %q", "Merkin Hall", got, "first")
	}
}

func TestNewVenueNormalizer_BadPattern(t *testing.T) {
	if _, err := NewVenueNormalizer([]VenueAlias{{Pattern: "(", Canonical: "x"}}); err == nil {
		t.Error("NewVenueNormalizer() expected error for invalid pattern")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Symphony No. 5 in C Minor", "symphonyno5incminor"},
		{"  Bach at One!  ", "bachatone"},
		{"Dvořák Quartet", "dvokquartet"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
