package resolve

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTables(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tables.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing tables: %v", err)
	}
	return path
}

func TestLoadTables(t *testing.T) {
	path := writeTables(t, `
venue_aliases:
  - pattern: "stbart"
    canonical: "stbartholomews"
stopwords: [the, live]
`)

	tables, err := LoadTables(path)
	if err != nil {
		t.Fatalf("LoadTables() error = %v", err)
	}

	if len(tables.VenueAliases) != 1 || tables.VenueAliases[0].Canonical != "stbartholomews" {
		t.Errorf("VenueAliases = %v, want file aliases", tables.VenueAliases)
	}
	if !reflect.DeepEqual(tables.Stopwords, []string{"the", "live"}) {
		t.Errorf("Stopwords = %v, want [the live]", tables.Stopwords)
	}

	defaults := DefaultTables()
	if !reflect.DeepEqual(tables.Abbreviations, defaults.Abbreviations) {
		t.Errorf("Abbreviations = %v, want defaults", tables.Abbreviations)
	}
	if !reflect.DeepEqual(tables.VenueSources, defaults.VenueSources) {
		t.Errorf("VenueSources = %v, want defaults", tables.VenueSources)
	}
}

func TestLoadTables_Errors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{
			name: "Missing file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.yaml") },
		},
		{
			name: "Invalid YAML",
			path: func(t *testing.T) string { return writeTables(t, "venue_aliases: [unclosed") },
		},
		{
			name: "Invalid pattern",
			path: func(t *testing.T) string {
				return writeTables(t, "venue_aliases:\n  - pattern: \"merkin(\"\n    canonical: merkinhall\n")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadTables(tt.path(t)); err == nil {
				t.Error("LoadTables() error = nil, want error")
			}
		})
	}
}

func TestDefaultTables_Compile(t *testing.T) {
	if _, err := New(DefaultTables()); err != nil {
		t.Errorf("New(DefaultTables()) error = %v", err)
	}
}
