package resolve

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// VenueAlias maps every venue name matching Pattern to one canonical token.
// Patterns are tested against the already lowercased, alphanumeric-only name.
type VenueAlias struct {
	Pattern   string `yaml:"pattern"`
	Canonical string `yaml:"canonical"`
}

// Tables holds the static data the matchers and the merge engine run on
type Tables struct {
	// VenueAliases are tested in order; the first match wins
	VenueAliases []VenueAlias `yaml:"venue_aliases"`
	// Abbreviations expand title words before word-overlap matching
	Abbreviations map[string]string `yaml:"abbreviations"`
	// Stopwords are dropped from titles after expansion
	Stopwords []string `yaml:"stopwords"`
	// VenueSources name the venue-operated sources (substring match on source name)
	VenueSources []string `yaml:"venue_sources"`
}

// DefaultTables returns the tables for the New York classical listings sources
func DefaultTables() Tables {
	return Tables{
		VenueAliases: []VenueAlias{
			{Pattern: `merkin(concert)?hall`, Canonical: "merkinhall"},
			{Pattern: `kaufman.*merkin`, Canonical: "merkinhall"},
			{Pattern: `alicetully(hall)?`, Canonical: "alicetullyhall"},
			{Pattern: `davidgeffen(hall)?`, Canonical: "davidgeffenhall"},
			{Pattern: `weillrecital(hall)?.*carnegie`, Canonical: "weillhall"},
			{Pattern: `zankel(hall)?.*carnegie`, Canonical: "zankelhall"},
			{Pattern: `carnegiehall$`, Canonical: "carnegiehall"},
			{Pattern: `92n(d)?y|92ndstreety`, Canonical: "92ny"},
			{Pattern: `metropolitanopera(house)?`, Canonical: "metopera"},
			{Pattern: `cathedral.*st.*john.*divine`, Canonical: "stjohndivine"},
		},
		Abbreviations: map[string]string{
			"ny":   "newyork",
			"phil": "philharmonic",
			"orch": "orchestra",
			"sym":  "symphony",
			"qt":   "quartet",
			"str":  "string",
		},
		Stopwords: []string{"at", "in", "the", "of", "and", "hall", "merkin", "concert", "recital"},
		VenueSources: []string{
			"Kaufman Music Center",
			"Juilliard",
			"Manhattan School of Music",
			"Trinity Church",
		},
	}
}

// LoadTables reads tables from a YAML file. Sections missing from the file
// keep their defaults.
func LoadTables(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("reading tables: %w", err)
	}

	var fromFile Tables
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return Tables{}, fmt.Errorf("parsing tables: %w", err)
	}

	tables := DefaultTables()
	if len(fromFile.VenueAliases) > 0 {
		tables.VenueAliases = fromFile.VenueAliases
	}
	if len(fromFile.Abbreviations) > 0 {
		tables.Abbreviations = fromFile.Abbreviations
	}
	if len(fromFile.Stopwords) > 0 {
		tables.Stopwords = fromFile.Stopwords
	}
	if len(fromFile.VenueSources) > 0 {
		tables.VenueSources = fromFile.VenueSources
	}

	// Surface bad patterns at load time rather than on first use
	if _, err := NewVenueNormalizer(tables.VenueAliases); err != nil {
		return Tables{}, err
	}

	return tables, nil
}
