package resolve

import (
	"fmt"
	"regexp"
	"strings"
)

type compiledAlias struct {
	re        *regexp.Regexp
	canonical string
}

// VenueNormalizer collapses venue name variants to one token
type VenueNormalizer struct {
	aliases []compiledAlias
}

// NewVenueNormalizer compiles the alias table
func NewVenueNormalizer(aliases []VenueAlias) (*VenueNormalizer, error) {
	compiled := make([]compiledAlias, 0, len(aliases))
	for _, a := range aliases {
		re, err := regexp.Compile(a.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling venue alias %q: %w", a.Pattern, err)
		}
		compiled = append(compiled, compiledAlias{re: re, canonical: a.Canonical})
	}
	return &VenueNormalizer{aliases: compiled}, nil
}

// Normalize lowercases the venue, strips everything but letters and digits,
// and maps it through the first matching alias.
func (v *VenueNormalizer) Normalize(venue string) string {
	n := Normalize(venue)
	for _, a := range v.aliases {
		if a.re.MatchString(n) {
			return a.canonical
		}
	}
	return n
}

// Normalize lowercases s and keeps only ASCII letters and digits
func Normalize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}
