package event

import (
	"strings"
	"time"
)

// PricePlaceholder is the price text sources use when no price is listed.
const PricePlaceholder = "See website"

// ValidTags is the fixed tag vocabulary shared by every source
var ValidTags = []string{
	"free",
	"cheap",
	"student",
	"church",
	"chamber",
	"orchestral",
	"solo",
	"choral",
	"organ",
	"opera",
	"new-music",
	"family",
}

// IsValidTag reports whether tag belongs to the vocabulary
func IsValidTag(tag string) bool {
	for _, t := range ValidTags {
		if t == tag {
			return true
		}
	}
	return false
}

// Record is one event listing as extracted from a single source.
// SourceName and SourceBaseURL carry provenance and are not part of the
// extraction payload.
type Record struct {
	Title      string     `json:"title"`
	Date       Date       `json:"date"`
	Venue      string     `json:"venue"`
	Address    string     `json:"address,omitempty"`
	Price      string     `json:"price"`
	PriceCents *int       `json:"price_cents"`
	Program    string     `json:"program,omitempty"`
	Performers Performers `json:"performers"`
	SourceURL  string     `json:"source_url,omitempty"`
	TicketURL  string     `json:"ticket_url,omitempty"`
	Tags       []string   `json:"tags"`

	SourceName    string `json:"source_name,omitempty"`
	SourceBaseURL string `json:"source_base_url,omitempty"`
}

// Clone returns a deep copy of the record
func (r *Record) Clone() *Record {
	c := *r
	if r.PriceCents != nil {
		cents := *r.PriceCents
		c.PriceCents = &cents
	}
	c.Tags = append([]string(nil), r.Tags...)
	c.Performers = r.Performers.clone()
	return &c
}

// Canonical is the single merged representation of an event produced by a
// resolution run.
type Canonical struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Date        Date       `json:"date"`
	Venue       string     `json:"venue"`
	Address     string     `json:"address,omitempty"`
	Price       string     `json:"price"`
	PriceCents  *int       `json:"price_cents"`
	Program     string     `json:"program,omitempty"`
	Performers  Performers `json:"performers"`
	SourceURL   string     `json:"source_url"`
	SourceName  string     `json:"source_name"`
	Description *string    `json:"description"`
	Tags        []string   `json:"tags"`
	TicketURL   string     `json:"ticket_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Record converts a canonical record back into an extracted record so it can
// be fed through resolution again.
func (c *Canonical) Record() *Record {
	r := &Record{
		Title:      c.Title,
		Date:       c.Date,
		Venue:      c.Venue,
		Address:    c.Address,
		Price:      c.Price,
		Program:    c.Program,
		Performers: c.Performers.clone(),
		SourceURL:  c.SourceURL,
		TicketURL:  c.TicketURL,
		Tags:       append([]string(nil), c.Tags...),
		SourceName: c.SourceName,
	}
	if c.PriceCents != nil {
		cents := *c.PriceCents
		r.PriceCents = &cents
	}
	return r
}

// HasTag reports whether the record carries tag (case-insensitive)
func (c *Canonical) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// AddTag appends tag if it is not already present
func (c *Canonical) AddTag(tag string) {
	if !c.HasTag(tag) {
		c.Tags = append(c.Tags, tag)
	}
}

// SourceBatch is the set of records extracted from one source in one run
type SourceBatch struct {
	SourceName string    `json:"source_name"`
	SourceURL  string    `json:"source_url"`
	Records    []*Record `json:"records"`
}

// UnionTags merges tag sets keeping first-seen order
func UnionTags(sets ...[]string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, set := range sets {
		for _, tag := range set {
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			out = append(out, tag)
		}
	}
	return out
}
