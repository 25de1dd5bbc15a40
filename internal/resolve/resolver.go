package resolve

import (
	"time"

	"github.com/google/uuid"
	"github.com/pfrederiksen/concert-events/internal/event"
)

// MatchStrategy describes how an incoming record was matched to an entry
type MatchStrategy string

// Match strategies, tried in this order.
const (
	MatchExact MatchStrategy = "exact"
	MatchFuzzy MatchStrategy = "fuzzy"
	MatchWord  MatchStrategy = "word"
)

// Member identifies one input record: its source and its position in that
// source's batch.
type Member struct {
	SourceName string `json:"source_name"`
	Index      int    `json:"index"`
}

// Group lists the input records merged into one canonical record
type Group struct {
	RecordID string   `json:"record_id"`
	Members  []Member `json:"members"`
}

// Stats summarizes a resolution run
type Stats struct {
	Input     int `json:"input"`
	Canonical int `json:"canonical"`
	Exact     int `json:"exact"`
	Fuzzy     int `json:"fuzzy"`
	Word      int `json:"word"`
}

// Merges is the number of input records folded into an existing entry
func (s Stats) Merges() int {
	return s.Exact + s.Fuzzy + s.Word
}

// Result is the output of one resolution run
type Result struct {
	Records []*event.Canonical `json:"records"`
	Groups  []Group            `json:"groups"`
	Stats   Stats              `json:"stats"`
	RunAt   time.Time          `json:"run_at"`
}

// Resolver turns source-grouped records into deduplicated canonical records.
// A Resolver holds no per-run state and may be reused.
type Resolver struct {
	keys   *KeyGenerator
	words  *WordMatcher
	merger *Merger
	newID  func() string
	now    func() time.Time
}

// Option configures a Resolver
type Option func(*Resolver)

// WithIDFunc replaces the identifier generator (uuid by default)
func WithIDFunc(fn func() string) Option {
	return func(r *Resolver) { r.newID = fn }
}

// WithClock replaces the clock used for run timestamps
func WithClock(fn func() time.Time) Option {
	return func(r *Resolver) { r.now = fn }
}

// New builds a Resolver from tables
func New(tables Tables, opts ...Option) (*Resolver, error) {
	venues, err := NewVenueNormalizer(tables.VenueAliases)
	if err != nil {
		return nil, err
	}

	r := &Resolver{
		keys:   NewKeyGenerator(venues),
		words:  NewWordMatcher(venues, tables.Abbreviations, tables.Stopwords),
		merger: NewMerger(tables.VenueSources),
		newID:  uuid.NewString,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Keys returns the candidate identity keys for rec
func (r *Resolver) Keys(rec *event.Record) []Key {
	return r.keys.Keys(rec)
}

// entry is one canonical entry under construction
type entry struct {
	record  *event.Record
	members []Member
}

// keyIndex maps identity keys to entry handles, remembering registration
// order so that scans are deterministic.
type keyIndex struct {
	order []Key
	byKey map[Key]int
}

func newKeyIndex() *keyIndex {
	return &keyIndex{byKey: make(map[Key]int)}
}

// bind points key at handle. Keys only ever move onto the entry a record was
// merged into; entries themselves are never unioned.
func (ix *keyIndex) bind(key Key, handle int) {
	if _, exists := ix.byKey[key]; !exists {
		ix.order = append(ix.order, key)
	}
	ix.byKey[key] = handle
}

// lookup finds the entry for candidate keys: exact hits first, then fuzzy
// prefix hits against every registered key.
func (ix *keyIndex) lookup(candidates []Key) (int, MatchStrategy, bool) {
	for _, k := range candidates {
		if h, ok := ix.byKey[k]; ok {
			return h, MatchExact, true
		}
	}
	for _, k := range candidates {
		for _, existing := range ix.order {
			if FuzzyMatch(k, existing) {
				return ix.byKey[existing], MatchFuzzy, true
			}
		}
	}
	return 0, "", false
}

// Resolve runs entity resolution over batches in the order given. Processing
// order matters: on a same-kind tie the record already canonical wins.
func (r *Resolver) Resolve(batches []event.SourceBatch) *Result {
	index := newKeyIndex()
	var entries []*entry
	var stats Stats

	for _, batch := range batches {
		for i, in := range batch.Records {
			if in == nil {
				continue
			}
			stats.Input++

			rec := in.Clone()
			rec.SourceName = batch.SourceName
			rec.SourceBaseURL = batch.SourceURL
			member := Member{SourceName: batch.SourceName, Index: i}

			candidates := r.keys.Keys(rec)

			handle, strategy, found := index.lookup(candidates)
			if !found {
				for h, e := range entries {
					if r.words.Match(rec, e.record) {
						handle, strategy, found = h, MatchWord, true
						break
					}
				}
			}

			if found {
				e := entries[handle]
				e.record = r.merger.Merge(e.record, rec)
				e.members = append(e.members, member)
				switch strategy {
				case MatchExact:
					stats.Exact++
				case MatchFuzzy:
					stats.Fuzzy++
				case MatchWord:
					stats.Word++
				}
			} else {
				handle = len(entries)
				entries = append(entries, &entry{record: rec, members: []Member{member}})
			}

			for _, k := range candidates {
				index.bind(k, handle)
			}
		}
	}

	runAt := r.now()
	result := &Result{
		Records: make([]*event.Canonical, 0, len(entries)),
		Groups:  make([]Group, 0, len(entries)),
		RunAt:   runAt,
	}
	for _, e := range entries {
		c := r.materialize(e.record, runAt)
		result.Records = append(result.Records, c)
		result.Groups = append(result.Groups, Group{RecordID: c.ID, Members: e.members})
	}
	stats.Canonical = len(result.Records)
	result.Stats = stats

	return result
}

// materialize turns a merged entry into a canonical record
func (r *Resolver) materialize(rec *event.Record, runAt time.Time) *event.Canonical {
	c := &event.Canonical{
		ID:         r.newID(),
		Title:      rec.Title,
		Date:       rec.Date,
		Venue:      rec.Venue,
		Address:    rec.Address,
		Price:      rec.Price,
		PriceCents: firstCents(rec.PriceCents),
		Program:    rec.Program,
		Performers: rec.Performers,
		SourceURL:  firstNonBlank(rec.SourceURL, rec.SourceBaseURL),
		SourceName: rec.SourceName,
		Tags:       event.UnionTags(rec.Tags),
		TicketURL:  rec.TicketURL,
		CreatedAt:  runAt,
		UpdatedAt:  runAt,
	}
	return c
}
