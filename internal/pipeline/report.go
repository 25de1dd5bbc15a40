package pipeline

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pfrederiksen/concert-events/internal/event"
	"github.com/pfrederiksen/concert-events/internal/resolve"
)

// Stages at which a source can fail
const (
	StageFetch   = "fetch"
	StageExtract = "extract"
	StageLoad    = "load"
	StageStore   = "store"
	StagePrune   = "prune"
)

// DatabaseSource names persistence failures in a report
const DatabaseSource = "database"

// SourceError is a failure isolated to one source and stage
type SourceError struct {
	Source string
	Stage  string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Stage, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

func (e *SourceError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Source string `json:"source"`
		Stage  string `json:"stage"`
		Error  string `json:"error"`
	}{e.Source, e.Stage, e.Err.Error()})
}

// SourceCount is the number of records one source contributed
type SourceCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Report describes one run
type Report struct {
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	DryRun     bool           `json:"dry_run"`
	Sources    []SourceCount  `json:"sources"`
	Total      int            `json:"total"`
	New        int            `json:"new"`
	Enriched   int            `json:"enriched"`
	Stored     bool           `json:"stored"`
	Pruned     int64          `json:"pruned"`
	Stats      resolve.Stats  `json:"stats"`
	Errors     []*SourceError `json:"errors,omitempty"`

	Records []*event.Canonical  `json:"-"`
	Groups  []resolve.Group     `json:"-"`
	Diff    *resolve.DiffResult `json:"-"`
}

// Duration is the wall time of the run
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// HasErrors reports whether any source or persistence step failed
func (r *Report) HasErrors() bool {
	return len(r.Errors) > 0
}

func (r *Report) addError(src, stage string, err error) {
	r.Errors = append(r.Errors, &SourceError{Source: src, Stage: stage, Err: err})
}
