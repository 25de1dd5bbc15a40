package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pfrederiksen/concert-events/internal/event"
	"github.com/pfrederiksen/concert-events/internal/extract"
	"github.com/pfrederiksen/concert-events/internal/filter"
	"github.com/pfrederiksen/concert-events/internal/logger"
	"github.com/pfrederiksen/concert-events/internal/metrics"
	"github.com/pfrederiksen/concert-events/internal/resolve"
	"github.com/pfrederiksen/concert-events/internal/source"
	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 2

// ErrExtractionDisabled is reported for page sources when no extractor is configured
var ErrExtractionDisabled = errors.New("extraction is not configured")

// Store is the catalog the runner reads and writes
type Store interface {
	List(ctx context.Context, f *filter.Filter) ([]*event.Canonical, error)
	Upsert(ctx context.Context, concerts []*event.Canonical) error
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Enricher fills in missing details of resolved records in place
type Enricher interface {
	Enrich(ctx context.Context, records []*event.Canonical) int
}

// Options configures a Runner. Sources and Resolver are required.
type Options struct {
	Sources     []source.Source
	Extractor   extract.Extractor
	Resolver    *resolve.Resolver
	Enricher    Enricher
	Store       Store
	Metrics     *metrics.Metrics
	Concurrency int
	// Retention is how far back listings are kept after a run; zero disables pruning
	Retention time.Duration
	Now       func() time.Time
}

// Runner executes aggregation runs
type Runner struct {
	opts Options
}

// New creates a Runner
func New(opts Options) *Runner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{opts: opts}
}

type sourceResult struct {
	records []*event.Record
	stage   string
	err     error
}

// Run performs one aggregation. A dry run reads the stored catalog to find
// new listings but writes nothing. The returned error is non-nil only when
// ctx ends before the run completes.
func (r *Runner) Run(ctx context.Context, dryRun bool) (*Report, error) {
	report := &Report{
		StartedAt: r.opts.Now(),
		DryRun:    dryRun,
		Sources:   make([]SourceCount, 0, len(r.opts.Sources)),
	}

	results := r.collect(ctx, r.opts.Sources)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batches := make([]event.SourceBatch, 0, len(r.opts.Sources))
	for i, src := range r.opts.Sources {
		res := results[i]
		report.Sources = append(report.Sources, SourceCount{Name: src.Name(), Count: len(res.records)})
		if res.err != nil {
			report.addError(src.Name(), res.stage, res.err)
			r.observeSourceError(src.Name(), res.stage)
			continue
		}
		if r.opts.Metrics != nil {
			r.opts.Metrics.ObserveSource(src.Name(), len(res.records))
		}
		batches = append(batches, event.SourceBatch{
			SourceName: src.Name(),
			SourceURL:  src.URL(),
			Records:    res.records,
		})
	}

	resolved := r.opts.Resolver.Resolve(batches)
	report.Stats = resolved.Stats
	report.Records = resolved.Records
	report.Groups = resolved.Groups
	report.Total = len(resolved.Records)

	logger.Info("Resolved listings", logger.Fields{
		"input":     resolved.Stats.Input,
		"canonical": resolved.Stats.Canonical,
		"exact":     resolved.Stats.Exact,
		"fuzzy":     resolved.Stats.Fuzzy,
		"word":      resolved.Stats.Word,
		"merges":    resolved.Stats.Merges(),
	})
	if r.opts.Metrics != nil {
		s := resolved.Stats
		r.opts.Metrics.ObserveResolve(s.Input, s.Canonical, s.Exact, s.Fuzzy, s.Word)
	}

	var previous []*event.Canonical
	if r.opts.Store != nil {
		var err error
		previous, err = r.opts.Store.List(ctx, nil)
		if err != nil {
			logger.Error("Failed to load stored catalog", nil, err)
			report.addError(DatabaseSource, StageLoad, err)
			r.observeSourceError(DatabaseSource, StageLoad)
		}
	}
	report.Diff = r.opts.Resolver.Diff(previous, resolved.Records)
	report.New = len(report.Diff.NewEvents)
	adoptIdentities(report.Diff.Matches, resolved.Groups)

	if r.opts.Enricher != nil {
		report.Enriched = r.opts.Enricher.Enrich(ctx, resolved.Records)
		if r.opts.Metrics != nil {
			r.opts.Metrics.ObserveEnriched(report.Enriched)
		}
	}

	if !dryRun && r.opts.Store != nil {
		r.persist(ctx, report)
	}

	report.FinishedAt = r.opts.Now()
	if r.opts.Metrics != nil {
		r.opts.Metrics.ObserveRun(report.Duration(), report.New, report.Stored, report.FinishedAt)
	}

	logger.Info("Aggregation complete", logger.Fields{
		"total":    report.Total,
		"new":      report.New,
		"enriched": report.Enriched,
		"stored":   report.Stored,
		"errors":   len(report.Errors),
		"duration": report.Duration().String(),
	})
	return report, nil
}

// collect runs every source with bounded concurrency. Results are indexed
// like sources so that processing order stays fixed.
func (r *Runner) collect(ctx context.Context, sources []source.Source) []sourceResult {
	results := make([]sourceResult, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			results[i] = r.collectOne(gctx, src)
			return nil
		})
	}
	g.Wait() // nolint:errcheck

	return results
}

func (r *Runner) collectOne(ctx context.Context, src source.Source) sourceResult {
	fields := logger.Fields{"source": src.Name()}

	switch s := src.(type) {
	case source.DirectExtractor:
		records, err := s.Extract(ctx)
		if err != nil {
			logger.Error("Source failed", logger.Fields{"source": src.Name(), "stage": StageExtract}, err)
			return sourceResult{stage: StageExtract, err: err}
		}
		fields["records"] = len(records)
		logger.Info("Extracted listings", fields)
		return sourceResult{records: records}

	case source.PageFetcher:
		content, err := s.Fetch(ctx)
		if err != nil {
			logger.Error("Source failed", logger.Fields{"source": src.Name(), "stage": StageFetch}, err)
			return sourceResult{stage: StageFetch, err: err}
		}
		fields["bytes"] = len(content)
		if content == "" {
			fields["records"] = 0
			logger.Info("Source has no listings", fields)
			return sourceResult{}
		}
		if r.opts.Extractor == nil {
			return sourceResult{stage: StageExtract, err: ErrExtractionDisabled}
		}

		records, err := r.opts.Extractor.Extract(ctx, content, src.Name(), src.URL())
		if err != nil {
			logger.Error("Source failed", logger.Fields{"source": src.Name(), "stage": StageExtract}, err)
			return sourceResult{stage: StageExtract, err: err}
		}
		fields["records"] = len(records)
		logger.Info("Extracted listings", fields)
		return sourceResult{records: records}

	default:
		return sourceResult{stage: StageFetch, err: fmt.Errorf("source %q has no fetch method", src.Name())}
	}
}

// adoptIdentities gives records that were already in the catalog their stored
// identifier and creation time, so that upserts replace rather than duplicate.
// A stored identifier is adopted at most once.
func adoptIdentities(matches []resolve.Match, groups []resolve.Group) {
	claimed := make(map[string]bool, len(matches))
	renamed := make(map[string]string, len(matches))

	for _, m := range matches {
		prev := m.Previous
		if claimed[prev.ID] {
			continue
		}
		claimed[prev.ID] = true
		renamed[m.Current.ID] = prev.ID
		m.Current.ID = prev.ID
		m.Current.CreatedAt = prev.CreatedAt
	}

	for i := range groups {
		if id, ok := renamed[groups[i].RecordID]; ok {
			groups[i].RecordID = id
		}
	}
}

func (r *Runner) persist(ctx context.Context, report *Report) {
	if err := r.opts.Store.Upsert(ctx, report.Records); err != nil {
		logger.Error("Failed to store catalog", nil, err)
		report.addError(DatabaseSource, StageStore, err)
		r.observeSourceError(DatabaseSource, StageStore)
		return
	}
	report.Stored = true

	if r.opts.Retention <= 0 {
		return
	}
	cutoff := r.opts.Now().Add(-r.opts.Retention)
	pruned, err := r.opts.Store.DeleteBefore(ctx, cutoff)
	if err != nil {
		logger.Error("Failed to prune catalog", nil, err)
		report.addError(DatabaseSource, StagePrune, err)
		r.observeSourceError(DatabaseSource, StagePrune)
		return
	}
	report.Pruned = pruned
}

func (r *Runner) observeSourceError(src, stage string) {
	if r.opts.Metrics != nil {
		r.opts.Metrics.ObserveSourceError(src, stage)
	}
}
