// Package metrics exposes Prometheus collectors for aggregation runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "concert_events"

// Metrics holds the collectors for one process. Each instance owns its
// registry so tests and the CLI textfile export don't share global state.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal       *prometheus.CounterVec
	runDuration     prometheus.Summary
	sourceRecords   *prometheus.GaugeVec
	sourceErrors    *prometheus.CounterVec
	resolveInput    prometheus.Gauge
	resolveMerges   *prometheus.CounterVec
	canonicalRecord prometheus.Gauge
	newEvents       prometheus.Gauge
	enrichedRecords prometheus.Counter
	lastSuccessTS   prometheus.Gauge
}

// New creates and registers the collectors
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.runsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Aggregation runs by outcome",
	}, []string{"status"})
	m.runDuration = prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Time spent on a full aggregation run",
	})
	m.sourceRecords = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "source_records",
		Help:      "Records extracted from each source in the last run",
	}, []string{"source"})
	m.sourceErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_errors_total",
		Help:      "Source failures by stage",
	}, []string{"source", "stage"})
	m.resolveInput = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "resolve_input_records",
		Help:      "Records fed to entity resolution in the last run",
	})
	m.resolveMerges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resolve_merges_total",
		Help:      "Records merged into an existing canonical record, by match strategy",
	}, []string{"strategy"})
	m.canonicalRecord = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "canonical_records",
		Help:      "Canonical records produced by the last run",
	})
	m.newEvents = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "new_events",
		Help:      "Canonical records in the last run absent from the previous catalog",
	})
	m.enrichedRecords = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enriched_records_total",
		Help:      "Records updated from detail pages",
	})
	m.lastSuccessTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last run that stored its results",
	})

	m.registry.MustRegister(
		m.runsTotal, m.runDuration, m.sourceRecords, m.sourceErrors,
		m.resolveInput, m.resolveMerges, m.canonicalRecord, m.newEvents,
		m.enrichedRecords, m.lastSuccessTS,
	)
	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveSource records the extracted record count of one source
func (m *Metrics) ObserveSource(source string, records int) {
	m.sourceRecords.WithLabelValues(source).Set(float64(records))
}

// ObserveSourceError counts a failure of source at stage
func (m *Metrics) ObserveSourceError(source, stage string) {
	m.sourceErrors.WithLabelValues(source, stage).Inc()
}

// ObserveResolve records resolution statistics
func (m *Metrics) ObserveResolve(input, canonical, exact, fuzzy, word int) {
	m.resolveInput.Set(float64(input))
	m.canonicalRecord.Set(float64(canonical))
	m.resolveMerges.WithLabelValues("exact").Add(float64(exact))
	m.resolveMerges.WithLabelValues("fuzzy").Add(float64(fuzzy))
	m.resolveMerges.WithLabelValues("word").Add(float64(word))
}

// ObserveEnriched counts records updated by enrichment
func (m *Metrics) ObserveEnriched(n int) {
	m.enrichedRecords.Add(float64(n))
}

// ObserveRun records the outcome of a run. stored is false for dry runs and
// for runs whose results could not be persisted.
func (m *Metrics) ObserveRun(duration time.Duration, newEvents int, stored bool, finishedAt time.Time) {
	m.runDuration.Observe(duration.Seconds())
	m.newEvents.Set(float64(newEvents))

	status := "success"
	if !stored {
		status = "not_stored"
	}
	m.runsTotal.WithLabelValues(status).Inc()
	if stored {
		m.lastSuccessTS.Set(float64(finishedAt.Unix()))
	}
}

// WriteToTextfile writes the registry for the node exporter textfile collector
func (m *Metrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
