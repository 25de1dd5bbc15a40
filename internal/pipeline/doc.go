// Package pipeline runs one aggregation: every source is fetched and
// extracted, the results are resolved into a deduplicated catalog, enriched
// from detail pages and persisted.
//
// A failing source never aborts the run. Its error is recorded in the
// report and the remaining sources proceed.
package pipeline
