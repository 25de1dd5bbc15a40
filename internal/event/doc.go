// Package event defines the records that flow through a concert catalog run.
//
// A Record is one listing as extracted from a single source, tagged with the
// source that produced it. A Canonical is the merged representation emitted by
// the resolution engine, with a fresh identifier and run timestamps. Dates keep
// the form a source wrote them in, so the calendar date of an event never
// shifts through zone conversion.
package event
