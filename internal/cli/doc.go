// Package cli implements the command-line interface for concert-events.
//
// The cli package provides the Cobra-based command tree: aggregate runs the
// full pipeline and reports new listings, resolve runs the resolution engine
// over a file of extracted records, list and prune work on the stored
// catalog, and serve starts the HTTP surface. Output is text, JSON or
// iCalendar.
package cli
