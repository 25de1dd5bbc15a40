// Package resolve implements entity resolution for event listings.
//
// Listings extracted from independent sources are grouped into canonical
// events in four steps: identity keys are generated from the normalized
// venue, the calendar date and the primary performer or title; incoming
// records are matched against known keys exactly, then by title prefix, then
// by significant title words; matched records are merged field by field with
// venue-operated sources trusted for logistics and aggregators for
// descriptive text; finally every surviving entry is materialized with a
// fresh identifier.
//
// Matching only ever points more keys at an existing entry. Two entries
// created separately stay separate even if a later record would bridge them.
//
// Resolution is pure and synchronous: no I/O, no logging, no shared state.
package resolve
