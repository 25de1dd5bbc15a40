// Package storage provides SQLite persistence for the canonical concert catalog.
//
// The catalog is a single table keyed by canonical record id. Each run upserts
// its records; retention deletes listings whose calendar date has passed.
// The default database location is ~/.local/share/concert-events/catalog.db.
package storage
