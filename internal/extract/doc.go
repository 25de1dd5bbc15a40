// Package extract turns cleaned listing pages into structured records using
// an external text-to-structured-data service.
//
// The service is prompted to return a JSON array of listings. The response is
// decoded strictly; every element is checked against an embedded JSON Schema
// and converted to an event.Record. Elements that are malformed or lack a
// title or date are dropped with a warning rather than failing the source.
package extract
