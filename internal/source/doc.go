// Package source fetches concert listings from the New York sources the
// catalog aggregates.
//
// HTML sources implement PageFetcher: they download one or more calendar
// pages and reduce them to the compact text or HTML the extraction service
// turns into records. Sources that publish structured data implement
// DirectExtractor and produce records themselves. Multi-page sources log and
// skip individual page failures; they only fail when no page could be read.
package source
