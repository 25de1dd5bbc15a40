// Package calendar renders canonical listings as iCalendar (RFC 5545) data.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/concert-events/internal/event"
)

const (
	prodID        = "-//Concert Events//concert-events//EN"
	uidDomain     = "concert-events"
	eventDuration = 2 * time.Hour
	maxLineOctets = 75
)

// GenerateICS generates an iCalendar (.ics) file for a single listing
func GenerateICS(c *event.Canonical) string {
	return generate([]*event.Canonical{c}, "", time.Now())
}

// GenerateBulkICS generates one calendar holding every listing, suitable for
// a subscribed feed. Listings without a date are skipped; an empty catalog
// still yields a valid calendar.
func GenerateBulkICS(concerts []*event.Canonical, calendarName string) string {
	return generate(concerts, calendarName, time.Now())
}

// generate renders the calendar; now stamps each entry's DTSTAMP
func generate(concerts []*event.Canonical, calendarName string, now time.Time) string {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	writeLine(&ics, "PRODID:"+prodID)
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	if calendarName != "" {
		writeLine(&ics, "X-WR-CALNAME:"+escapeICS(calendarName))
	}

	for _, c := range concerts {
		if c.Date.IsZero() {
			continue
		}
		writeEvent(&ics, c, now)
	}

	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

func writeEvent(ics *strings.Builder, c *event.Canonical, now time.Time) {
	ics.WriteString("BEGIN:VEVENT\r\n")

	// UID - unique identifier for the listing
	writeLine(ics, fmt.Sprintf("UID:%s@%s", c.ID, uidDomain))

	// DTSTAMP - timestamp when this calendar entry was created
	writeLine(ics, "DTSTAMP:"+formatICSTime(now))

	for _, line := range dateLines(c.Date) {
		writeLine(ics, line)
	}

	writeLine(ics, "SUMMARY:"+escapeICS(c.Title))

	if description := describe(c); description != "" {
		writeLine(ics, "DESCRIPTION:"+escapeICS(description))
	}

	location := c.Venue
	if c.Address != "" {
		location = fmt.Sprintf("%s, %s", c.Venue, c.Address)
	}
	writeLine(ics, "LOCATION:"+escapeICS(location))

	if c.SourceURL != "" {
		writeLine(ics, "URL:"+c.SourceURL)
	}

	if len(c.Tags) > 0 {
		escaped := make([]string, len(c.Tags))
		for i, tag := range c.Tags {
			escaped[i] = escapeICS(tag)
		}
		writeLine(ics, "CATEGORIES:"+strings.Join(escaped, ","))
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("SEQUENCE:0\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// dateLines renders DTSTART and DTEND. Naive times become floating local
// times; date-only listings become all-day entries.
func dateLines(d event.Date) []string {
	switch {
	case d.IsNaive() && d.Hour() == 0 && d.Minute() == 0 && d.Second() == 0:
		return []string{
			"DTSTART;VALUE=DATE:" + d.Format("20060102"),
			"DTEND;VALUE=DATE:" + d.AddDate(0, 0, 1).Format("20060102"),
		}
	case d.IsNaive():
		return []string{
			"DTSTART:" + d.Format("20060102T150405"),
			"DTEND:" + d.Add(eventDuration).Format("20060102T150405"),
		}
	default:
		return []string{
			"DTSTART:" + formatICSTime(d.Time),
			"DTEND:" + formatICSTime(d.Add(eventDuration)),
		}
	}
}

func describe(c *event.Canonical) string {
	var parts []string
	if !c.Performers.IsZero() {
		parts = append(parts, "Performers: "+c.Performers.Text())
	}
	if c.Program != "" {
		parts = append(parts, "Program: "+c.Program)
	}
	if c.Price != "" {
		parts = append(parts, "Price: "+c.Price)
	}
	if c.TicketURL != "" {
		parts = append(parts, "Tickets: "+c.TicketURL)
	}
	if c.SourceName != "" {
		parts = append(parts, "Source: "+c.SourceName)
	}
	return strings.Join(parts, "\n")
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\r\n", "\\n")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// writeLine writes a content line folded at 75 octets, never splitting a
// UTF-8 sequence.
func writeLine(ics *strings.Builder, line string) {
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !isRuneStart(line[cut]) {
			cut--
		}
		ics.WriteString(line[:cut])
		ics.WriteString("\r\n ")
		line = line[cut:]
		// Continuation lines carry a leading space
		limit = maxLineOctets - 1
	}
	ics.WriteString(line)
	ics.WriteString("\r\n")
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
