package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/concert-events/internal/event"
)

func testListing() *event.Canonical {
	return &event.Canonical{
		ID:         "test-event-123",
		Title:      "Spring Gala",
		Date:       event.MustParseDate("2026-03-07T19:30:00"),
		Venue:      "Merkin Hall",
		Address:    "129 W 67th St",
		Price:      "$40",
		Program:    "Beethoven Symphony No.5",
		Performers: event.SinglePerformer("Knights Chamber Orchestra"),
		SourceURL:  "https://www.kaufmanmusiccenter.org/mch/event/spring-gala",
		SourceName: "Kaufman Music Center / Merkin Hall",
		Tags:       []string{"chamber", "cheap"},
	}
}

func TestGenerateICS(t *testing.T) {
	ics := GenerateICS(testListing())

	// Check required ICS fields
	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Concert Events//concert-events//EN",
		"BEGIN:VEVENT",
		"UID:test-event-123@concert-events",
		"DTSTAMP:",
		"DTSTART:20260307T193000\r\n",
		"DTEND:20260307T213000\r\n",
		"SUMMARY:Spring Gala",
		"DESCRIPTION:Performers: Knights Chamber Orchestra\\nProgram",
		"LOCATION:Merkin Hall\\, 129 W 67th St", // Comma is escaped
		"URL:https://www.kaufmanmusiccenter.org/mch/event/spring-gala",
		"CATEGORIES:chamber,cheap",
		"STATUS:CONFIRMED",
		"END:VEVENT",
		"END:VCALENDAR",
	}

	for _, field := range requiredFields {
		if !strings.Contains(ics, field) {
			t.Errorf("ICS missing required field: %s", field)
		}
	}

	// Check that lines end with \r\n
	if !strings.Contains(ics, "\r\n") {
		t.Error("ICS should use \\r\\n line endings")
	}
}

func TestGenerateICS_EventTimes(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		wantStart string
		wantEnd   string
	}{
		{
			name:      "naive time is floating",
			date:      "2026-03-15T14:30:00",
			wantStart: "DTSTART:20260315T143000\r\n",
			wantEnd:   "DTEND:20260315T163000\r\n",
		},
		{
			name:      "offset time is converted to UTC",
			date:      "2026-03-15T19:00:00-04:00",
			wantStart: "DTSTART:20260315T230000Z\r\n",
			wantEnd:   "DTEND:20260316T010000Z\r\n",
		},
		{
			name:      "date only is all day",
			date:      "2026-03-15",
			wantStart: "DTSTART;VALUE=DATE:20260315\r\n",
			wantEnd:   "DTEND;VALUE=DATE:20260316\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testListing()
			c.Date = event.MustParseDate(tt.date)

			ics := GenerateICS(c)
			if !strings.Contains(ics, tt.wantStart) {
				t.Errorf("ICS missing %q", tt.wantStart)
			}
			if !strings.Contains(ics, tt.wantEnd) {
				t.Errorf("ICS missing %q", tt.wantEnd)
			}
		})
	}
}

func TestGenerateICS_SpecialCharacters(t *testing.T) {
	c := testListing()
	c.Title = "Test Event; With, Special\\Characters\nAnd Newlines"

	ics := GenerateICS(c)

	want := "SUMMARY:Test Event\\; With\\, Special\\\\Characters\\nAnd Newlines"
	if !strings.Contains(ics, want) {
		t.Errorf("ICS missing escaped summary %q", want)
	}
}

func TestGenerateBulkICS(t *testing.T) {
	var concerts []*event.Canonical
	for _, id := range []string{"event1", "event2", "event3"} {
		c := testListing()
		c.ID = id
		concerts = append(concerts, c)
	}
	// Listings without a date are skipped
	concerts = append(concerts, &event.Canonical{ID: "undated", Title: "TBA"})

	ics := GenerateBulkICS(concerts, "NYC Classical - Test")

	if !strings.Contains(ics, "X-WR-CALNAME:NYC Classical - Test") {
		t.Error("Missing calendar name")
	}

	beginCount := strings.Count(ics, "BEGIN:VEVENT")
	endCount := strings.Count(ics, "END:VEVENT")
	if beginCount != 3 || endCount != 3 {
		t.Errorf("Expected 3 VEVENT blocks, got %d/%d", beginCount, endCount)
	}

	for _, id := range []string{"event1", "event2", "event3"} {
		if !strings.Contains(ics, "UID:"+id+"@concert-events") {
			t.Errorf("Missing UID for listing: %s", id)
		}
	}
	if strings.Contains(ics, "undated") {
		t.Error("Listing without a date should be skipped")
	}
}

func TestGenerateBulkICS_Empty(t *testing.T) {
	ics := GenerateBulkICS(nil, "")

	if !strings.HasPrefix(ics, "BEGIN:VCALENDAR\r\n") || !strings.HasSuffix(ics, "END:VCALENDAR\r\n") {
		t.Errorf("Empty catalog should still be a calendar, got %q", ics)
	}
	if strings.Contains(ics, "BEGIN:VEVENT") {
		t.Error("Empty catalog should have no events")
	}
	// Should not have X-WR-CALNAME if name is empty
	if strings.Contains(ics, "X-WR-CALNAME:") {
		t.Error("Should not include X-WR-CALNAME when name is empty")
	}
}

func TestGenerate_Stamp(t *testing.T) {
	now := time.Date(2026, 2, 20, 6, 0, 0, 0, time.UTC)

	ics := generate([]*event.Canonical{testListing()}, "", now)
	if !strings.Contains(ics, "DTSTAMP:20260220T060000Z\r\n") {
		t.Errorf("DTSTAMP not taken from now")
	}
}

func TestWriteLine_Folding(t *testing.T) {
	var b strings.Builder
	long := "DESCRIPTION:" + strings.Repeat("Dvořák ", 20)
	writeLine(&b, long)

	lines := strings.Split(strings.TrimSuffix(b.String(), "\r\n"), "\r\n")
	if len(lines) < 2 {
		t.Fatalf("writeLine() did not fold a %d octet line", len(long))
	}

	var joined strings.Builder
	for i, line := range lines {
		if len(line) > 75 {
			t.Errorf("line %d is %d octets, want <= 75", i, len(line))
		}
		if i > 0 {
			if !strings.HasPrefix(line, " ") {
				t.Errorf("continuation line %d has no leading space", i)
			}
			line = line[1:]
		}
		joined.WriteString(line)
	}
	if joined.String() != long {
		t.Errorf("unfolded line differs from input")
	}
}

func TestFormatICSTime(t *testing.T) {
	testTime := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)
	formatted := formatICSTime(testTime)

	expected := "20260315T143000Z"
	if formatted != expected {
		t.Errorf("formatICSTime() = %q, want %q", formatted, expected)
	}
}

func TestEscapeICS(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Simple text", "Simple text"},
		{"Text with, comma", "Text with\\, comma"},
		{"Text with; semicolon", "Text with\\; semicolon"},
		{"Text with\\backslash", "Text with\\\\backslash"},
		{"Text with\nnewline", "Text with\\nnewline"},
		{"Text with\r\nCRLF", "Text with\\nCRLF"},
		{"All, special; chars\\\n", "All\\, special\\; chars\\\\\\n"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := escapeICS(tt.input)
			if got != tt.expected {
				t.Errorf("escapeICS(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
