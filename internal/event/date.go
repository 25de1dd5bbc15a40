package event

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	layoutNaive    = "2006-01-02T15:04:05"
	layoutDateOnly = "2006-01-02"
)

// Date is an event start as written by a source. Values without an offset are
// naive: they are held in UTC and rendered back without an offset.
type Date struct {
	time.Time
	naive bool
}

// ParseDate attempts to parse event date text.
// Supports formats: "2026-03-01T19:00:00-05:00", "2026-03-01T19:00:00Z",
// "2026-03-01T19:00:00", "2026-03-01T19:00", "2026-03-01"
func ParseDate(dateText string) (Date, error) {
	dateText = strings.TrimSpace(dateText)
	if dateText == "" {
		return Date{}, fmt.Errorf("empty date")
	}

	// Offset-carrying timestamps keep their zone
	if t, err := time.Parse(time.RFC3339, dateText); err == nil {
		return Date{Time: t}, nil
	}

	for _, layout := range []string{layoutNaive, "2006-01-02T15:04", layoutDateOnly} {
		if t, err := time.Parse(layout, dateText); err == nil {
			return Date{Time: t, naive: true}, nil
		}
	}

	return Date{}, fmt.Errorf("unrecognized date %q", dateText)
}

// MustParseDate is ParseDate for literals known to be valid
func MustParseDate(dateText string) Date {
	d, err := ParseDate(dateText)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOnly returns the calendar date as written, ignoring time of day
func (d Date) DateOnly() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(layoutDateOnly)
}

// IsNaive reports whether the source gave no zone offset
func (d Date) IsNaive() bool {
	return d.naive
}

// String renders the date in the same shape it was parsed from
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	if d.naive {
		return d.Format(layoutNaive)
	}
	return d.Format(time.RFC3339)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == nil || strings.TrimSpace(*s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(*s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// IsUpcoming reports whether the event starts on or after the calendar day of now.
// Naive dates are compared by calendar day only.
func (d Date) IsUpcoming(now time.Time) bool {
	if d.IsZero() {
		return true // Can't determine, include it
	}
	return d.DateOnly() >= now.Format(layoutDateOnly)
}

// FormatDateNice renders a date for humans, e.g. "Sun, Mar 1, 2026 7:00 PM".
// Midnight naive dates are shown without a time.
func FormatDateNice(d Date) string {
	if d.IsZero() {
		return ""
	}
	if d.naive && d.Hour() == 0 && d.Minute() == 0 {
		return d.Format("Mon, Jan 2, 2006")
	}
	return d.Format("Mon, Jan 2, 2006 3:04 PM")
}
