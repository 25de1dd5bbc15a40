package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const monthPattern = `(jan|january|feb|february|mar|march|apr|april|may|jun|june|jul|july|aug|august|sep|sept|september|oct|october|nov|november|dec|december)`

var (
	sameMonthRange  = regexp.MustCompile(`(?i)^` + monthPattern + `\s+(\d{1,2})\s*-\s*(\d{1,2})$`)
	crossMonthRange = regexp.MustCompile(`(?i)^` + monthPattern + `\s+(\d{1,2})\s*-\s*` + monthPattern + `\s+(\d{1,2})$`)
	wholeMonth      = regexp.MustCompile(`(?i)^` + monthPattern + `$`)
)

// ParseDateRange parses a date range relative to the current time.
// See ParseDateRangeAt.
func ParseDateRange(input string) (*time.Time, *time.Time, error) {
	return ParseDateRangeAt(input, time.Now())
}

// ParseDateRangeAt parses "Nov 1-15", "Nov 20 - Dec 5" or "November".
//
// Ranges have no year. A month earlier than now's month belongs to next
// year, and an end month before the start month wraps into the year after
// the start. Bounds are UTC, from 00:00:00 on the first day to 23:59:59 on
// the last.
func ParseDateRangeAt(input string, now time.Time) (*time.Time, *time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil, fmt.Errorf("date range cannot be empty")
	}

	var from, to time.Time
	switch {
	case sameMonthRange.MatchString(input):
		m := sameMonthRange.FindStringSubmatch(input)
		month := parseMonth(m[1])
		year := yearFor(month, now)
		start, err := dayOf(year, month, m[2])
		if err != nil {
			return nil, nil, err
		}
		end, err := dayOf(year, month, m[3])
		if err != nil {
			return nil, nil, err
		}
		from, to = start, end

	case crossMonthRange.MatchString(input):
		m := crossMonthRange.FindStringSubmatch(input)
		startMonth, endMonth := parseMonth(m[1]), parseMonth(m[3])
		startYear := yearFor(startMonth, now)
		endYear := startYear
		if endMonth < startMonth {
			endYear++
		}
		start, err := dayOf(startYear, startMonth, m[2])
		if err != nil {
			return nil, nil, err
		}
		end, err := dayOf(endYear, endMonth, m[4])
		if err != nil {
			return nil, nil, err
		}
		from, to = start, end

	case wholeMonth.MatchString(input):
		month := parseMonth(input)
		year := yearFor(month, now)
		from = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		to = time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)

	default:
		return nil, nil, fmt.Errorf("invalid date range %q, use 'Nov 1-15', 'Nov 20 - Dec 5', or 'November'", input)
	}

	if from.After(to) {
		return nil, nil, fmt.Errorf("start date must be before end date")
	}
	to = to.Add(24*time.Hour - time.Second)
	return &from, &to, nil
}

// ParseDay parses a single YYYY-MM-DD date at midnight UTC
func ParseDay(input string) (*time.Time, error) {
	t, err := time.Parse(dayLayout, strings.TrimSpace(input))
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, use YYYY-MM-DD", input)
	}
	return &t, nil
}

// ParsePrice parses a dollar amount such as "20", "$20" or "19.50" into cents
func ParsePrice(input string) (int, error) {
	s := strings.TrimPrefix(strings.TrimSpace(input), "$")
	dollars, err := strconv.ParseFloat(s, 64)
	if err != nil || dollars < 0 {
		return 0, fmt.Errorf("invalid price %q", input)
	}
	return int(dollars*100 + 0.5), nil
}

// ParseTags splits a comma-separated tag list, dropping blanks
func ParseTags(input string) []string {
	var tags []string
	for _, tag := range strings.Split(input, ",") {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// parseMonth converts an English month name or abbreviation to a month,
// or 0 if it is not one
func parseMonth(name string) time.Month {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) < 3 {
		return 0
	}
	for m := time.January; m <= time.December; m++ {
		full := strings.ToLower(m.String())
		if name == full || name == full[:3] || (m == time.September && name == "sept") {
			return m
		}
	}
	return 0
}

// yearFor places month in now's year, or the next one once it has passed
func yearFor(month time.Month, now time.Time) int {
	if month < now.Month() {
		return now.Year() + 1
	}
	return now.Year()
}

// dayOf builds midnight UTC of day in month, rejecting days the month lacks
func dayOf(year int, month time.Month, day string) (time.Time, error) {
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 {
		return time.Time{}, fmt.Errorf("invalid day: %s", day)
	}
	t := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
	if t.Month() != month {
		return time.Time{}, fmt.Errorf("invalid day: %s %s", month, day)
	}
	return t, nil
}
