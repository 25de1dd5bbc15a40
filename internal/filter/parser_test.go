package filter

import (
	"testing"
	"time"
)

func TestParseDateRangeAt(t *testing.T) {
	// Mid-October: earlier months roll into next year
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		input    string
		wantFrom string
		wantTo   string
		wantErr  bool
	}{
		{"Nov 1-15", "2026-11-01", "2026-11-15", false},
		{"november 1 - 15", "2026-11-01", "2026-11-15", false},
		{"Oct 20-31", "2026-10-20", "2026-10-31", false},
		{"Nov 20 - Dec 5", "2026-11-20", "2026-12-05", false},
		{"Dec 28 - Jan 3", "2026-12-28", "2027-01-03", false},
		{"March", "2027-03-01", "2027-03-31", false},
		{"Feb", "2027-02-01", "2027-02-28", false},
		{"Sept 1-2", "2027-09-01", "2027-09-02", false},
		{"Nov 15-1", "", "", true},
		{"Feb 30-31", "", "", true},
		{"Nov 0-3", "", "", true},
		{"Smarch 1-5", "", "", true},
		{"next weekend", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			from, to, err := ParseDateRangeAt(tt.input, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDateRangeAt(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got := from.Format("2006-01-02"); got != tt.wantFrom {
				t.Errorf("ParseDateRangeAt(%q) from = %s, want %s", tt.input, got, tt.wantFrom)
			}
			if got := to.Format("2006-01-02"); got != tt.wantTo {
				t.Errorf("ParseDateRangeAt(%q) to = %s, want %s", tt.input, got, tt.wantTo)
			}
			if to.Hour() != 23 || to.Minute() != 59 || to.Second() != 59 {
				t.Errorf("ParseDateRangeAt(%q) to = %v, want end of day", tt.input, to)
			}
		})
	}
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		input string
		want  time.Month
	}{
		{"jan", time.January},
		{"JANUARY", time.January},
		{"may", time.May},
		{"Sept", time.September},
		{" dec ", time.December},
		{"ju", time.Month(0)},
		{"juli", time.Month(0)},
		{"", time.Month(0)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseMonth(tt.input); got != tt.want {
				t.Errorf("parseMonth(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDay(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"2026-03-01", "2026-03-01", false},
		{" 2026-12-31 ", "2026-12-31", false},
		{"03/01/2026", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDay(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDay(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got.Format("2006-01-02") != tt.want {
				t.Errorf("ParseDay(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"20", 2000, false},
		{"$20", 2000, false},
		{"19.50", 1950, false},
		{"0", 0, false},
		{"-5", 0, true},
		{"cheap", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePrice(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePrice(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePrice(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"free,cheap", []string{"free", "cheap"}},
		{" Free , ,Organ ", []string{"free", "organ"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseTags(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseTags(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseTags(%q) = %v, want %v", tt.input, got, tt.want)
				}
			}
		})
	}
}
