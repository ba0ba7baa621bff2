package timeparsing

import (
	"strings"
	"testing"
	"time"
)

// Reference time for the natural language cases: Wednesday 2025-01-15 10:00.
var nlpNow = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

func TestParseNaturalLanguage(t *testing.T) {
	tests := []struct {
		input   string
		date    string // YYYY-MM-DD
		hour    int    // -1 skips the hour check
		wantErr bool
	}{
		{input: "tomorrow", date: "2025-01-16", hour: -1},
		{input: "yesterday", date: "2025-01-14", hour: -1},
		{input: "tomorrow at 9am", date: "2025-01-16", hour: 9},
		{input: "next monday at 2pm", date: "2025-01-20", hour: 14},
		{input: "3 days ago", date: "2025-01-12", hour: -1},
		{input: "in 3 days", date: "2025-01-18", hour: -1},
		{input: "not a date at all", wantErr: true},
		{input: "", wantErr: true},
		{input: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseNaturalLanguage(tt.input, nlpNow)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseNaturalLanguage(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseNaturalLanguage(%q) error = %v", tt.input, err)
			}
			if d := got.Format("2006-01-02"); d != tt.date {
				t.Errorf("ParseNaturalLanguage(%q) date = %s, want %s", tt.input, d, tt.date)
			}
			if tt.hour >= 0 && got.Hour() != tt.hour {
				t.Errorf("ParseNaturalLanguage(%q) hour = %d, want %d", tt.input, got.Hour(), tt.hour)
			}
		})
	}
}

// Every layer must be reachable through ParseRelativeTime, and earlier
// layers win when an input could match more than one.
func TestParseRelativeTime_Layers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  func(time.Time) bool
	}{
		{"clock", "09:30", func(t time.Time) bool {
			return t.Equal(time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC))
		}},
		{"compact minutes", "-45m", func(t time.Time) bool {
			return t.Equal(nlpNow.Add(-45 * time.Minute))
		}},
		{"compact days", "+1d", func(t time.Time) bool {
			return t.Equal(nlpNow.AddDate(0, 0, 1))
		}},
		{"absolute with time", "2025-01-14 17:00", func(t time.Time) bool {
			return t.Equal(time.Date(2025, 1, 14, 17, 0, 0, 0, time.UTC))
		}},
		{"absolute date", "2025-02-01", func(t time.Time) bool {
			return t.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
		}},
		{"rfc3339", "2025-03-15T14:30:00Z", func(t time.Time) bool {
			return t.Equal(time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC))
		}},
		{"natural language", "yesterday", func(t time.Time) bool {
			return t.Format("2006-01-02") == "2025-01-14"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRelativeTime(tt.input, nlpNow)
			if err != nil {
				t.Fatalf("ParseRelativeTime(%q) error = %v", tt.input, err)
			}
			if !tt.want(got) {
				t.Errorf("ParseRelativeTime(%q) = %v", tt.input, got)
			}
		})
	}
}

// Compact durations never fall through to the later layers.
func TestParseRelativeTime_CompactDurationOverflow(t *testing.T) {
	_, err := ParseRelativeTime("-99999999999999999999m", nlpNow)
	if err == nil || !strings.Contains(err.Error(), "invalid duration amount") {
		t.Errorf("ParseRelativeTime() error = %v, want invalid duration amount", err)
	}
}

func TestParseRelativeTime_Unparseable(t *testing.T) {
	for _, input := range []string{"not-a-date", "25:99", "-15x"} {
		if got, err := ParseRelativeTime(input, nlpNow); err == nil {
			t.Errorf("ParseRelativeTime(%q) = %v, want error", input, got)
		}
	}
}
