package timeparsing

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, loc)

	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{input: "09:30", want: time.Date(2025, 1, 15, 9, 30, 0, 0, loc)},
		{input: "9:05", want: time.Date(2025, 1, 15, 9, 5, 0, 0, loc)},
		{input: "23:59", want: time.Date(2025, 1, 15, 23, 59, 0, 0, loc)},
		{input: "24:00", wantErr: true},
		{input: "12:60", wantErr: true},
		{input: "0930", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseClock(tt.input, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClock(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParseClock(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseAbsolute_UsesReferenceLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, loc)

	got, err := ParseAbsolute("2025-01-14 17:45", now)
	if err != nil {
		t.Fatalf("ParseAbsolute() error = %v", err)
	}
	want := time.Date(2025, 1, 14, 17, 45, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("ParseAbsolute() = %v, want %v", got, want)
	}

	if _, err := ParseAbsolute("yesterday", now); err == nil {
		t.Error("ParseAbsolute(yesterday) should fail")
	}
}

func TestParseRelativeTime_ClockFirst(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	got, err := ParseRelativeTime(" 08:15 ", now)
	if err != nil {
		t.Fatalf("ParseRelativeTime() error = %v", err)
	}
	if got.Hour() != 8 || got.Minute() != 15 || got.Day() != 15 {
		t.Errorf("ParseRelativeTime(08:15) = %v", got)
	}

	got, err = ParseRelativeTime("-15m", now)
	if err != nil {
		t.Fatalf("ParseRelativeTime() error = %v", err)
	}
	if want := now.Add(-15 * time.Minute); !got.Equal(want) {
		t.Errorf("ParseRelativeTime(-15m) = %v, want %v", got, want)
	}
}
