package timecalc

import (
	"strings"
	"testing"
	"time"

	"github.com/comandaflow/timetrack/internal/types"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		session      types.Session
		wantValid    bool
		wantErrors   int
		wantWarnings int
		errContains  string
	}{
		{"valid", sess("2025-01-15", "09:00", "10:00"), true, 0, 0, ""},
		{"running is a warning", sess("2025-01-15", "09:00", types.OpenTime), true, 0, 1, ""},
		{"placeholder is a warning", sess("2025-01-15", types.OpenTime, types.OpenTime), true, 0, 1, ""},
		{"missing fields", sess("", "09:00", "10:00"), false, 1, 0, "Missing required fields"},
		{"bad date shape", sess("2025-1-15", "09:00", "10:00"), false, 1, 0, "Invalid date format"},
		{"impossible date", sess("2025-13-40", "09:00", "10:00"), false, 1, 0, "Invalid date format"},
		{"hour out of range", sess("2025-01-15", "25:00", "26:00"), false, 2, 0, "Invalid start time format '25:00'"},
		{"bad end shape", sess("2025-01-15", "09:00", "9:30"), false, 1, 0, "Invalid end time format"},
		{"end before start", sess("2025-01-15", "10:00", "09:00"), false, 1, 0, "End time must be after start time"},
		{"zero length", sess("2025-01-15", "10:00", "10:00"), false, 1, 0, "End time must be after start time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate([]types.Session{tt.session}, time.UTC)

			if got := len(res.Valid) == 1; got != tt.wantValid {
				t.Errorf("valid = %v, want %v", got, tt.wantValid)
			}
			if res.OK() != tt.wantValid {
				t.Errorf("OK() = %v, want %v", res.OK(), tt.wantValid)
			}
			if len(res.Warnings) != tt.wantWarnings {
				t.Errorf("warnings = %v, want %d", res.Warnings, tt.wantWarnings)
			}
			if tt.wantValid {
				return
			}
			if len(res.Invalid) != 1 {
				t.Fatalf("invalid = %d sessions, want 1", len(res.Invalid))
			}
			errs := res.Invalid[0].Errors
			if len(errs) != tt.wantErrors {
				t.Errorf("errors = %v, want %d", errs, tt.wantErrors)
			}
			if !strings.Contains(strings.Join(errs, "; "), tt.errContains) {
				t.Errorf("errors = %v, want one containing %q", errs, tt.errContains)
			}
		})
	}
}

func TestValidate_IndexesAndSeparation(t *testing.T) {
	sessions := []types.Session{
		sess("2025-01-15", "09:00", "10:00"),
		sess("2025-01-15", "25:00", "10:00"),
		sess("2025-01-15", "11:00", types.OpenTime),
	}

	res := Validate(sessions, time.UTC)

	if len(res.Valid) != 2 {
		t.Errorf("valid = %d, want 2", len(res.Valid))
	}
	if len(res.Invalid) != 1 || res.Invalid[0].Index != 1 {
		t.Fatalf("invalid = %+v, want session 1", res.Invalid)
	}
	if !strings.HasPrefix(res.Invalid[0].Errors[0], "Session 1:") {
		t.Errorf("error = %q, want prefix %q", res.Invalid[0].Errors[0], "Session 1:")
	}
	if len(res.Warnings) != 1 || !strings.HasPrefix(res.Warnings[0], "Session 2:") {
		t.Errorf("warnings = %v, want one for session 2", res.Warnings)
	}
}
