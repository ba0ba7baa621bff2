package timecalc

import (
	"fmt"
	"time"

	"github.com/comandaflow/timetrack/internal/types"
)

// InvalidSession pairs a rejected session with the reasons it was rejected.
type InvalidSession struct {
	Index   int           `json:"index"`
	Session types.Session `json:"session"`
	Errors  []string      `json:"errors"`
}

// ValidationResult is the outcome of Validate.
type ValidationResult struct {
	Valid    []types.Session  `json:"valid_sessions"`
	Invalid  []InvalidSession `json:"invalid_sessions"`
	Warnings []string         `json:"warnings"`
}

// OK reports whether no session was rejected.
func (r *ValidationResult) OK() bool {
	return len(r.Invalid) == 0
}

// Validate checks every session for required fields, field formats and
// time ordering. Running sessions produce a warning but count as valid.
func Validate(sessions []types.Session, loc *time.Location) *ValidationResult {
	result := &ValidationResult{
		Valid:    []types.Session{},
		Invalid:  []InvalidSession{},
		Warnings: []string{},
	}

	for i, s := range sessions {
		errs, warns := validateSession(i, s, loc)
		if len(errs) == 0 {
			result.Valid = append(result.Valid, s)
		} else {
			result.Invalid = append(result.Invalid, InvalidSession{Index: i, Session: s, Errors: errs})
		}
		result.Warnings = append(result.Warnings, warns...)
	}

	return result
}

func validateSession(i int, s types.Session, loc *time.Location) (errs, warns []string) {
	if !s.IsComplete() {
		return []string{fmt.Sprintf("Session %d: Missing required fields (date, start, end)", i)}, nil
	}

	if s.IsOpen() {
		return nil, []string{fmt.Sprintf("Session %d: Active session (contains %s)", i, types.OpenTime)}
	}

	if !validDate(s.Date) {
		errs = append(errs, fmt.Sprintf("Session %d: Invalid date format '%s' (expected YYYY-MM-DD)", i, s.Date))
	}
	if !validClock(s.Start) {
		errs = append(errs, fmt.Sprintf("Session %d: Invalid start time format '%s' (expected HH:MM)", i, s.Start))
	}
	if !validClock(s.End) {
		errs = append(errs, fmt.Sprintf("Session %d: Invalid end time format '%s' (expected HH:MM)", i, s.End))
	}
	if len(errs) > 0 {
		return errs, nil
	}

	start, end, err := bounds(s, loc)
	if err != nil {
		return []string{fmt.Sprintf("Session %d: Error parsing times - %v", i, err)}, nil
	}
	if !end.After(start) {
		return []string{fmt.Sprintf("Session %d: End time must be after start time", i)}, nil
	}
	return nil, nil
}

// validDate requires the strict 4-2-2 digit shape and a real calendar date.
func validDate(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// validClock requires the strict 2-2 digit shape and a real time of day,
// so "25:00" is rejected.
func validClock(s string) bool {
	if !clockPattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(ClockLayout, s)
	return err == nil
}
