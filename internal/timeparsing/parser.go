// Package timeparsing parses the --at override accepted by start, stop and end.
//
// Layers are tried in order and the first match wins:
//  1. Clock time today (09:30)
//  2. Compact duration (-15m, +1h, -1d)
//  3. Absolute timestamp (2025-01-15 09:30, RFC3339, date-only)
//  4. Natural language (yesterday 17:00, 10 minutes ago)
package timeparsing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// compactDurationRe matches compact duration patterns: [+-]?(\d+)([mhdw])
// Examples: -15m, +1h, -1d, 2w
var compactDurationRe = regexp.MustCompile(`^([+-]?)(\d+)([mhdw])$`)

var clockRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// absoluteLayouts are tried in order by ParseAbsolute.
var absoluteLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	time.RFC3339,
	"2006-01-02",
}

// ParseCompactDuration parses compact duration syntax and returns the resulting time.
//
// Format: [+-]?(\d+)([mhdw])
//
// Units:
//   - m = minutes
//   - h = hours
//   - d = days
//   - w = weeks
//
// Examples:
//   - "-15m" -> now - 15 minutes
//   - "+1h"  -> now + 1 hour
//   - "-1d"  -> now - 1 day
//   - "2w"   -> now + 2 weeks (no sign = positive)
//
// Returns error if input doesn't match the compact duration pattern.
func ParseCompactDuration(s string, now time.Time) (time.Time, error) {
	matches := compactDurationRe.FindStringSubmatch(s)
	if matches == nil {
		return time.Time{}, fmt.Errorf("not a compact duration: %q", s)
	}

	amount, err := strconv.Atoi(matches[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid duration amount: %q", matches[2])
	}
	if matches[1] == "-" {
		amount = -amount
	}

	return applyDuration(now, amount, matches[3]), nil
}

// applyDuration applies the given amount and unit to the base time.
func applyDuration(base time.Time, amount int, unit string) time.Time {
	switch unit {
	case "m":
		return base.Add(time.Duration(amount) * time.Minute)
	case "h":
		return base.Add(time.Duration(amount) * time.Hour)
	case "d":
		return base.AddDate(0, 0, amount)
	case "w":
		return base.AddDate(0, 0, amount*7)
	default:
		return base
	}
}

// IsCompactDuration returns true if the string matches compact duration syntax.
func IsCompactDuration(s string) bool {
	return compactDurationRe.MatchString(s)
}

// ParseClock parses "H:MM" or "HH:MM" as that time on now's date.
func ParseClock(s string, now time.Time) (time.Time, error) {
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("not a clock time: %q", s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return time.Time{}, fmt.Errorf("clock time out of range: %q", s)
	}
	return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location()), nil
}

// ParseAbsolute parses a timestamp in one of the absolute layouts.
// Layouts without a zone are read in now's location.
func ParseAbsolute(s string, now time.Time) (time.Time, error) {
	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("not an absolute timestamp: %q", s)
}

// ParseNaturalLanguage parses English expressions such as "yesterday",
// "tomorrow at 9am" or "3 days ago" relative to now.
func ParseNaturalLanguage(s string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, fmt.Errorf("empty time expression")
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %q: %w", s, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("unrecognized time expression: %q", s)
	}
	return r.Time, nil
}

// ParseRelativeTime tries every layer in order and returns the first match.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)

	if t, err := ParseClock(s, now); err == nil {
		return t, nil
	}
	if IsCompactDuration(s) {
		return ParseCompactDuration(s, now)
	}
	if t, err := ParseAbsolute(s, now); err == nil {
		return t, nil
	}
	if t, err := ParseNaturalLanguage(s, now); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q (use HH:MM, -15m, 2025-01-15 09:30 or e.g. \"yesterday 17:00\")", s)
}
