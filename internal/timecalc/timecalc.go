// Package timecalc implements the arithmetic over session lists: totals,
// duration formatting, validation and the session open/close transitions.
//
// Nothing in this package touches files or the network.
package timecalc

import (
	"fmt"
	"regexp"
	"time"

	"github.com/comandaflow/timetrack/internal/types"
)

// Layouts used for session fields.
const (
	DateLayout     = "2006-01-02"
	ClockLayout    = "15:04"
	dateTimeLayout = DateLayout + " " + ClockLayout

	// EndOfDay closes the first half of a session that crosses midnight.
	EndOfDay = "23:59"
	// StartOfDay opens the second half of a session that crosses midnight.
	StartOfDay = "00:00"
)

var (
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	clockPattern = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// bounds resolves the start and end instants of a closed session in loc.
func bounds(s types.Session, loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(dateTimeLayout, s.Date+" "+s.Start, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.ParseInLocation(dateTimeLayout, s.Date+" "+s.End, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// SessionMinutes returns the elapsed minutes of one session, or 0 when the
// session is incomplete, still open, unparsable or not strictly positive.
func SessionMinutes(s types.Session, loc *time.Location) int {
	if !s.IsComplete() || s.IsOpen() {
		return 0
	}
	start, end, err := bounds(s, loc)
	if err != nil || !end.After(start) {
		return 0
	}
	return int(end.Sub(start) / time.Minute)
}

// TotalMinutes sums the elapsed minutes of every closed session.
// Each session is evaluated against its own date.
func TotalMinutes(sessions []types.Session, loc *time.Location) int {
	total := 0
	for _, s := range sessions {
		total += SessionMinutes(s, loc)
	}
	return total
}

// FormatDuration renders minutes as "1h 30m", "45m" or "2h".
// Zero renders as types.NoValue.
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		return types.NoValue
	}

	hours := minutes / 60
	rem := minutes % 60

	if hours == 0 {
		return fmt.Sprintf("%dm", rem)
	}
	if rem == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, rem)
}

// Tracked is a convenience for FormatDuration(TotalMinutes(sessions, loc)).
func Tracked(sessions []types.Session, loc *time.Location) (int, string) {
	minutes := TotalMinutes(sessions, loc)
	return minutes, FormatDuration(minutes)
}

// HasActive reports whether any session is running.
func HasActive(sessions []types.Session) bool {
	for _, s := range sessions {
		if s.IsActive() {
			return true
		}
	}
	return false
}

// HasRecorded reports whether any session other than a placeholder exists.
func HasRecorded(sessions []types.Session) bool {
	for _, s := range sessions {
		if !s.IsPlaceholder() {
			return true
		}
	}
	return false
}

// OpenSession drops placeholder sessions and appends a running session
// starting at the given instant. The input slice is not modified.
func OpenSession(sessions []types.Session, at time.Time) []types.Session {
	out := make([]types.Session, 0, len(sessions)+1)
	for _, s := range sessions {
		if s.IsPlaceholder() {
			continue
		}
		out = append(out, s)
	}
	return append(out, types.Session{
		Date:  at.Format(DateLayout),
		Start: at.Format(ClockLayout),
		End:   types.OpenTime,
	})
}

// CloseActive closes the first running session at the given instant.
//
// When the instant falls on a later date than the session, the session
// ends at 23:59 of its own date and a new closed session 00:00-at is
// appended on the instant's date. Returns false if nothing was running.
// The input slice is not modified. Callers reject instants that are not
// after the session start; see ActiveStart.
func CloseActive(sessions []types.Session, at time.Time) ([]types.Session, bool) {
	out := make([]types.Session, len(sessions), len(sessions)+1)
	copy(out, sessions)

	date := at.Format(DateLayout)
	clock := at.Format(ClockLayout)

	for i := range out {
		if !out[i].IsActive() {
			continue
		}
		// YYYY-MM-DD compares in date order.
		if date <= out[i].Date {
			out[i].End = clock
			return out, true
		}
		out[i].End = EndOfDay
		out = append(out, types.Session{Date: date, Start: StartOfDay, End: clock})
		return out, true
	}
	return out, false
}

// ActiveStart returns the start instant of the first running session.
// ok is false when nothing is running or its start does not parse.
func ActiveStart(sessions []types.Session, loc *time.Location) (time.Time, bool) {
	for _, s := range sessions {
		if !s.IsActive() {
			continue
		}
		start, err := time.ParseInLocation(dateTimeLayout, s.Date+" "+s.Start, loc)
		if err != nil {
			return time.Time{}, false
		}
		return start, true
	}
	return time.Time{}, false
}

// LatestEnd returns the latest end instant among the closed sessions that
// carry elapsed time.
func LatestEnd(sessions []types.Session, loc *time.Location) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, s := range sessions {
		if !s.IsComplete() || s.IsOpen() {
			continue
		}
		start, end, err := bounds(s, loc)
		if err != nil || !end.After(start) {
			continue
		}
		if !found || end.After(latest) {
			latest = end
			found = true
		}
	}
	return latest, found
}

// EarliestDate returns the earliest well-formed session date.
func EarliestDate(sessions []types.Session, loc *time.Location) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, s := range sessions {
		if !datePattern.MatchString(s.Date) {
			continue
		}
		d, err := time.ParseInLocation(DateLayout, s.Date, loc)
		if err != nil {
			continue
		}
		if !found || d.Before(earliest) {
			earliest = d
			found = true
		}
	}
	return earliest, found
}
