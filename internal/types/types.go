// Package types defines the core data structures for the time tracker.
package types

// OpenTime marks a session time that has not been recorded yet.
// A session whose End is OpenTime is still running.
const OpenTime = "HH:MM"

// NoValue is rendered wherever a duration or estimate has not been set.
const NoValue = "—"

// Session is one contiguous tracked work interval.
// Field order matters: it is the order written to the task document.
type Session struct {
	Date  string `json:"date"`  // YYYY-MM-DD
	Start string `json:"start"` // HH:MM or OpenTime
	End   string `json:"end"`   // HH:MM or OpenTime
}

// IsComplete reports whether all three fields are present.
func (s Session) IsComplete() bool {
	return s.Date != "" && s.Start != "" && s.End != ""
}

// IsPlaceholder reports whether the session is an empty template entry
// (both times open). Placeholders carry no elapsed time.
func (s Session) IsPlaceholder() bool {
	return s.Start == OpenTime && s.End == OpenTime
}

// IsActive reports whether the session is currently running.
func (s Session) IsActive() bool {
	return s.End == OpenTime && s.Start != OpenTime && s.Start != ""
}

// IsOpen reports whether either time is still the open sentinel.
func (s Session) IsOpen() bool {
	return s.Start == OpenTime || s.End == OpenTime
}

// Status is the derived state of a task. It is never stored; see DeriveStatus.
type Status string

// Task status constants
const (
	StatusNone       Status = "none"
	StatusInProgress Status = "in-progress"
	StatusWaiting    Status = "waiting"
	StatusCompleted  Status = "completed"
)

// IsValid checks if the status value is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusNone, StatusInProgress, StatusWaiting, StatusCompleted:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}

// DeriveStatus computes the task status from its sessions.
// completed is the explicit terminal assertion made by the end command;
// without it a closed task is indistinguishable from a paused one.
func DeriveStatus(sessions []Session, completed bool) Status {
	if completed {
		return StatusCompleted
	}
	recorded := false
	for _, s := range sessions {
		if s.IsActive() {
			return StatusInProgress
		}
		if !s.IsPlaceholder() {
			recorded = true
		}
	}
	if recorded {
		return StatusWaiting
	}
	return StatusNone
}

// Estimates holds the free-form estimate strings of a task document.
type Estimates struct {
	Optimistic  string `json:"optimistic"`
	Pessimistic string `json:"pessimistic"`
}

// DefaultEstimates returns estimates with both values unset.
func DefaultEstimates() Estimates {
	return Estimates{Optimistic: NoValue, Pessimistic: NoValue}
}

// Issue is the part of a remote issue the tracker needs.
type Issue struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}
