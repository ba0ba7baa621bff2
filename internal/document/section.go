// Package document reads and writes the time tracking section embedded in
// a markdown task document.
//
// The section looks like:
//
//	## ⏱️ Time
//	### 📊 Estimates
//	- **Optimistic:** `2h`
//	- **Pessimistic:** `4h`
//	- **Tracked:** `1h 30m`
//
//	### 📅 Sessions
//	```json
//	[
//	    {"date": "2025-01-15", "start": "09:00", "end": "10:30"}
//	]
//	```
//
// Everything outside the section is left untouched.
package document

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/comandaflow/timetrack/internal/types"
)

// Section markers.
const (
	TimeHeading      = "## ⏱️ Time"
	EstimatesHeading = "### 📊 Estimates"
	SessionsHeading  = "### 📅 Sessions"

	jsonFence  = "```json"
	fence      = "```"
	nextHeader = "\n## "
)

var (
	optimisticPattern  = regexp.MustCompile("- \\*\\*Optimistic:\\*\\* `([^`]+)`")
	pessimisticPattern = regexp.MustCompile("- \\*\\*Pessimistic:\\*\\* `([^`]+)`")
	trackedPattern     = regexp.MustCompile("(-\\s*\\*\\*Tracked:\\*\\*\\s*`)[^`]*(`)")
	trackedValue       = regexp.MustCompile("-\\s*\\*\\*Tracked:\\*\\*\\s*`([^`]*)`")
)

// findSection returns the byte range of the Time section. The section runs
// from its heading (a whole line of its own) up to the next level-2 heading
// or the end of the document.
func findSection(doc string) (start, end int, ok bool) {
	offset := 0
	for {
		i := strings.Index(doc[offset:], TimeHeading)
		if i < 0 {
			return 0, 0, false
		}
		start = offset + i
		if (start == 0 || doc[start-1] == '\n') && headingEnds(doc[start+len(TimeHeading):]) {
			break
		}
		offset = start + len(TimeHeading)
	}

	body := start + len(TimeHeading)
	if j := strings.Index(doc[body:], nextHeader); j >= 0 {
		return start, body + j, true
	}
	return start, len(doc), true
}

// headingEnds reports whether rest, the text after a heading, starts with
// the end of its line. Trailing blanks are allowed.
func headingEnds(rest string) bool {
	rest = strings.TrimLeft(rest, " \t")
	return rest == "" || rest[0] == '\n' || strings.HasPrefix(rest, "\r\n")
}

// sessionsJSON locates the JSON payload of the Sessions block.
func sessionsJSON(section string) (string, bool) {
	i := strings.Index(section, SessionsHeading)
	if i < 0 {
		return "", false
	}
	rest := section[i+len(SessionsHeading):]

	open := strings.Index(rest, jsonFence)
	if open < 0 || strings.TrimSpace(rest[:open]) != "" {
		return "", false
	}
	rest = rest[open+len(jsonFence):]

	closing := strings.Index(rest, fence)
	if closing < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:closing]), true
}

// ParseSessions decodes the session list of the document. found is false
// when the section or its JSON block is missing or malformed; it never
// returns an error.
func ParseSessions(doc string) (sessions []types.Session, found bool) {
	start, end, ok := findSection(doc)
	if !ok {
		return nil, false
	}
	payload, ok := sessionsJSON(doc[start:end])
	if !ok || payload == "null" {
		return nil, false
	}
	if err := json.Unmarshal([]byte(payload), &sessions); err != nil {
		return nil, false
	}
	if sessions == nil {
		sessions = []types.Session{}
	}
	return sessions, true
}

// ExtractSessions returns the document's sessions, or a single placeholder
// session dated today when the document has none. today is YYYY-MM-DD.
func ExtractSessions(doc, today string) []types.Session {
	if sessions, ok := ParseSessions(doc); ok {
		return sessions
	}
	return []types.Session{{Date: today, Start: types.OpenTime, End: types.OpenTime}}
}

// ExtractEstimates reads the optimistic and pessimistic estimates.
// Missing values default to types.NoValue.
func ExtractEstimates(doc string) types.Estimates {
	est := types.DefaultEstimates()
	if m := optimisticPattern.FindStringSubmatch(doc); m != nil {
		est.Optimistic = m[1]
	}
	if m := pessimisticPattern.FindStringSubmatch(doc); m != nil {
		est.Pessimistic = m[1]
	}
	return est
}

// quote encodes s as a JSON string without HTML escaping.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s) // encoding a string cannot fail
	return strings.TrimSuffix(buf.String(), "\n")
}

// renderSessions writes one session object per line in date, start, end order.
func renderSessions(sessions []types.Session) string {
	lines := make([]string, len(sessions))
	for i, s := range sessions {
		lines[i] = `    {"date": ` + quote(s.Date) + `, "start": ` + quote(s.Start) + `, "end": ` + quote(s.End) + `}`
	}
	return "[\n" + strings.Join(lines, ",\n") + "\n]"
}

// RenderSection renders the complete Time section.
func RenderSection(sessions []types.Session, tracked string, est types.Estimates) string {
	var b strings.Builder
	b.WriteString(TimeHeading + "\n")
	b.WriteString(EstimatesHeading + "\n")
	b.WriteString("- **Optimistic:** `" + est.Optimistic + "`\n")
	b.WriteString("- **Pessimistic:** `" + est.Pessimistic + "`\n")
	b.WriteString("- **Tracked:** `" + tracked + "`\n\n")
	b.WriteString(SessionsHeading + "\n")
	b.WriteString(jsonFence + "\n")
	b.WriteString(renderSessions(sessions))
	b.WriteString("\n" + fence)
	return b.String()
}

// UpdateDocument writes sessions and the tracked duration into doc,
// replacing the existing Time section in place or appending a new one.
// Estimates already present in doc are preserved.
func UpdateDocument(doc string, sessions []types.Session, tracked string) string {
	section := RenderSection(sessions, tracked, ExtractEstimates(doc))

	start, end, ok := findSection(doc)
	if !ok {
		if strings.TrimSpace(doc) == "" {
			return section
		}
		return doc + "\n\n" + section
	}

	old := doc[start:end]
	trailing := old[len(strings.TrimRight(old, " \t\r\n")):]
	return doc[:start] + section + trailing + doc[end:]
}

// SetTracked rewrites the value of the Tracked line. It returns false and
// doc unchanged when the document has no Tracked line.
func SetTracked(doc, tracked string) (string, bool) {
	if !trackedPattern.MatchString(doc) {
		return doc, false
	}
	return trackedPattern.ReplaceAllStringFunc(doc, func(m string) string {
		parts := trackedPattern.FindStringSubmatch(m)
		return parts[1] + tracked + parts[2]
	}), true
}

// Tracked returns the value of the Tracked line.
func Tracked(doc string) (string, bool) {
	m := trackedValue.FindStringSubmatch(doc)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// HasSection reports whether doc contains a Time section.
func HasSection(doc string) bool {
	_, _, ok := findSection(doc)
	return ok
}
