package document

import (
	"regexp"
	"strings"

	"github.com/comandaflow/timetrack/internal/types"
)

const (
	indicatorOpen  = "<!-- STATUS_INDICATOR -->"
	indicatorClose = "<!-- /STATUS_INDICATOR -->"
	wipTag         = "[WIP]"
)

var (
	indicatorPattern = regexp.MustCompile(`(?s)<!-- STATUS_INDICATOR -->.*?<!-- /STATUS_INDICATOR -->\s*`)
	titleEmoji       = regexp.MustCompile(`^(?:🟡|🟠|🟢)\s*`)
	titleWIP         = regexp.MustCompile(`\s*\[WIP\]\s*`)
	spaces           = regexp.MustCompile(`\s{2,}`)
)

// statusLabels are shown at the top of the remote issue body.
var statusLabels = map[types.Status]string{
	types.StatusInProgress: "🟡 **In Progress**",
	types.StatusWaiting:    "🟠 **Waiting**",
	types.StatusCompleted:  "🟢 **Completed**",
}

// titlePrefixes decorate the remote issue title.
var titlePrefixes = map[types.Status]string{
	types.StatusInProgress: "🟡 " + wipTag + " ",
	types.StatusWaiting:    "🟠 " + wipTag + " ",
	types.StatusCompleted:  "🟢 ",
}

// StripStatusIndicator removes a status block written by WithStatusIndicator.
func StripStatusIndicator(body string) string {
	return indicatorPattern.ReplaceAllString(body, "")
}

// WithStatusIndicator prepends a status block to body, replacing any
// previous one. Statuses without a label leave body untouched.
func WithStatusIndicator(body string, status types.Status) string {
	label, ok := statusLabels[status]
	if !ok {
		return body
	}
	return indicatorOpen + "\n" + label + "\n" + indicatorClose + "\n\n" + StripStatusIndicator(body)
}

// CleanTitle removes status decorations from an issue title.
func CleanTitle(title string) string {
	title = titleEmoji.ReplaceAllString(strings.TrimSpace(title), "")
	title = titleWIP.ReplaceAllString(title, " ")
	return strings.TrimSpace(spaces.ReplaceAllString(title, " "))
}

// DecorateTitle returns title prefixed with the status emoji (and [WIP]
// while work is unfinished).
func DecorateTitle(title string, status types.Status) string {
	return titlePrefixes[status] + CleanTitle(title)
}
