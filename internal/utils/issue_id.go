package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// issueURL matches https://github.com/<owner>/<repo>/issues/<n> and the
// equivalent pull request URLs.
var issueURL = regexp.MustCompile(`/(?:issues|pull)/(\d+)/?$`)

// ParseIssueNumber parses a user supplied issue reference.
// Accepts plain numbers ("42"), hash prefixed numbers ("#42") and issue URLs.
// The result is always a positive integer.
func ParseIssueNumber(input string) (int, error) {
	s := strings.TrimSpace(input)
	if m := issueURL.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	s = strings.TrimPrefix(s, "#")

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid issue number %q", input)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid issue number %q: must be positive", input)
	}
	return n, nil
}
