package ui

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"
)

// PagerOptions controls pager behavior
type PagerOptions struct {
	// NoPager disables pager for this command (--no-pager flag)
	NoPager bool
}

// shouldUsePager returns false when paging is disabled by flag or TT_NO_PAGER,
// or when stdout is not a terminal.
func shouldUsePager(opts PagerOptions) bool {
	if opts.NoPager || os.Getenv("TT_NO_PAGER") != "" {
		return false
	}
	return IsTerminal()
}

// pagerCommand checks TT_PAGER, then PAGER, defaults to "less".
func pagerCommand() string {
	if pager := os.Getenv("TT_PAGER"); pager != "" {
		return pager
	}
	if pager := os.Getenv("PAGER"); pager != "" {
		return pager
	}
	return "less"
}

// terminalHeight returns 0 if stdout is not a TTY.
func terminalHeight() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	_, height, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return height
}

func lineCount(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(content, "\n") + 1
}

// ToPager writes content through a pager when stdout is a terminal and the
// content does not fit on one screen. Otherwise it prints directly.
func ToPager(content string, opts PagerOptions) error {
	return toPager(os.Stdout, content, opts)
}

func toPager(w io.Writer, content string, opts PagerOptions) error {
	if !shouldUsePager(opts) {
		_, err := fmt.Fprint(w, content)
		return err
	}

	if h := terminalHeight(); h > 0 && lineCount(content) <= h-1 {
		_, err := fmt.Fprint(w, content)
		return err
	}

	// May include arguments like "less -R"
	parts := strings.Fields(pagerCommand())
	if len(parts) == 0 {
		_, err := fmt.Fprint(w, content)
		return err
	}

	cmd := exec.Command(parts[0], parts[1:]...) // #nosec G204 - pager command is user-configurable
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = w
	cmd.Stderr = os.Stderr

	// -R keeps ANSI colors, -F quits when content fits, -X leaves the screen
	cmd.Env = os.Environ()
	if os.Getenv("LESS") == "" {
		cmd.Env = append(cmd.Env, "LESS=-RFX")
	}

	return cmd.Run()
}
