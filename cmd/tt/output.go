package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/comandaflow/timetrack/internal/debug"
	"github.com/comandaflow/timetrack/internal/lifecycle"
	"github.com/comandaflow/timetrack/internal/timecalc"
	"github.com/comandaflow/timetrack/internal/types"
	"github.com/comandaflow/timetrack/internal/ui"
)

// outputJSON outputs data as pretty-printed JSON
func outputJSON(v interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		exit(1)
	}
}

// outputJSONError outputs an error as JSON to stderr and exits with code 1.
func outputJSONError(err error, code string) {
	errObj := map[string]string{"error": err.Error()}
	if code != "" {
		errObj["code"] = code
	}
	encoder := json.NewEncoder(os.Stderr)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(errObj)
	exit(1)
}

// report prints the outcome of a single lifecycle operation.
func report(res *lifecycle.Result) {
	reportAs(res, verb(res))
}

func reportAs(res *lifecycle.Result, what string) {
	if jsonOutput {
		outputJSON(res)
		return
	}
	for _, w := range res.Warnings {
		WarnError("%s", w)
	}
	if debug.IsQuiet() {
		return
	}
	writeResult(os.Stdout, what, res)
}

func verb(res *lifecycle.Result) string {
	switch {
	case res.DryRun:
		return "Would update"
	case res.Created:
		return "Created"
	case !res.Changed:
		return "Unchanged"
	}
	return "Updated"
}

func writeResult(w io.Writer, what string, res *lifecycle.Result) {
	fmt.Fprintf(w, "%s %s #%d %s\n", ui.RenderPassIcon(), what, res.Issue, ui.RenderMuted(res.Path))
	fmt.Fprintf(w, "  Status:  %s\n", ui.RenderStatus(res.Status))
	fmt.Fprintf(w, "  Tracked: %s", ui.RenderBold(res.Tracked))
	if res.PreviousTracked != "" && res.PreviousTracked != res.Tracked {
		fmt.Fprintf(w, " %s", ui.RenderMuted("(was "+res.PreviousTracked+")"))
	}
	fmt.Fprintln(w)
	if res.Synced {
		fmt.Fprintf(w, "  %s synced to GitHub\n", ui.RenderAccent("↑"))
	}
	if v := res.Validation; v != nil {
		writeValidation(w, v.Invalid, v.Warnings)
	}
}

func writeValidation(w io.Writer, invalid []timecalc.InvalidSession, warnings []string) {
	for _, inv := range invalid {
		fmt.Fprintf(w, "  %s session %d (%s %s-%s): %s\n", ui.RenderFailIcon(),
			inv.Index+1, inv.Session.Date, inv.Session.Start, inv.Session.End,
			strings.Join(inv.Errors, "; "))
	}
	for _, msg := range warnings {
		fmt.Fprintf(w, "  %s %s\n", ui.RenderWarnIcon(), msg)
	}
}

// writeSessions renders the session table used by the status command.
func writeSessions(w io.Writer, sessions []types.Session) {
	if len(sessions) == 0 {
		fmt.Fprintf(w, "  %s\n", ui.RenderMuted("no sessions"))
		return
	}
	for i, s := range sessions {
		line := fmt.Sprintf("%3d. %s  %s → %s", i+1, s.Date, s.Start, s.End)
		if s.IsActive() {
			line += "  " + ui.RenderAccent("running")
		}
		fmt.Fprintf(w, "  %s\n", strings.TrimRight(line, " "))
	}
}
