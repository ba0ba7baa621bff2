package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/comandaflow/timetrack/internal/lifecycle"
	"github.com/comandaflow/timetrack/internal/ui"
)

var showCmd = &cobra.Command{
	Use:     "show <issue>",
	GroupID: "views",
	Short:   "Render the task document",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		snap := inspect(args[0])
		if jsonOutput {
			outputJSON(map[string]interface{}{
				"issue":   snap.Issue,
				"path":    snap.Path,
				"content": snap.Content,
			})
			return
		}
		noPager, _ := cmd.Flags().GetBool("no-pager")
		if err := ui.ToPager(ui.RenderMarkdown(snap.Content), ui.PagerOptions{NoPager: noPager}); err != nil {
			FatalError("%v", err)
		}
	},
}

var statusCmd = &cobra.Command{
	Use:     "status <issue>",
	GroupID: "views",
	Short:   "Show the derived status, sessions and total of a task",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		snap := inspect(args[0])
		if jsonOutput {
			outputJSON(snap)
			return
		}
		writeStatus(os.Stdout, snap)
	},
}

func inspect(arg string) *lifecycle.Snapshot {
	snap, err := newController().Inspect(rootCtx, issueArg(arg))
	if err != nil {
		FatalErrorRespectJSON(err)
	}
	return snap
}

func writeStatus(w io.Writer, snap *lifecycle.Snapshot) {
	fmt.Fprintf(w, "%s #%d %s\n", ui.RenderStatus(snap.Status), snap.Issue, ui.RenderMuted(snap.Path))
	if !snap.HasSection {
		fmt.Fprintf(w, "  %s\n", ui.RenderMuted("not started yet"))
		return
	}
	fmt.Fprintf(w, "  Estimates: %s optimistic, %s pessimistic\n", snap.Estimates.Optimistic, snap.Estimates.Pessimistic)
	fmt.Fprintf(w, "  Tracked:   %s", ui.RenderBold(snap.Tracked))
	if snap.PreviousTracked != "" && snap.PreviousTracked != snap.Tracked {
		fmt.Fprintf(w, " %s", ui.RenderWarn("(document says "+snap.PreviousTracked+", run 'tt recalculate')"))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Sessions:")
	writeSessions(w, snap.Sessions)
}

func init() {
	showCmd.Flags().Bool("no-pager", false, "Print directly instead of through a pager")
	rootCmd.AddCommand(showCmd, statusCmd)
}
