package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/comandaflow/timetrack/internal/debug"
	"github.com/comandaflow/timetrack/internal/lifecycle"
	"github.com/comandaflow/timetrack/internal/ui"
)

var recalculateCmd = &cobra.Command{
	Use:     "recalculate [issue]",
	Aliases: []string{"recalc"},
	GroupID: "tracking",
	Short:   "Recompute tracked time from the sessions",
	Long: `Recompute the tracked total of a task from its sessions and rewrite it.

Without an issue every task document under tasks.path is recalculated.
Failures on single files are reported and the batch continues; the command
exits non-zero when at least one file failed.

A task with no local document is rebuilt from the GitHub issue body.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		validate, _ := cmd.Flags().GetBool("validate")
		noSync, _ := cmd.Flags().GetBool("no-sync")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		opts := lifecycle.RecalcOptions{Validate: validate, Sync: !noSync, DryRun: dryRun}

		ctrl := newController()
		if len(args) == 1 {
			res, err := ctrl.Recalculate(rootCtx, issueArg(args[0]), opts)
			if err != nil {
				FatalErrorRespectJSON(err)
			}
			report(res)
			return
		}

		batch, err := ctrl.RecalculateAll(rootCtx, opts)
		if jsonOutput {
			outputJSON(batch)
			if err != nil {
				exit(1)
			}
			return
		}
		if batch != nil && err == nil && len(batch.Results) == 0 && len(batch.Failures) == 0 {
			debug.PrintlnNormal("No task documents found.")
			return
		}
		if batch != nil {
			for _, res := range batch.Results {
				for _, w := range res.Warnings {
					WarnError("#%d: %s", res.Issue, w)
				}
			}
			if !debug.IsQuiet() {
				writeBatch(os.Stdout, batch)
			}
		}
		if err != nil {
			FatalErrorRespectJSON(err)
		}
	},
}

func writeBatch(w io.Writer, batch *lifecycle.BatchResult) {
	for _, res := range batch.Results {
		if !res.Changed {
			continue
		}
		writeResult(w, verb(res), res)
	}
	for _, f := range batch.Failures {
		fmt.Fprintf(w, "%s %s: %s\n", ui.RenderFailIcon(), f.Path, f.Error)
	}
	fmt.Fprintf(w, "\n%s %d recalculated, %d failed\n",
		ui.RenderInfoIcon(), batch.Succeeded, batch.Failed)
}

func init() {
	recalculateCmd.Flags().Bool("validate", false, "Report invalid sessions and warnings")
	recalculateCmd.Flags().Bool("no-sync", false, "Write locally only, skip GitHub")
	recalculateCmd.Flags().Bool("dry-run", false, "Compute and report without writing")
	rootCmd.AddCommand(recalculateCmd)
}
