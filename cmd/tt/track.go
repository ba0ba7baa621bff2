package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/comandaflow/timetrack/internal/lifecycle"
	"github.com/comandaflow/timetrack/internal/utils"
)

var startCmd = &cobra.Command{
	Use:     "start <issue>",
	GroupID: "tracking",
	Short:   "Start a work session on an issue",
	Long: `Start a work session on an issue.

Creates the task document from the GitHub issue when none exists yet, opens
a session at the current time and moves the issue to "in progress".
Fails if a session is already running.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		issue, at := issueAndAt(cmd, args[0])
		res, err := newController().Start(rootCtx, issue, at)
		if err != nil {
			FatalErrorRespectJSON(err)
		}
		report(res)
	},
}

var stopCmd = &cobra.Command{
	Use:     "stop <issue>",
	GroupID: "tracking",
	Short:   "Pause the running session",
	Long: `Pause the running session of an issue.

A session started before midnight is closed at 23:59 of its own day and a
new session from 00:00 is recorded for the remainder.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		issue, at := issueAndAt(cmd, args[0])
		res, err := newController().Stop(rootCtx, issue, at)
		if err != nil {
			FatalErrorRespectJSON(err)
		}
		report(res)
	},
}

var endCmd = &cobra.Command{
	Use:     "end <issue> [closure-minutes]",
	GroupID: "tracking",
	Short:   "Finish the task",
	Long: fmt.Sprintf(`Finish the task and mark it completed.

A running session is closed now plus closure-minutes (0 to %d, default 0),
covering wrap-up work done after the last command. A paused task keeps its
sessions unchanged.`, lifecycle.MaxClosureMinutes),
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		issue, at := issueAndAt(cmd, args[0])
		closure := 0
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				FatalErrorRespectJSON(fmt.Errorf("%w: invalid closure minutes %q", lifecycle.ErrInvalidArgument, args[1]))
			}
			closure = n
		}
		res, err := newController().End(rootCtx, issue, closure, at)
		if err != nil {
			FatalErrorRespectJSON(err)
		}
		report(res)
	},
}

var uploadCmd = &cobra.Command{
	Use:     "upload <issue>",
	GroupID: "tracking",
	Short:   "Push the task document to the issue body",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		issue := issueArg(args[0])
		res, err := newController().Upload(rootCtx, issue)
		if err != nil {
			FatalErrorRespectJSON(err)
		}
		reportAs(res, "Uploaded")
	},
}

func issueArg(s string) int {
	issue, err := utils.ParseIssueNumber(s)
	if err != nil {
		FatalErrorRespectJSON(fmt.Errorf("%w: %v", lifecycle.ErrInvalidArgument, err))
	}
	return issue
}

func issueAndAt(cmd *cobra.Command, s string) (int, time.Time) {
	issue := issueArg(s)
	value, _ := cmd.Flags().GetString("at")
	at, err := parseAt(value, cfg.Location(), time.Now())
	if err != nil {
		FatalErrorRespectJSON(fmt.Errorf("%w: --at: %v", lifecycle.ErrInvalidArgument, err))
	}
	return issue, at
}

func init() {
	for _, c := range []*cobra.Command{startCmd, stopCmd, endCmd} {
		c.Flags().String("at", "", `Use this time instead of now (09:30, -15m, "yesterday 17:00")`)
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(uploadCmd)
}
