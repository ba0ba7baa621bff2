package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/comandaflow/timetrack/internal/lifecycle"
	"github.com/comandaflow/timetrack/internal/telemetry"
)

// osExit is replaced in tests.
var osExit = os.Exit

// exit flushes telemetry and terminates the process. Deferred functions do
// not run, so every failure path goes through here instead of os.Exit.
func exit(code int) {
	shutdownTelemetry()
	osExit(code)
}

func shutdownTelemetry() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	telemetry.Shutdown(ctx)
}

// FatalError writes an error message to stderr and exits with code 1.
// Use this for user input failures and unmet preconditions.
func FatalError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	exit(1)
}

// FatalErrorWithHint writes an error message with a hint to stderr and exits.
//
// Example:
//
//	FatalErrorWithHint("no task document for issue #42", "Run 'tt start 42' first")
func FatalErrorWithHint(message, hint string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
	fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	exit(1)
}

// FatalErrorRespectJSON reports err as JSON when --json is set, otherwise
// as plain text with a hint when one is known.
func FatalErrorRespectJSON(err error) {
	if jsonOutput {
		outputJSONError(err, errorCode(err))
	}
	if hint := errorHint(err); hint != "" {
		FatalErrorWithHint(err.Error(), hint)
	}
	FatalError("%v", err)
}

// WarnError writes a warning message to stderr and returns.
// Sync failures after a successful local write end up here.
func WarnError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}

// errorCode maps lifecycle errors to stable machine readable codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, lifecycle.ErrAlreadyActive):
		return "already_active"
	case errors.Is(err, lifecycle.ErrNoActiveSession):
		return "no_active_session"
	case errors.Is(err, lifecycle.ErrNoSessionToEnd):
		return "no_session_to_end"
	case errors.Is(err, lifecycle.ErrNoLocalFile):
		return "no_local_file"
	case errors.Is(err, lifecycle.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, lifecycle.ErrPersistence):
		return "persistence"
	case errors.Is(err, lifecycle.ErrSync):
		return "sync"
	case errors.Is(err, lifecycle.ErrBatchFailed):
		return "batch_failed"
	}
	return ""
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, lifecycle.ErrAlreadyActive):
		return "Run 'tt stop <issue>' to pause the running session"
	case errors.Is(err, lifecycle.ErrNoActiveSession):
		return "Run 'tt start <issue>' to begin a session"
	case errors.Is(err, lifecycle.ErrNoLocalFile):
		return "Run 'tt start <issue>' to create the task document"
	case errors.Is(err, lifecycle.ErrSync):
		return "Check github.token and github.repo with 'tt config show'"
	}
	return ""
}
