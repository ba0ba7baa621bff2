package lifecycle

import "errors"

// Precondition errors are returned before anything is written.
var (
	ErrAlreadyActive   = errors.New("task already has an active session")
	ErrNoActiveSession = errors.New("no active session")
	ErrNoSessionToEnd  = errors.New("no session to end")
	ErrNoLocalFile     = errors.New("no local task file")
	ErrInvalidArgument = errors.New("invalid argument")
)

// ErrPersistence wraps failures to read or write the local task document.
// It is always fatal to the operation.
var ErrPersistence = errors.New("persistence failure")

// ErrSync wraps failures talking to the issue tracker. After a successful
// local write it is reported as a warning instead of being returned.
var ErrSync = errors.New("sync failure")

// ErrBatchFailed is returned by RecalculateAll when at least one file failed.
var ErrBatchFailed = errors.New("recalculation failed for one or more tasks")
