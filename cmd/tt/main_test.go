package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comandaflow/timetrack/internal/config"
	"github.com/comandaflow/timetrack/internal/github"
	"github.com/comandaflow/timetrack/internal/lifecycle"
	"github.com/comandaflow/timetrack/internal/timecalc"
	"github.com/comandaflow/timetrack/internal/types"
	"github.com/comandaflow/timetrack/internal/ui"
)

func TestMain(m *testing.M) {
	os.Setenv("NO_COLOR", "1")
	ui.ApplyColorProfile()
	os.Exit(m.Run())
}

func TestNewTracker(t *testing.T) {
	t.Setenv("TT_OTEL_ENABLED", "")
	tr, err := newTracker(&config.Config{})
	require.NoError(t, err)
	assert.Nil(t, tr, "no token means local only")

	_, err = newTracker(&config.Config{GitHub: config.GitHubConfig{Token: "t", Repo: "not-a-repo"}})
	assert.Error(t, err)

	tr, err = newTracker(&config.Config{GitHub: config.GitHubConfig{
		Token:      "t",
		Repo:       "acme/widgets",
		APIURL:     "http://localhost:1234",
		GraphQLURL: "http://localhost:1234/graphql",
	}})
	require.NoError(t, err)
	client, ok := tr.(*github.Client)
	require.True(t, ok)
	assert.Equal(t, "acme", client.Owner)
	assert.Equal(t, "widgets", client.Repo)
	assert.Equal(t, "http://localhost:1234", client.BaseURL)
	assert.Equal(t, "http://localhost:1234/graphql", client.GraphQLURL)
}

func TestProjectConfig(t *testing.T) {
	got := projectConfig(config.ProjectConfig{
		ID:            "PVT_1",
		Number:        3,
		StatusFieldID: "FIELD",
		Options: map[string]string{
			"in-progress": "opt-a",
			"waiting":     "opt-b",
			"completed":   "",
			"bogus":       "opt-x",
		},
	})
	assert.Equal(t, "PVT_1", got.ID)
	assert.Equal(t, 3, got.Number)
	assert.Equal(t, "FIELD", got.StatusFieldID)
	assert.Equal(t, map[types.Status]string{
		types.StatusInProgress: "opt-a",
		types.StatusWaiting:    "opt-b",
	}, got.Options)
	assert.True(t, got.Configured())
}

func TestParseAt(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	now := time.Date(2025, 1, 15, 17, 0, 0, 0, time.UTC) // 12:00 in loc

	at, err := parseAt("", loc, now)
	require.NoError(t, err)
	assert.True(t, at.IsZero(), "empty means now")

	at, err = parseAt("09:30", loc, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 15, 9, 30, 0, 0, loc), at)

	at, err = parseAt("-15m", loc, now)
	require.NoError(t, err)
	assert.Equal(t, "11:45", at.Format("15:04"))
	assert.Equal(t, loc, at.Location())

	_, err = parseAt("xyzzy", loc, now)
	assert.Error(t, err)
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{lifecycle.ErrAlreadyActive, "already_active"},
		{fmt.Errorf("%w: issue #4", lifecycle.ErrNoActiveSession), "no_active_session"},
		{lifecycle.ErrNoSessionToEnd, "no_session_to_end"},
		{lifecycle.ErrNoLocalFile, "no_local_file"},
		{lifecycle.ErrInvalidArgument, "invalid_argument"},
		{lifecycle.ErrPersistence, "persistence"},
		{lifecycle.ErrSync, "sync"},
		{lifecycle.ErrBatchFailed, "batch_failed"},
		{errors.New("other"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.code, errorCode(tt.err))
		})
	}
	assert.NotEmpty(t, errorHint(lifecycle.ErrAlreadyActive))
	assert.Empty(t, errorHint(errors.New("other")))
}

func TestVerb(t *testing.T) {
	assert.Equal(t, "Would update", verb(&lifecycle.Result{DryRun: true, Changed: true}))
	assert.Equal(t, "Created", verb(&lifecycle.Result{Created: true, Changed: true}))
	assert.Equal(t, "Unchanged", verb(&lifecycle.Result{}))
	assert.Equal(t, "Updated", verb(&lifecycle.Result{Changed: true}))
}

func TestWriteResult(t *testing.T) {
	var buf bytes.Buffer
	writeResult(&buf, "Updated", &lifecycle.Result{
		Issue:           42,
		Path:            "tasks/2025/01/42 - fix-login.md",
		Status:          types.StatusWaiting,
		Tracked:         "1h 30m",
		PreviousTracked: "9h",
		Synced:          true,
		Validation: &timecalc.ValidationResult{
			Invalid: []timecalc.InvalidSession{{
				Index:   1,
				Session: types.Session{Date: "2025-01-15", Start: "10:00", End: "09:00"},
				Errors:  []string{"end before start"},
			}},
			Warnings: []string{"session 3 is still running"},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Updated #42 tasks/2025/01/42 - fix-login.md")
	assert.Contains(t, out, "waiting")
	assert.Contains(t, out, "1h 30m")
	assert.Contains(t, out, "(was 9h)")
	assert.Contains(t, out, "synced to GitHub")
	assert.Contains(t, out, "session 2 (2025-01-15 10:00-09:00): end before start")
	assert.Contains(t, out, "session 3 is still running")
}

func TestWriteBatch(t *testing.T) {
	var buf bytes.Buffer
	writeBatch(&buf, &lifecycle.BatchResult{
		Results: []*lifecycle.Result{
			{Issue: 1, Path: "a.md", Tracked: "30m", Changed: true},
			{Issue: 2, Path: "b.md", Tracked: "1h"},
		},
		Failures:  []lifecycle.BatchFailure{{Path: "notes.md", Error: "no issue number"}},
		Succeeded: 2,
		Failed:    1,
	})

	out := buf.String()
	assert.Contains(t, out, "Updated #1 a.md")
	assert.NotContains(t, out, "#2", "unchanged files are not listed")
	assert.Contains(t, out, "notes.md: no issue number")
	assert.Contains(t, out, "2 recalculated, 1 failed")
}

func TestWriteStatus(t *testing.T) {
	var buf bytes.Buffer
	writeStatus(&buf, &lifecycle.Snapshot{
		Result: lifecycle.Result{
			Issue:           7,
			Path:            "7 - x.md",
			Status:          types.StatusInProgress,
			Tracked:         "30m",
			PreviousTracked: "9h",
			Sessions: []types.Session{
				{Date: "2025-01-15", Start: "09:00", End: "09:30"},
				{Date: "2025-01-15", Start: "10:00", End: types.OpenTime},
			},
		},
		Estimates:  types.Estimates{Optimistic: "1h", Pessimistic: "2h"},
		HasSection: true,
	})

	out := buf.String()
	assert.Contains(t, out, "in-progress")
	assert.Contains(t, out, "1h optimistic, 2h pessimistic")
	assert.Contains(t, out, "document says 9h")
	assert.Contains(t, out, "1. 2025-01-15  09:00 → 09:30")
	assert.Contains(t, out, "2. 2025-01-15  10:00 → HH:MM  running")

	buf.Reset()
	writeStatus(&buf, &lifecycle.Snapshot{Result: lifecycle.Result{Issue: 8, Status: types.StatusNone}})
	assert.Contains(t, buf.String(), "not started yet")
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"start", "stop", "end", "upload", "recalculate", "show", "status", "config", "version"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
	for _, name := range []string{"start", "stop", "end"} {
		cmd, _, _ := rootCmd.Find([]string{name})
		assert.NotNil(t, cmd.Flags().Lookup("at"), name)
	}
	cmd, _, _ := rootCmd.Find([]string{"recalculate"})
	for _, flag := range []string{"validate", "no-sync", "dry-run"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), flag)
	}
}
