package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comandaflow/timetrack/internal/document"
	"github.com/comandaflow/timetrack/internal/taskfile"
	"github.com/comandaflow/timetrack/internal/timecalc"
	"github.com/comandaflow/timetrack/internal/types"
)

var errRemote = errors.New("remote unavailable")

type titleUpdate struct {
	Number int
	Title  string
	Body   string
}

// fakeTracker is an in-memory issue tracker.
type fakeTracker struct {
	mu         sync.Mutex
	issues     map[int]*types.Issue
	fetchErr   error
	updateErr  error
	projectErr error

	fetches       int
	bodyUpdates   map[int]string
	titleUpdates  []titleUpdate
	projectStatus map[int][]types.Status
}

func newFakeTracker(issues ...*types.Issue) *fakeTracker {
	f := &fakeTracker{
		issues:        make(map[int]*types.Issue),
		bodyUpdates:   make(map[int]string),
		projectStatus: make(map[int][]types.Status),
	}
	for _, issue := range issues {
		f.issues[issue.Number] = issue
	}
	return f
}

func (f *fakeTracker) FetchIssue(_ context.Context, number int) (*types.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	issue, ok := f.issues[number]
	if !ok {
		return nil, fmt.Errorf("issue #%d not found", number)
	}
	cp := *issue
	return &cp, nil
}

func (f *fakeTracker) UpdateIssueBody(_ context.Context, number int, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.bodyUpdates[number] = body
	if issue, ok := f.issues[number]; ok {
		issue.Body = body
	}
	return nil
}

func (f *fakeTracker) UpdateIssueTitleAndBody(_ context.Context, number int, title, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.titleUpdates = append(f.titleUpdates, titleUpdate{Number: number, Title: title, Body: body})
	if issue, ok := f.issues[number]; ok {
		issue.Title = title
		issue.Body = body
	}
	return nil
}

func (f *fakeTracker) UpdateProjectStatus(_ context.Context, number int, status types.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.projectErr != nil {
		return f.projectErr
	}
	f.projectStatus[number] = append(f.projectStatus[number], status)
	return nil
}

func (f *fakeTracker) lastTitleUpdate() titleUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.titleUpdates) == 0 {
		return titleUpdate{}
	}
	return f.titleUpdates[len(f.titleUpdates)-1]
}

// recordingStore is a real taskfile.Store that counts writes and can be
// made to fail them.
type recordingStore struct {
	*taskfile.Store
	saves   int
	saveErr error
}

func (s *recordingStore) Save(path, content string) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.Store.Save(path, content)
}

var day = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

// clock returns day at hh:mm.
func clock(hh, mm int) time.Time {
	return day.Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute)
}

func newStoreIn(t *testing.T, loc *time.Location) *taskfile.Store {
	t.Helper()
	return taskfile.New(t.TempDir(), loc)
}

// newController builds a Controller over a temp dir. tracker may be nil.
func newController(t *testing.T, tracker *fakeTracker) (*Controller, *recordingStore) {
	t.Helper()
	store := &recordingStore{Store: taskfile.New(t.TempDir(), time.UTC)}
	opts := Options{
		Store:    store,
		Location: time.UTC,
		Now:      func() time.Time { return clock(12, 0) },
	}
	if tracker != nil {
		opts.Tracker = tracker
	}
	c, err := New(opts)
	require.NoError(t, err)
	return c, store
}

// seed writes a task document with the given sessions and returns its path.
func seed(t *testing.T, store *recordingStore, issue int, title string, sessions []types.Session) string {
	t.Helper()
	_, tracked := timecalc.Tracked(sessions, time.UTC)
	content := document.UpdateDocument("# "+title+"\n", sessions, tracked)
	return seedRaw(t, store, issue, title, content)
}

func seedRaw(t *testing.T, store *recordingStore, issue int, title, content string) string {
	t.Helper()
	path := store.Path(store.Filename(issue, title), day)
	require.NoError(t, store.Store.Save(path, content))
	return path
}

func load(t *testing.T, store *recordingStore, path string) string {
	t.Helper()
	content, err := store.Load(path)
	require.NoError(t, err)
	return content
}

func sessionsOf(t *testing.T, store *recordingStore, path string) []types.Session {
	t.Helper()
	sessions, ok := document.ParseSessions(load(t, store, path))
	require.True(t, ok, "document has no sessions block")
	return sessions
}
