// Package lifecycle drives a task through its tracking states:
//
//	none -> in-progress -> waiting <-> in-progress -> completed
//
// The local task document is the source of truth. Every operation reads it,
// computes the new session list, writes it back atomically and then mirrors
// the result to the issue tracker. A tracker failure after a successful
// write is reported as a warning and never rolls the write back.
package lifecycle

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/comandaflow/timetrack/internal/document"
	"github.com/comandaflow/timetrack/internal/timecalc"
	"github.com/comandaflow/timetrack/internal/types"
)

// MaxClosureMinutes bounds the extra time End may add for wrapping up.
const MaxClosureMinutes = 120

// DefaultConcurrency is the number of documents RecalculateAll reads at once.
const DefaultConcurrency = 4

// Store is the on-disk home of task documents.
type Store interface {
	Filename(issue int, title string) string
	Find(issue int) (string, error)
	Path(filename string, date time.Time) string
	All() ([]string, error)
	Load(path string) (string, error)
	Save(path, content string) error
	Lock(ctx context.Context) (func() error, error)
}

// Tracker is the remote issue tracker.
type Tracker interface {
	FetchIssue(ctx context.Context, number int) (*types.Issue, error)
	UpdateIssueBody(ctx context.Context, number int, body string) error
	UpdateIssueTitleAndBody(ctx context.Context, number int, title, body string) error
	UpdateProjectStatus(ctx context.Context, number int, status types.Status) error
}

// Options configures a Controller.
type Options struct {
	Store Store
	// Tracker may be nil, in which case nothing is synchronized and new
	// documents start with an empty body.
	Tracker  Tracker
	Location *time.Location
	// Now defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
	// Concurrency bounds the read phase of RecalculateAll.
	Concurrency int
}

// Controller runs lifecycle operations against a Store and a Tracker.
type Controller struct {
	store       Store
	tracker     Tracker
	loc         *time.Location
	now         func() time.Time
	log         *slog.Logger
	concurrency int
}

// New returns a Controller. Store is required.
func New(opts Options) (*Controller, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidArgument)
	}
	c := &Controller{
		store:       opts.Store,
		tracker:     opts.Tracker,
		loc:         opts.Location,
		now:         opts.Now,
		log:         opts.Logger,
		concurrency: opts.Concurrency,
	}
	if c.loc == nil {
		c.loc = time.UTC
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.log == nil {
		c.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.concurrency <= 0 {
		c.concurrency = DefaultConcurrency
	}
	return c, nil
}

// Result describes the outcome of one operation on one task.
type Result struct {
	Issue           int                        `json:"issue"`
	Path            string                     `json:"path"`
	Status          types.Status               `json:"status"`
	Tracked         string                     `json:"tracked"`
	TrackedMinutes  int                        `json:"tracked_minutes"`
	PreviousTracked string                     `json:"previous_tracked,omitempty"`
	Sessions        []types.Session            `json:"sessions"`
	Created         bool                       `json:"created,omitempty"`
	Changed         bool                       `json:"changed"`
	DryRun          bool                       `json:"dry_run,omitempty"`
	Synced          bool                       `json:"synced"`
	Validation      *timecalc.ValidationResult `json:"validation,omitempty"`
	Warnings        []string                   `json:"warnings,omitempty"`
}

func (r *Result) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// task is a loaded (or freshly created) document.
type task struct {
	issue   int
	path    string
	content string
	created bool
}

// at resolves an optional timestamp to the configured location.
func (c *Controller) at(t time.Time) time.Time {
	if t.IsZero() {
		t = c.now()
	}
	return t.In(c.loc)
}

func (c *Controller) today(at time.Time) string {
	return at.Format(timecalc.DateLayout)
}

func checkIssue(issue int) error {
	if issue <= 0 {
		return fmt.Errorf("%w: issue number must be positive, got %d", ErrInvalidArgument, issue)
	}
	return nil
}

// lock serializes writers of the task tree.
func (c *Controller) lock(ctx context.Context) (func(), error) {
	release, err := c.store.Lock(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return func() {
		if err := release(); err != nil {
			c.log.Warn("failed to release task lock", "error", err)
		}
	}, nil
}

// findLocal loads the local document for issue. path is "" when none exists.
func (c *Controller) findLocal(issue int) (*task, error) {
	path, err := c.store.Find(issue)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if path == "" {
		return nil, nil
	}
	content, err := c.store.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	c.log.Debug("loaded task document", "issue", issue, "path", path)
	return &task{issue: issue, path: path, content: content}, nil
}

// requireLocal is findLocal that fails with ErrNoLocalFile.
func (c *Controller) requireLocal(issue int) (*task, error) {
	t, err := c.findLocal(issue)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w for issue #%d", ErrNoLocalFile, issue)
	}
	return t, nil
}

// fromRemote builds a new document from the remote issue. The file is
// placed by at, or with byEarliest by the earliest session date the body
// carries when it has one.
func (c *Controller) fromRemote(ctx context.Context, issue int, at time.Time, byEarliest bool) (*task, error) {
	title, body := "", ""
	if c.tracker != nil {
		remote, err := c.tracker.FetchIssue(ctx, issue)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to fetch issue #%d: %w", ErrSync, issue, err)
		}
		title = document.CleanTitle(remote.Title)
		body = document.StripStatusIndicator(remote.Body)
	}

	date := at
	if sessions, ok := document.ParseSessions(body); ok && byEarliest {
		if earliest, found := timecalc.EarliestDate(sessions, c.loc); found {
			date = earliest
		}
	}

	path := c.store.Path(c.store.Filename(issue, title), date)
	c.log.Debug("creating task document", "issue", issue, "path", path)
	return &task{issue: issue, path: path, content: body, created: true}, nil
}

// checkClose rejects closing the active session at or before its start.
func (c *Controller) checkClose(issue int, sessions []types.Session, at time.Time) error {
	start, ok := timecalc.ActiveStart(sessions, c.loc)
	if ok && !at.Truncate(time.Minute).After(start) {
		return fmt.Errorf("%w: issue #%d: close time %s is not after the session start %s",
			ErrInvalidArgument, issue, at.In(c.loc).Format("2006-01-02 15:04"), start.Format("2006-01-02 15:04"))
	}
	return nil
}

// save writes content for t. Failure is fatal.
func (c *Controller) save(t *task, content string) error {
	if err := c.store.Save(t.path, content); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	t.content = content
	c.log.Info("saved task document", "issue", t.issue, "path", t.path)
	return nil
}

// publish mirrors content and status to the tracker: the title gets the
// status prefix, the body the status indicator, and the project item the
// status option. Failures end up as warnings on res.
func (c *Controller) publish(ctx context.Context, res *Result, content string, status types.Status) {
	if c.tracker == nil {
		res.warn("issue tracker not configured; skipped sync")
		return
	}
	if err := c.pushStatus(ctx, res.Issue, content, status); err != nil {
		c.log.Warn("failed to sync issue", "issue", res.Issue, "status", status, "error", err)
		res.warn("saved locally but failed to update issue #%d: %v", res.Issue, err)
		return
	}
	res.Synced = true

	if err := c.tracker.UpdateProjectStatus(ctx, res.Issue, status); err != nil {
		c.log.Warn("failed to update project status", "issue", res.Issue, "status", status, "error", err)
		res.warn("failed to update project status for issue #%d: %v", res.Issue, err)
	}
}

func (c *Controller) pushStatus(ctx context.Context, issue int, content string, status types.Status) error {
	remote, err := c.tracker.FetchIssue(ctx, issue)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSync, err)
	}
	title := document.DecorateTitle(remote.Title, status)
	body := document.WithStatusIndicator(content, status)
	if err := c.tracker.UpdateIssueTitleAndBody(ctx, issue, title, body); err != nil {
		return fmt.Errorf("%w: %w", ErrSync, err)
	}
	c.log.Debug("synced issue", "issue", issue, "status", status, "title", title)
	return nil
}

// fill copies the computed session state into res.
func (c *Controller) fill(res *Result, t *task, sessions []types.Session, status types.Status) {
	res.Path = t.path
	res.Created = t.created
	res.Sessions = sessions
	res.Status = status
	res.TrackedMinutes, res.Tracked = timecalc.Tracked(sessions, c.loc)
}
