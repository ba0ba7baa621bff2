package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/comandaflow/timetrack/internal/document"
	"github.com/comandaflow/timetrack/internal/timecalc"
	"github.com/comandaflow/timetrack/internal/types"
)

// Start opens a new session for issue at the given time (zero means now).
//
// The document is created from the remote issue when no local file exists.
// Placeholder sessions are dropped. Starting a task that already has an
// active session fails with ErrAlreadyActive and writes nothing, as does a
// start before the end of the last recorded session.
func (c *Controller) Start(ctx context.Context, issue int, at time.Time) (res *Result, err error) {
	ctx, span := begin(ctx, "start", issue)
	defer func() { finish(ctx, span, "start", res, err) }()

	if err := checkIssue(issue); err != nil {
		return nil, err
	}
	unlock, err := c.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := c.at(at)
	t, err := c.findLocal(issue)
	if err != nil {
		return nil, err
	}
	if t == nil {
		if t, err = c.fromRemote(ctx, issue, now, false); err != nil {
			return nil, err
		}
	}

	sessions := document.ExtractSessions(t.content, c.today(now))
	if timecalc.HasActive(sessions) {
		return nil, fmt.Errorf("%w: issue #%d; stop or end it first", ErrAlreadyActive, issue)
	}
	if last, ok := timecalc.LatestEnd(sessions, c.loc); ok && now.Truncate(time.Minute).Before(last) {
		return nil, fmt.Errorf("%w: issue #%d: start %s overlaps the session ending %s",
			ErrInvalidArgument, issue, now.Format(timecalc.ClockLayout), last.Format("2006-01-02 15:04"))
	}

	sessions = timecalc.OpenSession(sessions, now)
	res = &Result{Issue: issue, Changed: true}
	c.fill(res, t, sessions, types.StatusInProgress)

	updated := document.UpdateDocument(t.content, sessions, res.Tracked)
	if err := c.save(t, updated); err != nil {
		return nil, err
	}
	c.publish(ctx, res, updated, types.StatusInProgress)
	return res, nil
}

// Stop closes the active session at the given time (zero means now) and
// leaves the task waiting. The close time must be after the session start.
func (c *Controller) Stop(ctx context.Context, issue int, at time.Time) (res *Result, err error) {
	ctx, span := begin(ctx, "stop", issue)
	defer func() { finish(ctx, span, "stop", res, err) }()

	if err := checkIssue(issue); err != nil {
		return nil, err
	}
	unlock, err := c.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := c.at(at)
	t, err := c.requireLocal(issue)
	if err != nil {
		return nil, err
	}

	sessions := document.ExtractSessions(t.content, c.today(now))
	if !timecalc.HasActive(sessions) {
		return nil, fmt.Errorf("%w for issue #%d", ErrNoActiveSession, issue)
	}
	if err := c.checkClose(issue, sessions, now); err != nil {
		return nil, err
	}
	sessions, _ = timecalc.CloseActive(sessions, now)

	res = &Result{Issue: issue, Changed: true}
	c.fill(res, t, sessions, types.StatusWaiting)

	updated := document.UpdateDocument(t.content, sessions, res.Tracked)
	if err := c.save(t, updated); err != nil {
		return nil, err
	}
	c.publish(ctx, res, updated, types.StatusWaiting)
	return res, nil
}

// End completes the task. A running session is closed at the given time
// plus closureMinutes; a waiting task keeps its sessions unchanged.
// closureMinutes must be within [0, MaxClosureMinutes].
func (c *Controller) End(ctx context.Context, issue, closureMinutes int, at time.Time) (res *Result, err error) {
	ctx, span := begin(ctx, "end", issue)
	defer func() { finish(ctx, span, "end", res, err) }()

	if err := checkIssue(issue); err != nil {
		return nil, err
	}
	if closureMinutes < 0 || closureMinutes > MaxClosureMinutes {
		return nil, fmt.Errorf("%w: closure time must be between 0 and %d minutes, got %d",
			ErrInvalidArgument, MaxClosureMinutes, closureMinutes)
	}
	unlock, err := c.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := c.at(at)
	t, err := c.requireLocal(issue)
	if err != nil {
		return nil, err
	}

	sessions := document.ExtractSessions(t.content, c.today(now))
	switch {
	case timecalc.HasActive(sessions):
		closeAt := now.Add(time.Duration(closureMinutes) * time.Minute)
		if err := c.checkClose(issue, sessions, closeAt); err != nil {
			return nil, err
		}
		sessions, _ = timecalc.CloseActive(sessions, closeAt)
	case timecalc.HasRecorded(sessions):
		c.log.Debug("task is waiting; completing without a new session", "issue", issue)
	default:
		return nil, fmt.Errorf("%w: issue #%d has no sessions", ErrNoSessionToEnd, issue)
	}

	res = &Result{Issue: issue}
	c.fill(res, t, sessions, types.StatusCompleted)

	updated := document.UpdateDocument(t.content, sessions, res.Tracked)
	res.Changed = updated != t.content
	if err := c.save(t, updated); err != nil {
		return nil, err
	}
	c.publish(ctx, res, updated, types.StatusCompleted)
	return res, nil
}

// Upload pushes the local document as the issue body. Status and sessions
// are not touched. Unlike the other operations a tracker failure is the
// operation's failure, since syncing is all it does.
func (c *Controller) Upload(ctx context.Context, issue int) (res *Result, err error) {
	ctx, span := begin(ctx, "upload", issue)
	defer func() { finish(ctx, span, "upload", res, err) }()

	if err := checkIssue(issue); err != nil {
		return nil, err
	}
	t, err := c.requireLocal(issue)
	if err != nil {
		return nil, err
	}
	if c.tracker == nil {
		return nil, fmt.Errorf("%w: issue tracker not configured", ErrSync)
	}

	sessions, _ := document.ParseSessions(t.content)
	res = &Result{Issue: issue}
	c.fill(res, t, sessions, types.DeriveStatus(sessions, false))

	if err := c.tracker.UpdateIssueBody(ctx, issue, t.content); err != nil {
		return nil, fmt.Errorf("%w: failed to upload issue #%d: %w", ErrSync, issue, err)
	}
	res.Synced = true
	c.log.Info("uploaded task document", "issue", issue, "path", t.path)
	return res, nil
}
