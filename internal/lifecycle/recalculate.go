package lifecycle

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/comandaflow/timetrack/internal/document"
	"github.com/comandaflow/timetrack/internal/taskfile"
	"github.com/comandaflow/timetrack/internal/timecalc"
	"github.com/comandaflow/timetrack/internal/types"
)

// RecalcOptions controls Recalculate and RecalculateAll.
type RecalcOptions struct {
	// Validate runs the session validator and reports its findings.
	// Invalid sessions never block the write.
	Validate bool
	// Sync pushes the derived status to the tracker after writing.
	Sync bool
	// DryRun computes everything and writes nothing.
	DryRun bool
}

// BatchResult is the outcome of RecalculateAll.
type BatchResult struct {
	Results   []*Result      `json:"results"`
	Failures  []BatchFailure `json:"failures,omitempty"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
}

// BatchFailure is one file RecalculateAll could not process.
type BatchFailure struct {
	Path  string `json:"path"`
	Issue int    `json:"issue,omitempty"`
	Error string `json:"error"`
}

// recalc is the computed, not yet applied, recalculation of one task.
type recalc struct {
	task    *task
	updated string
	res     *Result
}

// Recalculate re-derives the tracked duration of one task from its
// sessions. The local document is preferred; without one the remote issue
// body is used and a new local file is created for it.
func (c *Controller) Recalculate(ctx context.Context, issue int, opts RecalcOptions) (res *Result, err error) {
	ctx, span := begin(ctx, "recalculate", issue)
	defer func() { finish(ctx, span, "recalculate", res, err) }()

	if err := checkIssue(issue); err != nil {
		return nil, err
	}
	if !opts.DryRun {
		unlock, err := c.lock(ctx)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	t, err := c.findLocal(issue)
	if err != nil {
		return nil, err
	}
	if t == nil {
		if c.tracker == nil {
			return nil, fmt.Errorf("%w for issue #%d and no issue tracker configured", ErrNoLocalFile, issue)
		}
		c.log.Info("no local task file; using remote issue", "issue", issue)
		if t, err = c.fromRemote(ctx, issue, c.at(time.Time{}), true); err != nil {
			return nil, err
		}
	}

	return c.apply(ctx, c.compute(t, opts), opts)
}

// RecalculateAll runs Recalculate over every local document. Documents
// are read and computed concurrently, then written and synced one at a
// time in path order. A failing file is recorded and the batch goes on;
// ErrBatchFailed is returned if any file failed.
func (c *Controller) RecalculateAll(ctx context.Context, opts RecalcOptions) (batch *BatchResult, err error) {
	ctx, span := begin(ctx, "recalculate_all", 0)
	defer func() { finish(ctx, span, "recalculate_all", nil, err) }()

	if !opts.DryRun {
		unlock, err := c.lock(ctx)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	paths, err := c.store.All()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	c.log.Debug("recalculating task documents", "count", len(paths))

	plans := make([]*recalc, len(paths))
	errs := make([]error, len(paths))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			issue, ok := taskfile.IssueFromPath(path)
			if !ok {
				errs[i] = fmt.Errorf("%w: cannot read issue number from file name", ErrInvalidArgument)
				return nil
			}
			content, err := c.store.Load(path)
			if err != nil {
				errs[i] = fmt.Errorf("%w: %w", ErrPersistence, err)
				return nil
			}
			plans[i] = c.compute(&task{issue: issue, path: path, content: content}, opts)
			return nil
		})
	}
	_ = g.Wait() // workers record their errors in errs

	batch = &BatchResult{Results: []*Result{}}
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return batch, err
		}
		if errs[i] == nil {
			res, applyErr := c.applyTraced(ctx, plans[i], opts)
			if applyErr == nil {
				batch.Results = append(batch.Results, res)
				batch.Succeeded++
				continue
			}
			errs[i] = applyErr
		}

		issue, _ := taskfile.IssueFromPath(path)
		c.log.Warn("failed to recalculate task", "path", path, "error", errs[i])
		batch.Failures = append(batch.Failures, BatchFailure{Path: path, Issue: issue, Error: errs[i].Error()})
		batch.Failed++
	}

	if batch.Failed > 0 {
		return batch, fmt.Errorf("%w: %d of %d", ErrBatchFailed, batch.Failed, len(paths))
	}
	return batch, nil
}

// compute derives the new content of t without side effects.
func (c *Controller) compute(t *task, opts RecalcOptions) *recalc {
	sessions, found := document.ParseSessions(t.content)
	if !found {
		sessions = []types.Session{}
	}

	res := &Result{Issue: t.issue}
	c.fill(res, t, sessions, types.DeriveStatus(sessions, false))
	res.PreviousTracked, _ = document.Tracked(t.content)

	if opts.Validate {
		res.Validation = timecalc.Validate(sessions, c.loc)
	}

	updated, ok := document.SetTracked(t.content, res.Tracked)
	if !ok {
		if document.HasSection(t.content) {
			updated = document.UpdateDocument(t.content, sessions, res.Tracked)
		} else {
			res.warn("issue #%d has no time section", t.issue)
		}
	}
	res.Changed = t.created || updated != t.content

	return &recalc{task: t, updated: updated, res: res}
}

func (c *Controller) applyTraced(ctx context.Context, r *recalc, opts RecalcOptions) (res *Result, err error) {
	ctx, span := begin(ctx, "recalculate", r.task.issue)
	defer func() { finish(ctx, span, "recalculate", res, err) }()
	return c.apply(ctx, r, opts)
}

// apply writes and syncs a computed recalculation.
func (c *Controller) apply(ctx context.Context, r *recalc, opts RecalcOptions) (*Result, error) {
	res := r.res
	if !res.Changed {
		c.log.Debug("tracked time already correct", "issue", res.Issue, "tracked", res.Tracked)
		return res, nil
	}
	if opts.DryRun {
		res.DryRun = true
		c.log.Info("dry run: would update tracked time", "issue", res.Issue, "tracked", res.Tracked, "path", res.Path)
		return res, nil
	}

	if err := c.save(r.task, r.updated); err != nil {
		return nil, err
	}
	if opts.Sync {
		c.publish(ctx, res, r.updated, res.Status)
	}
	return res, nil
}
