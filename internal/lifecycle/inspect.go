package lifecycle

import (
	"context"

	"github.com/comandaflow/timetrack/internal/document"
	"github.com/comandaflow/timetrack/internal/types"
)

// Snapshot is a read-only view of a local task document.
type Snapshot struct {
	Result
	Content   string          `json:"-"`
	Estimates types.Estimates `json:"estimates"`
	// HasSection is false for documents that have never been started.
	HasSection bool `json:"has_section"`
}

// Inspect loads the local document of issue without changing anything.
// Status is derived from the sessions alone, so a finished task reads as
// waiting. PreviousTracked holds the total written in the document, which
// may be stale until the next recalculate.
func (c *Controller) Inspect(ctx context.Context, issue int) (snap *Snapshot, err error) {
	ctx, span := begin(ctx, "inspect", issue)
	defer func() {
		var res *Result
		if snap != nil {
			res = &snap.Result
		}
		finish(ctx, span, "inspect", res, err)
	}()

	if err := checkIssue(issue); err != nil {
		return nil, err
	}
	t, err := c.requireLocal(issue)
	if err != nil {
		return nil, err
	}

	sessions, _ := document.ParseSessions(t.content)
	if sessions == nil {
		sessions = []types.Session{}
	}
	snap = &Snapshot{
		Result:     Result{Issue: issue},
		Content:    t.content,
		Estimates:  document.ExtractEstimates(t.content),
		HasSection: document.HasSection(t.content),
	}
	c.fill(&snap.Result, t, sessions, types.DeriveStatus(sessions, false))
	if stored, ok := document.Tracked(t.content); ok {
		snap.PreviousTracked = stored
	}
	return snap, nil
}
