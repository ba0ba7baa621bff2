package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/comandaflow/timetrack/internal/lifecycle"
	"github.com/comandaflow/timetrack/internal/types"
)

const (
	storeScopeName   = "github.com/comandaflow/timetrack/taskfile"
	trackerScopeName = "github.com/comandaflow/timetrack/github"
)

// instruments is the span/metric set shared by the wrappers.
type instruments struct {
	prefix string
	tracer trace.Tracer
	ops    metric.Int64Counter
	dur    metric.Float64Histogram
	errs   metric.Int64Counter
}

func newInstruments(scope, prefix, what string) instruments {
	m := Meter(scope)
	ops, _ := m.Int64Counter(prefix+".operations",
		metric.WithDescription("Total "+what+" operations executed"),
	)
	dur, _ := m.Float64Histogram(prefix+".operation.duration",
		metric.WithDescription(what+" operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter(prefix+".errors",
		metric.WithDescription("Total "+what+" operation errors"),
	)
	return instruments{prefix: prefix, tracer: Tracer(scope), ops: ops, dur: dur, errs: errs}
}

// op starts a span and counts the named operation.
func (in *instruments) op(ctx context.Context, kind trace.SpanKind, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	all := append([]attribute.KeyValue{attribute.String("tt.operation", name)}, attrs...)
	ctx, span := in.tracer.Start(ctx, in.prefix+"."+name,
		trace.WithAttributes(all...),
		trace.WithSpanKind(kind),
	)
	in.ops.Add(ctx, 1, metric.WithAttributes(all...))
	return ctx, span, time.Now()
}

// done ends the span, records duration and optional error.
func (in *instruments) done(ctx context.Context, span trace.Span, start time.Time, err error, name string) {
	attrs := metric.WithAttributes(attribute.String("tt.operation", name))
	ms := float64(time.Since(start).Milliseconds())
	in.dur.Record(ctx, ms, attrs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		in.errs.Add(ctx, 1, attrs)
	}
	span.End()
}

// InstrumentedStore wraps a lifecycle.Store with OTel tracing and metrics.
// Store methods carry no context, so their spans are roots; Lock links
// into the caller's trace.
type InstrumentedStore struct {
	inner lifecycle.Store
	in    instruments
}

// WrapStore returns s decorated with OTel instrumentation.
// When telemetry is disabled, s is returned as-is with zero overhead.
func WrapStore(s lifecycle.Store) lifecycle.Store {
	if !Enabled() {
		return s
	}
	return &InstrumentedStore{inner: s, in: newInstruments(storeScopeName, "tt.store", "Task store")}
}

func (s *InstrumentedStore) Filename(issue int, title string) string {
	return s.inner.Filename(issue, title)
}

func (s *InstrumentedStore) Path(filename string, date time.Time) string {
	return s.inner.Path(filename, date)
}

func (s *InstrumentedStore) Find(issue int) (string, error) {
	ctx, span, t := s.in.op(context.Background(), trace.SpanKindInternal, "Find", attribute.Int("tt.issue", issue))
	v, err := s.inner.Find(issue)
	span.SetAttributes(attribute.Bool("tt.found", v != ""))
	s.in.done(ctx, span, t, err, "Find")
	return v, err
}

func (s *InstrumentedStore) All() ([]string, error) {
	ctx, span, t := s.in.op(context.Background(), trace.SpanKindInternal, "All")
	v, err := s.inner.All()
	span.SetAttributes(attribute.Int("tt.count", len(v)))
	s.in.done(ctx, span, t, err, "All")
	return v, err
}

func (s *InstrumentedStore) Load(path string) (string, error) {
	ctx, span, t := s.in.op(context.Background(), trace.SpanKindInternal, "Load", attribute.String("tt.path", path))
	v, err := s.inner.Load(path)
	s.in.done(ctx, span, t, err, "Load")
	return v, err
}

func (s *InstrumentedStore) Save(path, content string) error {
	ctx, span, t := s.in.op(context.Background(), trace.SpanKindInternal, "Save",
		attribute.String("tt.path", path),
		attribute.Int("tt.bytes", len(content)),
	)
	err := s.inner.Save(path, content)
	s.in.done(ctx, span, t, err, "Save")
	return err
}

func (s *InstrumentedStore) Lock(ctx context.Context) (func() error, error) {
	ctx, span, t := s.in.op(ctx, trace.SpanKindInternal, "Lock")
	release, err := s.inner.Lock(ctx)
	s.in.done(ctx, span, t, err, "Lock")
	return release, err
}

// InstrumentedTracker wraps a lifecycle.Tracker with OTel tracing and
// metrics. Every call is a client span.
type InstrumentedTracker struct {
	inner lifecycle.Tracker
	in    instruments
}

// WrapTracker returns tr decorated with OTel instrumentation.
// When telemetry is disabled, tr is returned as-is.
func WrapTracker(tr lifecycle.Tracker) lifecycle.Tracker {
	if !Enabled() {
		return tr
	}
	return &InstrumentedTracker{inner: tr, in: newInstruments(trackerScopeName, "tt.tracker", "Issue tracker")}
}

func (tr *InstrumentedTracker) FetchIssue(ctx context.Context, number int) (*types.Issue, error) {
	ctx, span, t := tr.in.op(ctx, trace.SpanKindClient, "FetchIssue", attribute.Int("tt.issue", number))
	v, err := tr.inner.FetchIssue(ctx, number)
	tr.in.done(ctx, span, t, err, "FetchIssue")
	return v, err
}

func (tr *InstrumentedTracker) UpdateIssueBody(ctx context.Context, number int, body string) error {
	ctx, span, t := tr.in.op(ctx, trace.SpanKindClient, "UpdateIssueBody",
		attribute.Int("tt.issue", number),
		attribute.Int("tt.bytes", len(body)),
	)
	err := tr.inner.UpdateIssueBody(ctx, number, body)
	tr.in.done(ctx, span, t, err, "UpdateIssueBody")
	return err
}

func (tr *InstrumentedTracker) UpdateIssueTitleAndBody(ctx context.Context, number int, title, body string) error {
	ctx, span, t := tr.in.op(ctx, trace.SpanKindClient, "UpdateIssueTitleAndBody",
		attribute.Int("tt.issue", number),
		attribute.Int("tt.bytes", len(body)),
	)
	err := tr.inner.UpdateIssueTitleAndBody(ctx, number, title, body)
	tr.in.done(ctx, span, t, err, "UpdateIssueTitleAndBody")
	return err
}

func (tr *InstrumentedTracker) UpdateProjectStatus(ctx context.Context, number int, status types.Status) error {
	ctx, span, t := tr.in.op(ctx, trace.SpanKindClient, "UpdateProjectStatus",
		attribute.Int("tt.issue", number),
		attribute.String("tt.status", status.String()),
	)
	err := tr.inner.UpdateProjectStatus(ctx, number, status)
	tr.in.done(ctx, span, t, err, "UpdateProjectStatus")
	return err
}
