package telemetry

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comandaflow/timetrack/internal/types"
)

var errBoom = errors.New("boom")

type stubStore struct {
	saved   map[string]string
	saveErr error
}

func (s *stubStore) Filename(issue int, title string) string { return title + ".md" }
func (s *stubStore) Find(issue int) (string, error) { return "found.md", nil }
func (s *stubStore) Path(filename string, _ time.Time) string { return "base/" + filename }
func (s *stubStore) All() ([]string, error) { return []string{"a.md", "b.md"}, nil }
func (s *stubStore) Load(path string) (string, error) { return s.saved[path], nil }
func (s *stubStore) Lock(context.Context) (func() error, error) { return func() error { return nil }, nil }

func (s *stubStore) Save(path, content string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved[path] = content
	return nil
}

type stubTracker struct {
	statuses []types.Status
}

func (s *stubTracker) FetchIssue(_ context.Context, n int) (*types.Issue, error) {
	return &types.Issue{Number: n, Title: "t"}, nil
}
func (s *stubTracker) UpdateIssueBody(context.Context, int, string) error { return errBoom }
func (s *stubTracker) UpdateIssueTitleAndBody(context.Context, int, string, string) error {
	return nil
}
func (s *stubTracker) UpdateProjectStatus(_ context.Context, _ int, status types.Status) error {
	s.statuses = append(s.statuses, status)
	return nil
}

func TestInit_Disabled(t *testing.T) {
	t.Setenv("TT_OTEL_ENABLED", "")
	require.NoError(t, Init(context.Background(), "tt", "test"))
	assert.False(t, Enabled())

	_, span := Tracer("").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	Shutdown(context.Background())
}

func TestInit_StdoutExporter(t *testing.T) {
	t.Setenv("TT_OTEL_ENABLED", "true")
	t.Setenv("TT_OTEL_STDOUT", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "")

	var buf bytes.Buffer
	prev := output
	output = &buf
	t.Cleanup(func() {
		output = prev
		os.Unsetenv("TT_OTEL_ENABLED")
		_ = Init(context.Background(), "tt", "test")
	})

	require.NoError(t, Init(context.Background(), "tt", "test"))
	_, span := Tracer("").Start(context.Background(), "test.span")
	span.End()
	Shutdown(context.Background())

	assert.Contains(t, buf.String(), "test.span")
}

func TestWrapStore_DisabledIsIdentity(t *testing.T) {
	t.Setenv("TT_OTEL_ENABLED", "")
	s := &stubStore{saved: map[string]string{}}
	assert.Same(t, s, WrapStore(s))

	tr := &stubTracker{}
	assert.Same(t, tr, WrapTracker(tr))
}

func TestWrapStore_PassesThrough(t *testing.T) {
	t.Setenv("TT_OTEL_ENABLED", "true")
	inner := &stubStore{saved: map[string]string{}}
	s := WrapStore(inner)
	require.IsType(t, &InstrumentedStore{}, s)

	assert.Equal(t, "x.md", s.Filename(1, "x"))
	assert.Equal(t, "base/x.md", s.Path("x.md", time.Now()))
	path, err := s.Find(1)
	require.NoError(t, err)
	assert.Equal(t, "found.md", path)
	all, err := s.All()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.Save("a.md", "content"))
	got, err := s.Load("a.md")
	require.NoError(t, err)
	assert.Equal(t, "content", got)

	inner.saveErr = errBoom
	assert.ErrorIs(t, s.Save("a.md", "x"), errBoom)

	release, err := s.Lock(context.Background())
	require.NoError(t, err)
	assert.NoError(t, release())
}

func TestWrapTracker_PassesThrough(t *testing.T) {
	t.Setenv("TT_OTEL_ENABLED", "true")
	inner := &stubTracker{}
	tr := WrapTracker(inner)
	require.IsType(t, &InstrumentedTracker{}, tr)
	ctx := context.Background()

	issue, err := tr.FetchIssue(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, issue.Number)
	assert.ErrorIs(t, tr.UpdateIssueBody(ctx, 7, "body"), errBoom)
	assert.NoError(t, tr.UpdateIssueTitleAndBody(ctx, 7, "t", "b"))
	require.NoError(t, tr.UpdateProjectStatus(ctx, 7, types.StatusWaiting))
	assert.Equal(t, []types.Status{types.StatusWaiting}, inner.statuses)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
