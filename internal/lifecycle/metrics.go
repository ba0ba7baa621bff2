package lifecycle

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const scopeName = "github.com/comandaflow/timetrack/lifecycle"

var lcMetrics struct {
	ops      metric.Int64Counter
	failures metric.Int64Counter
	tracked  metric.Int64Histogram
}

var lcMetricsOnce sync.Once

func initMetrics() {
	m := otel.Meter(scopeName)
	lcMetrics.ops, _ = m.Int64Counter("tt.operations",
		metric.WithDescription("Lifecycle operations executed"),
	)
	lcMetrics.failures, _ = m.Int64Counter("tt.operation.failures",
		metric.WithDescription("Lifecycle operations that returned an error"),
	)
	lcMetrics.tracked, _ = m.Int64Histogram("tt.tracked_minutes",
		metric.WithDescription("Tracked minutes of a task after an operation"),
		metric.WithUnit("min"),
	)
}

// begin opens the span for one operation on one issue.
func begin(ctx context.Context, op string, issue int) (context.Context, trace.Span) {
	lcMetricsOnce.Do(initMetrics)
	return otel.Tracer(scopeName).Start(ctx, "lifecycle."+op,
		trace.WithAttributes(
			attribute.String("tt.operation", op),
			attribute.Int("tt.issue", issue),
		),
	)
}

// finish records the outcome and ends the span.
func finish(ctx context.Context, span trace.Span, op string, res *Result, err error) {
	defer span.End()

	opAttr := attribute.String("tt.operation", op)
	if lcMetrics.ops != nil {
		lcMetrics.ops.Add(ctx, 1, metric.WithAttributes(opAttr))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if lcMetrics.failures != nil {
			lcMetrics.failures.Add(ctx, 1, metric.WithAttributes(opAttr))
		}
		return
	}
	if res == nil {
		return
	}
	span.SetAttributes(
		attribute.String("tt.status", res.Status.String()),
		attribute.Int("tt.tracked_minutes", res.TrackedMinutes),
		attribute.Bool("tt.synced", res.Synced),
		attribute.Int("tt.warnings", len(res.Warnings)),
	)
	if lcMetrics.tracked != nil {
		lcMetrics.tracked.Record(ctx, int64(res.TrackedMinutes), metric.WithAttributes(opAttr))
	}
}
