package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartRun opens the top-level span covering a whole run.
func StartRun(ctx context.Context, tracer trace.Tracer, runID string, workers int, rate float64) (context.Context, trace.Span) {
	return tracer.Start(ctx, "udpgen.run",
		trace.WithAttributes(
			attribute.String("run_id", runID),
			attribute.Int("workers", workers),
			attribute.Float64("rate_per_worker", rate),
		),
	)
}

// EndSpan records the error (if any) and any final attributes, then ends
// the span.
func EndSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
