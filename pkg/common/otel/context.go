package otel

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// GetTraceID returns the hex trace id of the span in ctx. Log records carry
// it so a console session's records can be matched to exported spans. When
// no span is recording it returns the zero id.
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return trace.TraceID{}.String()
	}
	return sc.TraceID().String()
}
