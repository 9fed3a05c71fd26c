package otel

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// spanExcluder drops spans whose name is in the excluded set and applies
// probability-based sampling to everything else. Interactive sessions emit a
// span per command round trip, so chatty span names can be kept out of the
// export pipeline entirely.
type spanExcluder struct {
	spans       map[string]struct{}
	probability float64
}

func newSpanExcluder(spans map[string]struct{}, probability float64) spanExcluder {
	return spanExcluder{
		spans:       spans,
		probability: probability,
	}
}

// ShouldSample implements the sampler interface. It checks the span name
// against the excluded set before falling back to ratio-based sampling.
func (se spanExcluder) ShouldSample(p sdktrace.SamplingParameters) sdktrace.SamplingResult {
	if _, exists := se.spans[p.Name]; exists {
		return sdktrace.SamplingResult{Decision: sdktrace.Drop}
	}
	return sdktrace.TraceIDRatioBased(se.probability).ShouldSample(p)
}

// Description implements the sampler interface.
func (spanExcluder) Description() string { return "spanExcluder" }
