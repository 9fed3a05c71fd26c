// Package otel owns the OpenTelemetry bootstrap: OTLP exporters, trace and
// meter providers, propagators, and the sampler that keeps chatty span names
// out of the export stream.
package otel

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/shellguard/pkg/common/logger"
)

// exporterStartTimeout bounds the initial dial to the collector.
const exporterStartTimeout = 5 * time.Second

// Config carries the exporter and sampling settings for InitTelemetry.
type Config struct {
	// ServiceName identifies this process in exported telemetry.
	ServiceName string

	// ExporterEndpoint is the host:port of the OTLP gRPC collector.
	ExporterEndpoint string

	// ExcludedSpans names spans the sampler drops before probability
	// sampling is applied.
	ExcludedSpans map[string]struct{}

	// Probability samples the remaining spans.
	Probability float64

	// ResourceAttributes annotate every exported record.
	ResourceAttributes map[string]string

	// InsecureExporter disables TLS toward the collector.
	InsecureExporter bool
}

// InitTelemetry stands up OTLP trace and metric export and registers the
// resulting providers as the process globals. The returned teardown shuts
// both providers down, flushing whatever is still batched; callers run it
// on exit.
func InitTelemetry(log *logger.Logger, cfg Config) (trace.TracerProvider, func(ctx context.Context), error) {
	ctx, cancel := context.WithTimeout(context.Background(), exporterStartTimeout)
	defer cancel()

	traceExporter, err := newTraceExporter(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	metricExporter, err := newMetricExporter(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	res := serviceResource(cfg.ServiceName, cfg.ResourceAttributes)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(newSpanExcluder(cfg.ExcludedSpans, cfg.Probability)),
		sdktrace.WithBatcher(traceExporter,
			sdktrace.WithBatchTimeout(5*time.Second),
			sdktrace.WithMaxExportBatchSize(512),
			sdktrace.WithMaxQueueSize(2048),
		),
		sdktrace.WithResource(res),
	)
	mp := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(metricExporter)),
		metric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	teardown := func(ctx context.Context) {
		if err := tp.Shutdown(ctx); err != nil {
			log.Error(ctx, "shutting down tracer provider", "error", err)
		}
		if err := mp.Shutdown(ctx); err != nil {
			log.Error(ctx, "shutting down meter provider", "error", err)
		}
	}

	return tp, teardown, nil
}

// newTraceExporter dials the collector for span export.
func newTraceExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.ExporterEndpoint)}
	if cfg.InsecureExporter {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exp, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}
	return exp, nil
}

// newMetricExporter dials the collector for metric export.
func newMetricExporter(ctx context.Context, cfg Config) (metric.Exporter, error) {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.ExporterEndpoint)}
	if cfg.InsecureExporter {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}
	return exp, nil
}
