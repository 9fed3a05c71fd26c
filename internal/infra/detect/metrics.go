package detect

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DetectionMetrics defines metrics operations needed by the detection engine.
type DetectionMetrics interface {
	ObserveScanDuration(ctx context.Context, duration time.Duration)
	IncFindings(ctx context.Context, count int)
	IncDetectorFailure(ctx context.Context, secretType string)
}

// detectionMetrics implements DetectionMetrics.
type detectionMetrics struct {
	scanDuration     metric.Float64Histogram
	findingsFound    metric.Int64Counter
	detectorFailures metric.Int64Counter
}

const namespace = "detector"

// NewDetectionMetrics creates a new detection metrics instance.
func NewDetectionMetrics(mp metric.MeterProvider) (*detectionMetrics, error) {
	meter := mp.Meter(namespace, metric.WithInstrumentationVersion("v0.1.0"))

	d := new(detectionMetrics)
	var err error

	if d.scanDuration, err = meter.Float64Histogram(
		"scan_duration_seconds",
		metric.WithDescription("Time taken to scan a chunk of output"),
	); err != nil {
		return nil, err
	}

	if d.findingsFound, err = meter.Int64Counter(
		"findings_total",
		metric.WithDescription("Total number of secret findings reported"),
	); err != nil {
		return nil, err
	}

	if d.detectorFailures, err = meter.Int64Counter(
		"detector_failures_total",
		metric.WithDescription("Total number of detector panics recovered during scans"),
	); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *detectionMetrics) ObserveScanDuration(ctx context.Context, duration time.Duration) {
	d.scanDuration.Record(ctx, duration.Seconds())
}

func (d *detectionMetrics) IncFindings(ctx context.Context, count int) {
	d.findingsFound.Add(ctx, int64(count))
}

func (d *detectionMetrics) IncDetectorFailure(ctx context.Context, secretType string) {
	d.detectorFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("secret_type", secretType)))
}
