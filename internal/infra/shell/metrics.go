package shell

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// SessionMetrics defines metrics operations needed by shell sessions.
type SessionMetrics interface {
	IncCommandsStarted(ctx context.Context)
	IncStallsClassified(ctx context.Context)
	IncClassifierFailures(ctx context.Context)
	ObserveCommandDuration(ctx context.Context, duration time.Duration)
}

// sessionMetrics implements SessionMetrics.
type sessionMetrics struct {
	commandsStarted    metric.Int64Counter
	stallsClassified   metric.Int64Counter
	classifierFailures metric.Int64Counter
	commandDuration    metric.Float64Histogram
}

const namespace = "shell_session"

// NewSessionMetrics creates a new session metrics instance.
func NewSessionMetrics(mp metric.MeterProvider) (*sessionMetrics, error) {
	meter := mp.Meter(namespace, metric.WithInstrumentationVersion("v0.1.0"))

	s := new(sessionMetrics)
	var err error

	if s.commandsStarted, err = meter.Int64Counter(
		"commands_started_total",
		metric.WithDescription("Total number of commands written to shell sessions"),
	); err != nil {
		return nil, err
	}

	if s.stallsClassified, err = meter.Int64Counter(
		"stalls_classified_total",
		metric.WithDescription("Total number of idle output stretches sent to the interaction classifier"),
	); err != nil {
		return nil, err
	}

	if s.classifierFailures, err = meter.Int64Counter(
		"classifier_failures_total",
		metric.WithDescription("Total number of classifier invocations that returned an error"),
	); err != nil {
		return nil, err
	}

	if s.commandDuration, err = meter.Float64Histogram(
		"command_duration_seconds",
		metric.WithDescription("Time from writing a command until its stream completed"),
	); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *sessionMetrics) IncCommandsStarted(ctx context.Context) {
	s.commandsStarted.Add(ctx, 1)
}

func (s *sessionMetrics) IncStallsClassified(ctx context.Context) {
	s.stallsClassified.Add(ctx, 1)
}

func (s *sessionMetrics) IncClassifierFailures(ctx context.Context) {
	s.classifierFailures.Add(ctx, 1)
}

func (s *sessionMetrics) ObserveCommandDuration(ctx context.Context, duration time.Duration) {
	s.commandDuration.Record(ctx, duration.Seconds())
}
