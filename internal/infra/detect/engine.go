// Package detect implements the secret detection engine. A fixed set of
// detector plugins runs concurrently over a piece of text; their candidates
// are deduplicated, screened by an exclusion filter chain, and reported as
// findings in stable plugin order.
package detect

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/shellguard/internal/domain/secrets"
	"github.com/ahrav/shellguard/pkg/common/logger"
)

// Engine runs every registered detector plugin over scanned text and reports
// the findings that survive deduplication and the exclusion filter chain.
type Engine struct {
	plugins []secrets.Plugin
	filters []secrets.Filter

	logger  *logger.Logger
	tracer  trace.Tracer
	metrics DetectionMetrics
}

var _ secrets.Scanner = (*Engine)(nil)

// NewEngine creates a detection engine from an ordered plugin set and filter
// chain, typically the ones built by DefaultPlugins and DefaultFilters.
func NewEngine(
	plugins []secrets.Plugin,
	filters []secrets.Filter,
	log *logger.Logger,
	tracer trace.Tracer,
	metrics DetectionMetrics,
) *Engine {
	return &Engine{
		plugins: plugins,
		filters: filters,
		logger:  log.With("component", "detection_engine"),
		tracer:  tracer,
		metrics: metrics,
	}
}

// Scan runs all plugins over text concurrently and flattens their findings in
// plugin order, so output is deterministic for a given input. The only error
// condition is context cancellation; a misbehaving plugin cannot fail a scan.
func (e *Engine) Scan(ctx context.Context, text string) ([]secrets.Finding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "detection_engine.scan",
		trace.WithAttributes(
			attribute.String("scan_id", uuid.New().String()),
			attribute.Int("text_length", len(text)),
			attribute.Int("num_plugins", len(e.plugins)),
		),
	)
	defer span.End()

	results := make([][]secrets.Finding, len(e.plugins))
	g, gCtx := errgroup.WithContext(ctx)
	for i, plugin := range e.plugins {
		i, plugin := i, plugin
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = e.scanWith(gCtx, plugin, text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, "scan aborted")
		span.RecordError(err)
		return nil, fmt.Errorf("scanning text: %w", err)
	}

	var findings []secrets.Finding
	for _, batch := range results {
		findings = append(findings, batch...)
	}

	e.metrics.ObserveScanDuration(ctx, time.Since(start))
	e.metrics.IncFindings(ctx, len(findings))
	span.SetAttributes(attribute.Int("num_findings", len(findings)))
	span.SetStatus(codes.Ok, "scan complete")

	return findings, nil
}

// scanWith runs a single plugin and converts its surviving candidates to
// findings. Candidates are deduplicated by (type, value) before the filter
// chain sees them. A panicking detector is recovered and contributes nothing.
func (e *Engine) scanWith(ctx context.Context, plugin secrets.Plugin, text string) (findings []secrets.Finding) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error(ctx, "detector panicked during scan",
				"secret_type", plugin.SecretType(),
				"panic", r,
			)
			e.metrics.IncDetectorFailure(ctx, plugin.SecretType())
			findings = nil
		}
	}()

	seen := make(map[string]struct{})
	for _, candidate := range plugin.Analyze(text) {
		fp := candidate.Fingerprint()
		if _, ok := seen[fp]; ok {
			continue
		}
		seen[fp] = struct{}{}

		if e.excluded(candidate) {
			continue
		}
		findings = append(findings, plugin.Result(candidate))
	}
	return findings
}

// excluded reports whether any filter in the chain vetoes the candidate.
func (e *Engine) excluded(candidate secrets.PotentialSecret) bool {
	for _, filter := range e.filters {
		if filter.ShouldExclude(candidate.Value(), candidate.Type()) {
			return true
		}
	}
	return false
}
