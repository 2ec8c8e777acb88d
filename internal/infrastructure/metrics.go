package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RunSummary carries the figures of a finished pipeline run
type RunSummary struct {
	Nodes       int
	TierCounts  map[string]int
	Primitives  int
	Streams     int
	ScaleFactor int64
	Collisions  int
}

// PipelineMetrics holds the instruments recorded once per run
type PipelineMetrics struct {
	Runs        metric.Int64Counter
	RunDuration metric.Float64Histogram
	Errors      metric.Int64Counter
	Nodes       metric.Int64Gauge
	Primitives  metric.Int64Gauge
	Streams     metric.Int64Gauge
	ScaleFactor metric.Int64Gauge
	Collisions  metric.Int64Counter
}

// CreatePipelineMetrics creates the pipeline instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	runs, err := meter.Int64Counter(
		"sourcemaps_runs",
		metric.WithDescription("Total number of pipeline runs"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"sourcemaps_run_duration",
		metric.WithDescription("Pipeline run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	runErrors, err := meter.Int64Counter(
		"sourcemaps_errors",
		metric.WithDescription("Total number of failed runs by error type"),
	)
	if err != nil {
		return nil, err
	}

	nodes, err := meter.Int64Gauge(
		"sourcemaps_nodes",
		metric.WithDescription("Nodes in the normalized table by tier"),
	)
	if err != nil {
		return nil, err
	}

	primitives, err := meter.Int64Gauge(
		"sourcemaps_primitives",
		metric.WithDescription("Primitive nodes in the normalized table"),
	)
	if err != nil {
		return nil, err
	}

	streams, err := meter.Int64Gauge(
		"sourcemaps_streams",
		metric.WithDescription("Edges in the composed streams table"),
	)
	if err != nil {
		return nil, err
	}

	scaleFactor, err := meter.Int64Gauge(
		"sourcemaps_scale_factor",
		metric.WithDescription("Power of ten applied to relative importance"),
	)
	if err != nil {
		return nil, err
	}

	collisions, err := meter.Int64Counter(
		"sourcemaps_naming_collisions",
		metric.WithDescription("Total number of short identifier collisions detected"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		Runs:        runs,
		RunDuration: runDuration,
		Errors:      runErrors,
		Nodes:       nodes,
		Primitives:  primitives,
		Streams:     streams,
		ScaleFactor: scaleFactor,
		Collisions:  collisions,
	}, nil
}

// RecordRun records the outcome of a run. summary may be nil when the run failed early.
func (m *PipelineMetrics) RecordRun(ctx context.Context, summary *RunSummary, duration time.Duration, errType string) {
	if m == nil {
		return
	}

	status := "success"
	if errType != "" {
		status = "failure"
		m.Errors.Add(ctx, 1, metric.WithAttributes(attribute.String("error.type", errType)))
	}
	statusAttr := metric.WithAttributes(attribute.String("status", status))
	m.Runs.Add(ctx, 1, statusAttr)
	m.RunDuration.Record(ctx, duration.Seconds(), statusAttr)

	if summary == nil {
		return
	}

	if summary.Collisions > 0 {
		m.Collisions.Add(ctx, int64(summary.Collisions))
	}
	if errType != "" {
		return
	}

	for tier, count := range summary.TierCounts {
		m.Nodes.Record(ctx, int64(count), metric.WithAttributes(attribute.String("tier", tier)))
	}
	m.Primitives.Record(ctx, int64(summary.Primitives))
	m.Streams.Record(ctx, int64(summary.Streams))
	m.ScaleFactor.Record(ctx, summary.ScaleFactor)
}
