package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(OTelConfig{}, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Registry)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.NoError(t, providers.Shutdown(ctx))
}

func TestTraceFileExport(t *testing.T) {
	traceFile := filepath.Join(t.TempDir(), "telemetry", "trace.jsonl")

	providers, err := InitializeOTel(OTelConfig{TraceFile: traceFile}, discardLogger())
	require.NoError(t, err)

	ctx, span := providers.Tracer.Start(context.Background(), "taxonomy.run")
	traceID := TraceIDFromContext(ctx)
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))

	content, err := os.ReadFile(traceFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"Name":"taxonomy.run"`)
	assert.Contains(t, string(content), traceID)
}

func TestMetricsTextfile(t *testing.T) {
	metricsFile := filepath.Join(t.TempDir(), "metrics", "sourcemaps.prom")

	providers, err := InitializeOTel(OTelConfig{MetricsFile: metricsFile}, discardLogger())
	require.NoError(t, err)

	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)

	metrics.RecordRun(context.Background(), &RunSummary{
		TierCounts:  map[string]int{"category": 2, "subcategory": 1, "table": 1},
		Primitives:  1,
		Streams:     5,
		ScaleFactor: 1000,
	}, 25*time.Millisecond, "")

	require.NoError(t, providers.Shutdown(context.Background()))

	content, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "sourcemaps_runs")
	assert.Contains(t, text, "sourcemaps_run_duration")
	assert.Contains(t, text, `tier="category"`)
	assert.Contains(t, text, "sourcemaps_scale_factor")
	assert.True(t, strings.Contains(text, "sourcemaps_streams"))
	assert.NotContains(t, text, "sourcemaps_errors", "no failure recorded")
}

func TestRecordRunFailure(t *testing.T) {
	metricsFile := filepath.Join(t.TempDir(), "sourcemaps.prom")

	providers, err := InitializeOTel(OTelConfig{MetricsFile: metricsFile}, discardLogger())
	require.NoError(t, err)

	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)

	metrics.RecordRun(context.Background(), &RunSummary{Collisions: 2}, time.Millisecond, "NAMING")
	require.NoError(t, providers.Shutdown(context.Background()))

	content, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, `error_type="NAMING"`)
	assert.Contains(t, text, `status="failure"`)
	assert.Contains(t, text, "sourcemaps_naming_collisions")
	assert.NotContains(t, text, "sourcemaps_nodes")

	var nilMetrics *PipelineMetrics
	assert.NotPanics(t, func() {
		nilMetrics.RecordRun(context.Background(), nil, 0, "")
	})
}

func TestSpanHelpers(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "stage")
	SetSpanAttributes(ctx, map[string]interface{}{
		"nodes":  4,
		"tier":   "table",
		"factor": int64(1000),
		"ok":     true,
	})
	RecordError(ctx, errors.New("boom"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Contains(t, ended[0].Attributes(), attribute.Int("nodes", 4))
	assert.Contains(t, ended[0].Attributes(), attribute.String("tier", "table"))
	assert.Contains(t, ended[0].Attributes(), attribute.Int64("factor", 1000))
	assert.Len(t, ended[0].Events(), 1)

	// No-op outside a recording span
	assert.NotPanics(t, func() {
		RecordError(context.Background(), errors.New("ignored"))
		SetSpanAttributes(context.Background(), map[string]interface{}{"x": 1})
	})
	assert.Empty(t, TraceIDFromContext(context.Background()))
}
