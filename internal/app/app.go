package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"sourcemaps/internal/config"
	apperrors "sourcemaps/internal/errors"
	"sourcemaps/internal/exporter"
	"sourcemaps/internal/infrastructure"
	"sourcemaps/internal/source"
	"sourcemaps/internal/taxonomy"
	"sourcemaps/internal/validation"
)

// Application represents one configured pipeline
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.PipelineMetrics

	validator *validation.FileValidator
	reader    *source.Reader
	pipeline  *taxonomy.Pipeline
	tables    *exporter.TableExporter
}

// NewApplication creates the application and its telemetry providers
func NewApplication(cfg *config.Config, paths *config.Paths, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	alternation, err := taxonomy.ParseAlternation(cfg.Pipeline.Alternation)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid pipeline alternation", err)
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg, paths), logger)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to initialize telemetry", err)
	}

	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		_ = providers.Shutdown(context.Background())
		return nil, apperrors.NewConfigError("failed to create metrics", err)
	}

	opts := taxonomy.Options{
		RootID:              cfg.Pipeline.RootID,
		RootName:            cfg.Pipeline.RootName,
		MaxIdentifierLength: cfg.Pipeline.MaxIdentifierLength,
		Alternation:         alternation,
	}

	return &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
		validator:     validation.NewFileValidator(logger),
		reader:        source.NewReader(cfg.Paths.InputSheet, logger),
		pipeline:      taxonomy.NewPipeline(opts, logger, providers.TracerProvider.Tracer("sourcemaps/taxonomy")),
		tables:        exporter.NewTableExporter(logger),
	}, nil
}

// Run performs one full pass from source spreadsheet to output tables.
// Nothing is written unless every stage succeeds.
func (a *Application) Run(ctx context.Context) error {
	ctx = infrastructure.EnsureRunID(ctx)
	start := time.Now()

	ctx, span := a.OTelProviders.Tracer.Start(ctx, "sourcemaps.run", trace.WithAttributes(
		attribute.String("run.id", infrastructure.GetRunID(ctx)),
		attribute.String("input.file", a.Paths.InputFile),
	))
	defer span.End()

	a.Logger.InfoContext(ctx, "Pipeline starting",
		slog.String("version", config.AppVersion),
		slog.String("trace_id", infrastructure.TraceIDFromContext(ctx)),
		slog.String("input_file", a.Paths.InputFile),
		slog.String("alternation", a.Config.Pipeline.Alternation),
		slog.Int("max_identifier_length", a.Config.Pipeline.MaxIdentifierLength))
	a.Paths.LogPathResolution(a.Logger)

	summary, err := a.run(ctx)
	duration := time.Since(start)

	if err != nil {
		appErr := classify(err)
		infrastructure.RecordError(ctx, appErr)
		a.Metrics.RecordRun(ctx, summary, duration, string(appErr.Type))

		attrs := []any{
			slog.String("error_type", string(appErr.Type)),
			slog.Duration("duration", duration),
		}
		for _, k := range slices.Sorted(maps.Keys(appErr.Context)) {
			attrs = append(attrs, slog.Any(k, appErr.Context[k]))
		}
		infrastructure.WithError(a.Logger, appErr).ErrorContext(ctx, "Pipeline failed", attrs...)
		return appErr
	}

	a.Metrics.RecordRun(ctx, summary, duration, "")
	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"nodes":        summary.Nodes,
		"primitives":   summary.Primitives,
		"streams":      summary.Streams,
		"scale.factor": summary.ScaleFactor,
	})
	a.Logger.InfoContext(ctx, "Pipeline finished",
		slog.Int("nodes", summary.Nodes),
		slog.Int("primitives", summary.Primitives),
		slog.Int("streams", summary.Streams),
		slog.Int64("scale_factor", summary.ScaleFactor),
		slog.Duration("duration", duration))
	return nil
}

func (a *Application) run(ctx context.Context) (*infrastructure.RunSummary, error) {
	if err := a.validator.ValidateSourceFile(a.Paths.InputFile); err != nil {
		return nil, err
	}
	table, err := a.reader.Read(ctx, a.Paths.InputFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", a.Paths.InputFile, err)
	}

	result, err := a.pipeline.Run(ctx, *table)
	if err != nil {
		var collision *taxonomy.NamingCollisionError
		if errors.As(err, &collision) {
			return &infrastructure.RunSummary{Collisions: len(collision.Collisions)}, err
		}
		return nil, err
	}

	summary := &infrastructure.RunSummary{
		Nodes:       len(result.Nodes),
		TierCounts:  make(map[string]int, len(result.TierCounts)),
		Primitives:  result.Primitives,
		Streams:     len(result.Streams),
		ScaleFactor: result.Scale.Factor,
	}
	for tier, n := range result.TierCounts {
		summary.TierCounts[string(tier)] = n
	}

	if err := a.write(ctx, result); err != nil {
		return nil, err
	}

	return summary, nil
}

func (a *Application) write(ctx context.Context, result *taxonomy.Result) error {
	if err := a.validator.ValidateOutputDirectories(a.Paths.OutputDirs()); err != nil {
		return &writeError{err: err}
	}

	// Outputs are rendered to temp files in parallel and only moved into
	// place together, once every one of them has been written.
	outputs := 2
	if a.Paths.Workbook != "" {
		outputs++
	}
	staged := make([]*exporter.StagedFile, outputs)
	g := new(errgroup.Group)
	g.Go(func() (err error) {
		staged[0], err = a.tables.StageNodes(a.Paths.NodeTable, result.Nodes)
		return err
	})
	g.Go(func() (err error) {
		staged[1], err = a.tables.StageStreams(a.Paths.StreamTable, result.Streams)
		return err
	})
	if a.Paths.Workbook != "" {
		g.Go(func() (err error) {
			staged[2], err = exporter.StageWorkbook(a.Paths.Workbook, result.Nodes, result.Streams)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		exporter.DiscardAll(staged...)
		return &writeError{err: err}
	}

	if err := exporter.CommitAll(staged...); err != nil {
		return &writeError{err: err}
	}
	for _, s := range staged {
		a.Logger.InfoContext(ctx, "Output written", slog.String("file", s.Target))
	}
	return nil
}

// Stop flushes traces, writes the metrics textfile and shuts the providers down
func (a *Application) Stop(ctx context.Context) error {
	if a.OTelProviders == nil {
		return nil
	}
	if err := a.OTelProviders.Shutdown(ctx); err != nil {
		return apperrors.NewStorageError("failed to flush telemetry", err)
	}
	return nil
}

type writeError struct {
	err error
}

func (e *writeError) Error() string { return e.err.Error() }
func (e *writeError) Unwrap() error { return e.err }
