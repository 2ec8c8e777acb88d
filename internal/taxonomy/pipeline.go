package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"sourcemaps/internal/infrastructure"
	"sourcemaps/pkg/contracts/domain"
)

const tracerName = "sourcemaps/taxonomy"

// Options configures one pipeline run.
type Options struct {
	RootID              string
	RootName            string
	MaxIdentifierLength int
	Alternation         Alternation
}

// DefaultOptions returns the options that produced the deployed CPI streams
// apart from the alternation, which follows the documented keep-first rule.
func DefaultOptions() Options {
	return Options{
		RootID:              DefaultRootID,
		RootName:            DefaultRootName,
		MaxIdentifierLength: DefaultMaxIdentifierLength,
		Alternation:         AlternationKeepFirst,
	}
}

// Result is the finished taxonomy.
type Result struct {
	Nodes      []domain.Node
	Streams    []domain.StreamEdge
	Scale      Scale
	TierCounts map[domain.Tier]int
	Primitives int
	// Shared maps short ids used by several nodes with the same slug to those node ids.
	Shared map[string][]string
}

// Pipeline normalizes a source table into a weighted composition tree.
type Pipeline struct {
	opts      Options
	shortener Shortener
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewPipeline creates a pipeline. A nil logger uses slog.Default and a nil
// tracer uses the global tracer provider.
func NewPipeline(opts Options, logger *slog.Logger, tracer trace.Tracer) *Pipeline {
	if opts.RootID == "" {
		opts.RootID = DefaultRootID
	}
	if opts.RootName == "" {
		opts.RootName = DefaultRootName
	}
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &Pipeline{
		opts:      opts,
		shortener: NewShortener(opts.MaxIdentifierLength, opts.Alternation),
		logger:    infrastructure.WithComponent(logger, "taxonomy"),
		tracer:    tracer,
	}
}

// Run executes every stage in order and stops at the first failure.
func (p *Pipeline) Run(ctx context.Context, table domain.SourceTable) (*Result, error) {
	ctx, span := p.tracer.Start(ctx, "taxonomy.run", trace.WithAttributes(
		attribute.Int("source.rows", len(table.Rows)),
	))
	defer span.End()

	result, err := p.run(ctx, table)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("nodes", len(result.Nodes)),
		attribute.Int("primitives", result.Primitives),
		attribute.Int64("scale.factor", result.Scale.Factor),
	)
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, table domain.SourceTable) (*Result, error) {
	result := &Result{TierCounts: make(map[domain.Tier]int, len(Tiers))}

	var frames []TierFrame
	err := p.stage(ctx, "classify", func(ctx context.Context) error {
		classes := Classify(table.Rows)
		for _, tier := range Tiers {
			frame := Project(tier, classes.Rows(tier), table, p.opts.RootID)
			result.TierCounts[tier] = len(frame.Nodes)
			frames = append(frames, frame)
		}
		if err := CheckSchema(frames...); err != nil {
			return err
		}
		for _, f := range frames {
			if err := CheckRows(f); err != nil {
				return err
			}
		}
		p.logger.InfoContext(ctx, "Classified source rows",
			slog.Int("categories", result.TierCounts[domain.TierCategory]),
			slog.Int("subcategories", result.TierCounts[domain.TierSubcategory]),
			slog.Int("tables", result.TierCounts[domain.TierTable]))
		return nil
	})
	if err != nil {
		return nil, err
	}

	nodes := Normalize(RootNode(p.opts.RootID, p.opts.RootName), frames...)

	err = p.stage(ctx, "scale", func(ctx context.Context) error {
		scale, err := ScaleWeights(nodes)
		if err != nil {
			return err
		}
		result.Scale = scale
		p.logger.InfoContext(ctx, "Scaled weights",
			slog.Int("decimal_places", scale.Digits),
			slog.Int64("factor", scale.Factor))
		return nil
	})
	if err != nil {
		return nil, err
	}

	SortByParent(nodes)

	err = p.stage(ctx, "identify", func(ctx context.Context) error {
		if err := AssignIdentifiers(nodes, p.shortener); err != nil {
			return err
		}
		if err := ValidateUniqueness(nodes); err != nil {
			var collision *NamingCollisionError
			if errors.As(err, &collision) {
				for _, c := range collision.Collisions {
					p.logger.ErrorContext(ctx, "Duplicated database name",
						slog.String("database_name", c.ShortID),
						slog.Any("source_database_names", c.SourceSlugs))
				}
			}
			return err
		}
		result.Shared = SharedShortIDs(nodes)
		for _, short := range sortedKeys(result.Shared) {
			p.logger.WarnContext(ctx, "Database name shared by nodes with the same name",
				slog.String("database_name", short),
				slog.Any("ids", result.Shared[short]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, "link", func(ctx context.Context) error {
		if err := Link(nodes); err != nil {
			return err
		}
		for _, n := range nodes {
			if n.IsPrimitive {
				result.Primitives++
			}
		}
		p.logger.InfoContext(ctx, "Linked hierarchy",
			slog.Int("nodes", len(nodes)),
			slog.Int("primitives", result.Primitives))
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Nodes = nodes
	result.Streams = Compose(nodes)
	return result, nil
}

// stage runs fn inside its own span.
func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := p.tracer.Start(ctx, "taxonomy."+name)
	defer span.End()
	if err := fn(ctx); err != nil {
		infrastructure.RecordError(ctx, err)
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
