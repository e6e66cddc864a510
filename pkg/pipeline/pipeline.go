// Package pipeline runs a full build: load reference and pool sources, merge
// cutoff sources, extend coverage, finalize metadata and freeze the result.
//
// Every build starts from an empty accumulator, so a build never observes or
// modifies a previously published catalog.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/rankmap/pkg/catalogs"
	"github.com/agentstation/rankmap/pkg/coverage"
	"github.com/agentstation/rankmap/pkg/enrichment"
	"github.com/agentstation/rankmap/pkg/errors"
	"github.com/agentstation/rankmap/pkg/logging"
	"github.com/agentstation/rankmap/pkg/reconcile"
	"github.com/agentstation/rankmap/pkg/sources"
)

// Observer is notified once per finished build, successful or not.
type Observer interface {
	ObserveBuild(result *Result, err error)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(result *Result, err error)

// ObserveBuild calls f.
func (f ObserverFunc) ObserveBuild(result *Result, err error) {
	f(result, err)
}

// Result is the outcome of one build.
type Result struct {
	ID         string
	Catalog    *catalogs.Catalog
	Exams      *catalogs.Exams
	Merge      reconcile.Report
	Coverage   []coverage.Result
	Failed     []reconcile.SourceFailure
	References int
	PoolSize   int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns the wall-clock build time.
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Derived returns the number of coverage-synthesized records.
func (r *Result) Derived() int {
	total := 0
	for _, c := range r.Coverage {
		total += c.Created
	}
	return total
}

// Builder runs builds from a manifest.
type Builder struct {
	manifest  *sources.Manifest
	observers []Observer
	coverage  bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(b *Builder) {
		if o != nil {
			b.observers = append(b.observers, o)
		}
	}
}

// WithCoverage enables or disables coverage extension. It is enabled by default.
func WithCoverage(enabled bool) Option {
	return func(b *Builder) {
		b.coverage = enabled
	}
}

// New creates a Builder for manifest.
func New(manifest *sources.Manifest, opts ...Option) *Builder {
	if manifest == nil {
		manifest = &sources.Manifest{}
	}
	b := &Builder{manifest: manifest, coverage: true}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Manifest returns the manifest the builder reads.
func (b *Builder) Manifest() *sources.Manifest {
	return b.manifest
}

// Build runs every stage and returns a frozen catalog. Unusable sources and
// rows are logged and reported, never fatal; only cancellation aborts a build.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	result := &Result{
		ID:        uuid.NewString(),
		Exams:     b.manifest.Registry(),
		StartedAt: time.Now().UTC(),
	}
	ctx = logging.WithBuild(ctx, result.ID)
	logger := logging.FromContext(ctx)
	logger.Info().Int("sources", len(b.manifest.Sources)).Msg("Starting build")

	err := b.run(ctx, result)
	result.FinishedAt = time.Now().UTC()
	for _, o := range b.observers {
		o.ObserveBuild(result, err)
	}
	if err != nil {
		logger.Error().Err(err).Msg("Build aborted")
		return nil, err
	}

	logger.Info().
		Int("colleges", result.Catalog.Len()).
		Int("derived", result.Derived()).
		Int("failed_sources", len(result.Failed)).
		Dur("duration", result.Duration()).
		Msg("Build complete")
	return result, nil
}

func (b *Builder) run(ctx context.Context, result *Result) error {
	refRows, failed := loadAll(ctx, b.manifest.ByRole(sources.RoleReference))
	result.Failed = append(result.Failed, failed...)
	index := enrichment.Build(refRows)
	result.References = index.Len()

	poolRows, failed := loadAll(ctx, b.manifest.ByRole(sources.RolePool))
	result.Failed = append(result.Failed, failed...)
	pool := coverage.PoolFromRows(poolRows)
	result.PoolSize = len(pool)

	if err := ctx.Err(); err != nil {
		return errors.WrapResource("build", "catalog", result.ID, err)
	}

	merger := reconcile.NewMerger(result.Exams,
		reconcile.WithIndex(index),
		reconcile.WithLogger(logging.FromContext(ctx)),
	)
	acc, report := merger.MergeAll(ctx, catalogs.New(), b.manifest.ByRole(sources.RoleCutoffs))
	result.Merge = report
	result.Failed = append(result.Failed, report.Failed...)
	if report.Err != nil {
		return errors.WrapResource("build", "catalog", result.ID, report.Err)
	}

	if b.coverage {
		acc, result.Coverage = coverage.NewExtender(logging.FromContext(ctx)).ExtendAll(acc, result.Exams, pool)
	}

	result.Catalog = reconcile.Finalize(acc).Freeze()
	return nil
}

// loadAll concatenates rows from descs in ID order, collecting load failures.
func loadAll(ctx context.Context, descs []sources.Descriptor) ([]sources.RawRow, []reconcile.SourceFailure) {
	logger := logging.FromContext(ctx)
	var rows []sources.RawRow
	var failed []reconcile.SourceFailure
	for _, d := range descs {
		loaded, err := d.Load(ctx)
		if err != nil {
			logger.Warn().Str("source", d.ID).Err(err).Msg("Skipping source")
			failed = append(failed, reconcile.SourceFailure{Source: d.ID, Path: d.Path, Err: err})
			continue
		}
		logger.Debug().Str("source", d.ID).Str("role", string(d.Role)).Int("rows", len(loaded)).Msg("Loaded source")
		rows = append(rows, loaded...)
	}
	return rows, failed
}
