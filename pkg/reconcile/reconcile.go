// Package reconcile merges raw source rows into the college aggregate.
//
// Rows are folded into an explicit *catalogs.Catalog accumulator that each
// call receives and returns. The fold is deterministic and idempotent:
// merging the same sources again, in the same order, leaves the aggregate
// unchanged. Per-exam cutoffs follow the canonical "worst admitted rank" rule
// and only ever rise.
//
// Example usage:
//
//	m := reconcile.NewMerger(exams, reconcile.WithIndex(idx))
//	acc, report := m.MergeAll(ctx, catalogs.New(), manifest.ByRole(sources.RoleCutoffs))
//	reconcile.Finalize(acc)
package reconcile

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/rankmap/pkg/catalogs"
	"github.com/agentstation/rankmap/pkg/enrichment"
	"github.com/agentstation/rankmap/pkg/logging"
)

// Merger folds source rows into an accumulator.
type Merger struct {
	exams  *catalogs.Exams
	index  *enrichment.Index
	logger *zerolog.Logger
}

// Option configures a Merger.
type Option func(*Merger)

// WithIndex sets the enrichment index consulted for state and type.
func WithIndex(idx *enrichment.Index) Option {
	return func(m *Merger) {
		m.index = idx
	}
}

// WithLogger sets the logger used when no context logger applies.
func WithLogger(logger *zerolog.Logger) Option {
	return func(m *Merger) {
		m.logger = logger
	}
}

// NewMerger creates a Merger for the given exam registry. A nil registry
// means the JEE/NEET defaults.
func NewMerger(exams *catalogs.Exams, opts ...Option) *Merger {
	if exams == nil {
		exams = catalogs.DefaultExams()
	}
	m := &Merger{exams: exams}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logging.Default()
	}
	return m
}

// Exams returns the registry rows are validated against.
func (m *Merger) Exams() *catalogs.Exams {
	return m.exams
}

// Finalize fills still-empty state and type with the Unknown sentinel. It runs
// once, after coverage extension, so earlier stages keep seeing empty fields
// as fillable.
func Finalize(acc *catalogs.Catalog) *catalogs.Catalog {
	if acc == nil || acc.Frozen() {
		return acc
	}
	acc.Range(func(c *catalogs.College) bool {
		c.FillUnknown()
		return true
	})
	return acc
}
