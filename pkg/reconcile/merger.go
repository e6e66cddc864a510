package reconcile

import (
	"context"
	"time"

	"github.com/agentstation/rankmap/pkg/catalogs"
	"github.com/agentstation/rankmap/pkg/errors"
	"github.com/agentstation/rankmap/pkg/logging"
	"github.com/agentstation/rankmap/pkg/normalize"
	"github.com/agentstation/rankmap/pkg/sources"
)

// Merge folds rows from one source into acc and returns the accumulator.
// A nil accumulator starts a new catalog; a frozen one is cloned first so a
// published snapshot is never modified.
func (m *Merger) Merge(acc *catalogs.Catalog, desc sources.Descriptor, rows []sources.RawRow) (*catalogs.Catalog, Stats) {
	acc = writable(acc)
	stats := Stats{Source: desc.ID, Rows: len(rows)}

	for i, row := range rows {
		if err := m.mergeRow(acc, desc, i, row, &stats); err != nil {
			stats.Skipped++
			stats.Errors = append(stats.Errors, err)
			m.logger.Debug().
				Str("source", desc.ID).
				Int("row", i).
				Err(err).
				Msg("Skipping row")
			continue
		}
		stats.Merged++
	}
	return acc, stats
}

func (m *Merger) mergeRow(acc *catalogs.Catalog, desc sources.Descriptor, i int, row sources.RawRow, stats *Stats) error {
	rec := sources.NewRecord(row)

	name := rec.Name()
	if normalize.Name(name).IsZero() {
		return errors.NewRowError(desc.ID, i, "no usable name")
	}

	tag := rec.Exam()
	if tag == "" {
		tag = desc.Exam.String()
	}
	exam := catalogs.ParseExamType(tag)
	if exam == "" {
		return errors.NewRowError(desc.ID, i, "no exam tag")
	}
	if !m.exams.Has(exam) {
		return errors.NewRowError(desc.ID, i, "unregistered exam "+exam.String())
	}

	raw, _ := rec.Cutoff()
	cutoff, numeric := Coerce(raw)
	if !numeric {
		stats.Defaulted++
	}
	cutoff = Clamp(cutoff, m.exams.Ceiling(exam))

	college, created, err := acc.Ensure(name)
	if err != nil {
		return errors.NewRowError(desc.ID, i, err.Error())
	}
	if created {
		stats.Created++
	}
	if college.RaiseCutoff(exam, cutoff) {
		stats.Raised++
	}

	m.applyMetadata(college, rec)

	college.AddExam(exam)
	college.AddSource(desc.ID)
	category := rec.Category()
	if category == "" {
		category = desc.Category
	}
	college.AddCategory(category)
	return nil
}

// applyMetadata prefers the enrichment index and otherwise only fills empty fields.
func (m *Merger) applyMetadata(college *catalogs.College, rec sources.Record) {
	entry, _ := m.index.Lookup(college.Key)
	switch {
	case entry.State != "":
		college.State = entry.State
	case college.State == "":
		college.State = rec.State()
	}
	switch {
	case entry.Type != "":
		college.Type = entry.Type
	case college.Type == "":
		college.Type = rec.Type()
	}
}

// MergeAll loads and merges every descriptor in lexicographic ID order.
// Sources that cannot be loaded are logged, recorded in the report and
// skipped. Cancellation is checked between sources.
func (m *Merger) MergeAll(ctx context.Context, acc *catalogs.Catalog, descs []sources.Descriptor) (*catalogs.Catalog, Report) {
	start := time.Now()
	acc = writable(acc)
	logger := logging.FromContext(ctx)

	ordered := make([]sources.Descriptor, len(descs))
	copy(ordered, descs)
	sources.SortDescriptors(ordered)

	report := Report{}
	for _, desc := range ordered {
		if err := ctx.Err(); err != nil {
			report.Err = err
			break
		}

		rows, err := desc.Load(ctx)
		if err != nil {
			logger.Warn().
				Str("source", desc.ID).
				Str("path", desc.Path).
				Err(err).
				Msg("Skipping source")
			report.Failed = append(report.Failed, SourceFailure{Source: desc.ID, Path: desc.Path, Err: err})
			continue
		}

		var stats Stats
		acc, stats = m.Merge(acc, desc, rows)
		logger.Info().
			Str("source", desc.ID).
			Int("rows", stats.Rows).
			Int("merged", stats.Merged).
			Int("skipped", stats.Skipped).
			Msg("Merged source")
		report.Sources = append(report.Sources, stats)
	}
	report.Duration = time.Since(start)
	return acc, report
}

func writable(acc *catalogs.Catalog) *catalogs.Catalog {
	if acc == nil {
		return catalogs.New()
	}
	if acc.Frozen() {
		return acc.Clone()
	}
	return acc
}
