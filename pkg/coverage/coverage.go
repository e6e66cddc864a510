// Package coverage synthesizes placeholder records so that every exam's
// cutoffs span the full rank range up to its ceiling.
//
// Extension is deterministic: candidates are taken from the pool round-robin
// and states fall back to a fixed cyclic list, so two builds over the same
// inputs produce identical aggregates. Synthesized records are always marked
// Derived and tagged with constants.DerivedSourceTag so queries can exclude
// them.
package coverage

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agentstation/rankmap/pkg/catalogs"
	"github.com/agentstation/rankmap/pkg/constants"
	"github.com/agentstation/rankmap/pkg/logging"
	"github.com/agentstation/rankmap/pkg/normalize"
	"github.com/agentstation/rankmap/pkg/sources"
)

// Candidate is an institution whose name and metadata seed synthesized records.
type Candidate struct {
	Name  string `json:"name" yaml:"name"`
	State string `json:"state,omitempty" yaml:"state,omitempty"`
	Type  string `json:"type,omitempty" yaml:"type,omitempty"`
}

// PoolFromRows builds a candidate pool from raw rows, keeping the first row
// for each normalized name in input order.
func PoolFromRows(rows []sources.RawRow) []Candidate {
	seen := make(map[normalize.Key]bool)
	pool := make([]Candidate, 0, len(rows))
	for _, row := range rows {
		rec := sources.NewRecord(row)
		key := normalize.Name(rec.Name())
		if key.IsZero() || seen[key] {
			continue
		}
		seen[key] = true
		pool = append(pool, Candidate{Name: rec.Name(), State: rec.State(), Type: rec.Type()})
	}
	return pool
}

// Result describes one exam's extension.
type Result struct {
	Exam       catalogs.ExamType `json:"exam"`
	CurrentMax int               `json:"current_max"`
	Ceiling    int               `json:"ceiling"`
	Created    int               `json:"created"`
	// Collisions counts synthesized names that matched an existing record
	// and were suffixed to stay unique.
	Collisions int `json:"collisions,omitempty"`
}

// Extender fills rank gaps.
type Extender struct {
	logger *zerolog.Logger
}

// NewExtender creates an Extender. A nil logger means the default logger.
func NewExtender(logger *zerolog.Logger) *Extender {
	if logger == nil {
		logger = logging.Default()
	}
	return &Extender{logger: logger}
}

// Extend synthesizes one record per rank from currentMax+1 through ceiling,
// where currentMax is the highest cutoff already recorded for exam. It is a
// no-op when the aggregate already reaches the ceiling. An empty pool falls
// back to constants.PlaceholderCandidate.
func (e *Extender) Extend(acc *catalogs.Catalog, exam catalogs.ExamType, pool []Candidate, ceiling int) (*catalogs.Catalog, Result) {
	acc = writable(acc)
	current := acc.MaxCutoff(exam)
	result := Result{Exam: exam, CurrentMax: current, Ceiling: ceiling}
	if current >= ceiling {
		return acc, result
	}
	if len(pool) == 0 {
		pool = []Candidate{{Name: constants.PlaceholderCandidate}}
	}

	for i, rank := 0, current+1; rank <= ceiling; i, rank = i+1, rank+1 {
		candidate := pool[i%len(pool)]
		base := fmt.Sprintf("%s (%s %d)", candidate.Name, exam, rank)

		// A name already taken belongs to another record, often a real one.
		// It is never touched; the synthesized name gets a "#n" suffix instead.
		college, created, err := acc.Ensure(base)
		if err != nil {
			continue
		}
		if !created {
			result.Collisions++
			for n := 2; !created && err == nil; n++ {
				college, created, err = acc.Ensure(fmt.Sprintf("%s #%d", base, n))
			}
			if err != nil {
				continue
			}
		}

		college.State = candidate.State
		if college.State == "" {
			college.State = constants.States[i%len(constants.States)]
		}
		college.Type = candidate.Type
		college.RaiseCutoff(exam, rank)
		college.AddExam(exam)
		college.AddSource(constants.DerivedSourceTag)
		college.Derived = true
		result.Created++
	}

	e.logger.Info().
		Str("exam", exam.String()).
		Int("current_max", current).
		Int("ceiling", ceiling).
		Int("created", result.Created).
		Msg("Extended rank coverage")
	return acc, result
}

// ExtendAll extends every registered exam that has coverage enabled and at
// least one observed cutoff, in exam order.
func (e *Extender) ExtendAll(acc *catalogs.Catalog, exams *catalogs.Exams, pool []Candidate) (*catalogs.Catalog, []Result) {
	acc = writable(acc)
	var results []Result
	for _, exam := range exams.List() {
		if !exam.Coverage {
			continue
		}
		if acc.MaxCutoff(exam.Type) == 0 {
			e.logger.Debug().Str("exam", exam.Type.String()).Msg("No observed cutoffs, skipping coverage")
			continue
		}
		var result Result
		acc, result = e.Extend(acc, exam.Type, pool, exam.Ceiling)
		results = append(results, result)
	}
	return acc, results
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
