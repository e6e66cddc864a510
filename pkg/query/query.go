// Package query answers rank-eligibility questions against a published catalog.
//
// A college is eligible for a candidate with rank R in exam E when its cutoff
// for E is at least R: the college has historically admitted someone ranked
// R or worse. Queries never mutate the catalog.
package query

import (
	"slices"
	"strings"

	"github.com/agentstation/rankmap/pkg/catalogs"
	"github.com/agentstation/rankmap/pkg/errors"
	"github.com/agentstation/rankmap/pkg/normalize"
)

// Request is an eligibility query.
type Request struct {
	Exam string `json:"exam" yaml:"exam"`
	Rank int    `json:"rank" yaml:"rank"`
	// State and Category filter case-insensitively when non-empty.
	State    string `json:"state,omitempty" yaml:"state,omitempty"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
	// MaxCutoff, when positive, drops colleges whose cutoff exceeds it.
	MaxCutoff      int  `json:"max_cutoff,omitempty" yaml:"max_cutoff,omitempty"`
	ExcludeDerived bool `json:"exclude_derived,omitempty" yaml:"exclude_derived,omitempty"`
	// Limit caps the result size; non-positive means unlimited.
	Limit int `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// Validate checks the request against the exam registry and returns the
// resolved exam type.
func (r Request) Validate(exams *catalogs.Exams) (catalogs.ExamType, error) {
	exam, err := exams.Resolve(r.Exam)
	if err != nil {
		return "", err
	}
	if r.Rank <= 0 {
		return "", errors.NewInvalidRankError("rank", r.Rank)
	}
	if r.MaxCutoff < 0 {
		return "", errors.NewInvalidRankError("max_cutoff", r.MaxCutoff)
	}
	return exam, nil
}

// Run returns eligible colleges ordered by cutoff ascending, then display name
// ignoring case, then key. No matches yield an empty slice and a nil error.
func Run(cat *catalogs.Catalog, exams *catalogs.Exams, req Request) ([]catalogs.College, error) {
	exam, err := req.Validate(exams)
	if err != nil {
		return nil, err
	}

	results := []catalogs.College{}
	if cat == nil {
		return results, nil
	}
	cat.Range(func(c *catalogs.College) bool {
		if Matches(c, exam, req) {
			results = append(results, *c.Clone())
		}
		return true
	})

	Sort(results, exam)
	if req.Limit > 0 && len(results) > req.Limit {
		results = results[:req.Limit]
	}
	return results, nil
}

// Matches reports whether c satisfies req for the already resolved exam.
func Matches(c *catalogs.College, exam catalogs.ExamType, req Request) bool {
	cutoff, ok := c.Cutoff(exam)
	if !ok || cutoff < req.Rank {
		return false
	}
	if req.MaxCutoff > 0 && cutoff > req.MaxCutoff {
		return false
	}
	if req.ExcludeDerived && c.IsDerived() {
		return false
	}
	if req.State != "" && !normalize.Equal(c.State, req.State) {
		return false
	}
	if req.Category != "" && !c.MatchesCategory(req.Category) {
		return false
	}
	return true
}

// Sort orders colleges by cutoff for exam, then by display name ignoring
// case, then by key.
func Sort(colleges []catalogs.College, exam catalogs.ExamType) {
	slices.SortStableFunc(colleges, func(a, b catalogs.College) int {
		if d := a.Cutoffs[exam] - b.Cutoffs[exam]; d != 0 {
			if d < 0 {
				return -1
			}
			return 1
		}
		if d := normalize.Compare(a.Name, b.Name); d != 0 {
			return d
		}
		return strings.Compare(a.Key.String(), b.Key.String())
	})
}
