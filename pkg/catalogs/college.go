package catalogs

import (
	"maps"
	"slices"

	"github.com/agentstation/rankmap/pkg/constants"
	"github.com/agentstation/rankmap/pkg/normalize"
)

// College is the aggregated record for one normalized name.
//
// Cutoff semantics are canonical: a cutoff is the worst (highest) rank ever
// admitted, so a lower cutoff means a more selective college. Cutoffs only
// ever rise while sources are merged. Exams, Sources and Categories are sets
// kept sorted so serialized output is stable across runs.
type College struct {
	Key        normalize.Key    `json:"key" yaml:"key"`
	Name       string           `json:"name" yaml:"name"`
	State      string           `json:"state" yaml:"state"`
	Type       string           `json:"type" yaml:"type"`
	Cutoffs    map[ExamType]int `json:"cutoffs" yaml:"cutoffs"`
	Exams      []ExamType       `json:"exams" yaml:"exams"`
	Sources    []string         `json:"sources" yaml:"sources"`
	Categories []string         `json:"categories,omitempty" yaml:"categories,omitempty"`
	Derived    bool             `json:"derived,omitempty" yaml:"derived,omitempty"`
}

// NewCollege creates an empty record for name. The key is derived from the name.
func NewCollege(name string) *College {
	return &College{
		Key:     normalize.Name(name),
		Name:    name,
		Cutoffs: make(map[ExamType]int),
	}
}

// Cutoff returns the cutoff for exam and whether one is recorded.
func (c *College) Cutoff(exam ExamType) (int, bool) {
	v, ok := c.Cutoffs[exam]
	return v, ok
}

// RaiseCutoff applies the monotonic max rule and reports whether the stored value changed.
// The value must already be clamped by the caller.
func (c *College) RaiseCutoff(exam ExamType, cutoff int) bool {
	if c.Cutoffs == nil {
		c.Cutoffs = make(map[ExamType]int)
	}
	prev, ok := c.Cutoffs[exam]
	if ok && prev >= cutoff {
		return false
	}
	c.Cutoffs[exam] = cutoff
	return true
}

// AddExam adds exam to the Exams set.
func (c *College) AddExam(exam ExamType) {
	if i, found := slices.BinarySearch(c.Exams, exam); !found {
		c.Exams = slices.Insert(c.Exams, i, exam)
	}
}

// AddSource adds a provenance tag to the Sources set.
func (c *College) AddSource(source string) {
	c.Sources = addToSet(c.Sources, source)
}

// AddCategory adds a category to the Categories set.
func (c *College) AddCategory(category string) {
	c.Categories = addToSet(c.Categories, category)
}

// HasExam reports whether exam is in the Exams set.
func (c *College) HasExam(exam ExamType) bool {
	_, found := slices.BinarySearch(c.Exams, exam)
	return found
}

// HasSource reports whether source is in the Sources set.
func (c *College) HasSource(source string) bool {
	_, found := slices.BinarySearch(c.Sources, source)
	return found
}

// MatchesCategory reports whether category equals the institution type or any
// recorded category, ignoring case.
func (c *College) MatchesCategory(category string) bool {
	if normalize.Equal(c.Type, category) {
		return true
	}
	return slices.ContainsFunc(c.Categories, func(v string) bool {
		return normalize.Equal(v, category)
	})
}

// IsDerived reports whether the record was synthesized by coverage extension.
func (c *College) IsDerived() bool {
	return c.Derived || c.HasSource(constants.DerivedSourceTag)
}

// FillUnknown replaces empty metadata with the Unknown sentinel.
func (c *College) FillUnknown() {
	if c.State == "" {
		c.State = constants.Unknown
	}
	if c.Type == "" {
		c.Type = constants.Unknown
	}
}

// Clone returns a deep copy.
func (c *College) Clone() *College {
	clone := *c
	clone.Cutoffs = maps.Clone(c.Cutoffs)
	if clone.Cutoffs == nil {
		clone.Cutoffs = make(map[ExamType]int)
	}
	clone.Exams = slices.Clone(c.Exams)
	clone.Sources = slices.Clone(c.Sources)
	clone.Categories = slices.Clone(c.Categories)
	return &clone
}

func addToSet(set []string, v string) []string {
	if v == "" {
		return set
	}
	if i, found := slices.BinarySearch(set, v); !found {
		return slices.Insert(set, i, v)
	}
	return set
}
