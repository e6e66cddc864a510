package catalogs

import (
	"slices"
	"strings"

	"github.com/agentstation/rankmap/pkg/constants"
	"github.com/agentstation/rankmap/pkg/errors"
)

// ExamType identifies a competitive admission test (JEE, NEET, ...).
type ExamType string

// Well-known exam types registered by default.
const (
	ExamJEE  ExamType = "JEE"
	ExamNEET ExamType = "NEET"
)

// String returns the string representation of an exam type.
func (e ExamType) String() string {
	return string(e)
}

// ParseExamType canonicalizes user or source input into an ExamType.
// It does not check registration; use Exams.Resolve for that.
func ParseExamType(s string) ExamType {
	return ExamType(strings.ToUpper(strings.TrimSpace(s)))
}

// Exam describes one registered exam type and its rank coverage ceiling.
type Exam struct {
	Type     ExamType `json:"id" yaml:"id"`
	Ceiling  int      `json:"ceiling" yaml:"ceiling"`
	Coverage bool     `json:"coverage" yaml:"coverage"`
}

// Exams is the registry of exam types known to a build. It is immutable after
// construction and safe for concurrent reads.
type Exams struct {
	exams map[ExamType]Exam
	types []ExamType
}

// NewExams builds a registry. Exams with a non-positive ceiling get
// constants.DefaultRankCeiling; later duplicates replace earlier ones.
func NewExams(exams ...Exam) *Exams {
	r := &Exams{exams: make(map[ExamType]Exam, len(exams))}
	for _, exam := range exams {
		exam.Type = ParseExamType(string(exam.Type))
		if exam.Type == "" {
			continue
		}
		if exam.Ceiling <= 0 {
			exam.Ceiling = constants.DefaultRankCeiling
		}
		r.exams[exam.Type] = exam
	}
	for t := range r.exams {
		r.types = append(r.types, t)
	}
	slices.Sort(r.types)
	return r
}

// DefaultExams returns the JEE and NEET registry with the default ceiling and coverage on.
func DefaultExams() *Exams {
	return NewExams(
		Exam{Type: ExamJEE, Ceiling: constants.DefaultRankCeiling, Coverage: true},
		Exam{Type: ExamNEET, Ceiling: constants.DefaultRankCeiling, Coverage: true},
	)
}

// Get returns the exam registration for t.
func (r *Exams) Get(t ExamType) (Exam, bool) {
	if r == nil {
		return Exam{}, false
	}
	exam, ok := r.exams[t]
	return exam, ok
}

// Has reports whether t is registered.
func (r *Exams) Has(t ExamType) bool {
	_, ok := r.Get(t)
	return ok
}

// Ceiling returns the coverage ceiling for t, or 0 if t is not registered.
func (r *Exams) Ceiling(t ExamType) int {
	exam, _ := r.Get(t)
	return exam.Ceiling
}

// Resolve parses s and verifies that the exam is registered.
func (r *Exams) Resolve(s string) (ExamType, error) {
	t := ParseExamType(s)
	if !r.Has(t) {
		return "", errors.NewInvalidExamTypeError(s, r.Strings())
	}
	return t, nil
}

// Types returns the registered exam types in lexicographic order.
func (r *Exams) Types() []ExamType {
	if r == nil {
		return nil
	}
	return slices.Clone(r.types)
}

// Strings returns the registered exam types as strings.
func (r *Exams) Strings() []string {
	types := r.Types()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}

// List returns all registrations ordered by type.
func (r *Exams) List() []Exam {
	types := r.Types()
	out := make([]Exam, 0, len(types))
	for _, t := range types {
		out = append(out, r.exams[t])
	}
	return out
}

// Len returns the number of registered exams.
func (r *Exams) Len() int {
	if r == nil {
		return 0
	}
	return len(r.types)
}
