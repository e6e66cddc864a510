// Package catalogs holds the rankmap data model: exam registrations, the
// per-college aggregate record, and the Catalog accumulator that each build
// stage receives and returns.
//
// A Catalog is built single-threaded by the pipeline and then frozen. A frozen
// catalog is an immutable snapshot: any number of goroutines may read it
// without coordination, and rebuilding never touches it. Stale records are
// never deleted; the next rebuild starts from a fresh Catalog instead.
//
// Example usage:
//
//	acc := catalogs.New()
//	c, _, _ := acc.Ensure("IIT Delhi")
//	c.RaiseCutoff(catalogs.ExamJEE, 900)
//	acc.Freeze()
package catalogs

import (
	"github.com/agentstation/rankmap/pkg/errors"
	"github.com/agentstation/rankmap/pkg/normalize"
)

// Catalog is the aggregate keyed by normalized name, in first-seen order.
type Catalog struct {
	colleges map[normalize.Key]*College
	order    []normalize.Key
	frozen   bool
}

// New creates an empty, mutable catalog.
func New() *Catalog {
	return &Catalog{
		colleges: make(map[normalize.Key]*College),
	}
}

// Ensure returns the record for name's normalized key, creating it with empty
// metadata on first encounter. It reports whether the record was created.
func (c *Catalog) Ensure(name string) (*College, bool, error) {
	if c.frozen {
		return nil, false, errors.ErrReadOnly
	}
	key := normalize.Name(name)
	if key.IsZero() {
		return nil, false, errors.NewValidationError("name", name, "normalizes to an empty key")
	}
	if existing, ok := c.colleges[key]; ok {
		return existing, false, nil
	}
	college := NewCollege(name)
	c.colleges[key] = college
	c.order = append(c.order, key)
	return college, true, nil
}

// Add inserts a fully formed record, for example one loaded from an artifact.
func (c *Catalog) Add(college *College) error {
	if c.frozen {
		return errors.ErrReadOnly
	}
	if college == nil {
		return errors.NewValidationError("college", nil, "cannot be nil")
	}
	if college.Key.IsZero() {
		college.Key = normalize.Name(college.Name)
	}
	if college.Key.IsZero() {
		return errors.NewValidationError("name", college.Name, "normalizes to an empty key")
	}
	if _, exists := c.colleges[college.Key]; !exists {
		c.order = append(c.order, college.Key)
	}
	c.colleges[college.Key] = college
	return nil
}

// Get returns the live record for key. Callers must not mutate records of a frozen catalog.
func (c *Catalog) Get(key normalize.Key) (*College, bool) {
	college, ok := c.colleges[key]
	return college, ok
}

// Find returns a copy of the record whose name normalizes to the same key as name.
func (c *Catalog) Find(name string) (College, error) {
	key := normalize.Name(name)
	college, ok := c.colleges[key]
	if !ok {
		return College{}, errors.NewNotFoundError("college", key.String())
	}
	return *college.Clone(), nil
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Keys returns the keys in first-seen order.
func (c *Catalog) Keys() []normalize.Key {
	keys := make([]normalize.Key, len(c.order))
	copy(keys, c.order)
	return keys
}

// Range calls fn for every record in first-seen order until fn returns false.
// The records are live; fn must treat them as read-only on a frozen catalog.
func (c *Catalog) Range(fn func(*College) bool) {
	for _, key := range c.order {
		if !fn(c.colleges[key]) {
			return
		}
	}
}

// List returns copies of all records in first-seen order.
func (c *Catalog) List() []College {
	out := make([]College, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, *c.colleges[key].Clone())
	}
	return out
}

// MaxCutoff returns the highest cutoff recorded for exam, or 0 when none exists.
func (c *Catalog) MaxCutoff(exam ExamType) int {
	highest := 0
	for _, college := range c.colleges {
		if v, ok := college.Cutoffs[exam]; ok && v > highest {
			highest = v
		}
	}
	return highest
}

// Freeze marks the catalog as an immutable snapshot.
func (c *Catalog) Freeze() *Catalog {
	c.frozen = true
	return c
}

// Frozen reports whether the catalog has been published.
func (c *Catalog) Frozen() bool {
	return c.frozen
}

// Clone returns a deep, mutable copy.
func (c *Catalog) Clone() *Catalog {
	clone := &Catalog{
		colleges: make(map[normalize.Key]*College, len(c.colleges)),
		order:    make([]normalize.Key, len(c.order)),
	}
	copy(clone.order, c.order)
	for key, college := range c.colleges {
		clone.colleges[key] = college.Clone()
	}
	return clone
}

// Stats summarizes a catalog.
type Stats struct {
	Colleges int              `json:"colleges"`
	Derived  int              `json:"derived"`
	PerExam  map[ExamType]int `json:"per_exam"`
	MaxRank  map[ExamType]int `json:"max_rank"`
}

// Stats computes record counts and the highest cutoff per exam.
func (c *Catalog) Stats() Stats {
	stats := Stats{
		Colleges: c.Len(),
		PerExam:  make(map[ExamType]int),
		MaxRank:  make(map[ExamType]int),
	}
	c.Range(func(college *College) bool {
		if college.IsDerived() {
			stats.Derived++
		}
		for exam, cutoff := range college.Cutoffs {
			stats.PerExam[exam]++
			if cutoff > stats.MaxRank[exam] {
				stats.MaxRank[exam] = cutoff
			}
		}
		return true
	})
	return stats
}
