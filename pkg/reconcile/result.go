package reconcile

import (
	"time"
)

// Stats counts what one source contributed.
type Stats struct {
	Source string `json:"source"`
	Rows   int    `json:"rows"`
	Merged int    `json:"merged"`
	// Skipped rows had no usable name or exam.
	Skipped int `json:"skipped"`
	// Created counts keys first seen in this source.
	Created int `json:"created"`
	// Raised counts cutoffs this source increased.
	Raised int `json:"raised"`
	// Defaulted counts rows whose cutoff was absent or non-numeric.
	Defaulted int     `json:"defaulted"`
	Errors    []error `json:"-"`
}

// SourceFailure records a source that could not be loaded.
type SourceFailure struct {
	Source string `json:"source"`
	Path   string `json:"path"`
	Err    error  `json:"-"`
}

// Report summarizes a MergeAll run.
type Report struct {
	Sources  []Stats         `json:"sources"`
	Failed   []SourceFailure `json:"failed,omitempty"`
	Duration time.Duration   `json:"duration"`
	// Err is set when the run stopped early because the context ended.
	Err error `json:"-"`
}

// Rows returns the total number of rows read.
func (r Report) Rows() int {
	total := 0
	for _, s := range r.Sources {
		total += s.Rows
	}
	return total
}

// Merged returns the total number of rows folded into the aggregate.
func (r Report) Merged() int {
	total := 0
	for _, s := range r.Sources {
		total += s.Merged
	}
	return total
}

// Skipped returns the total number of rows dropped as malformed.
func (r Report) Skipped() int {
	total := 0
	for _, s := range r.Sources {
		total += s.Skipped
	}
	return total
}

// Used returns the IDs of sources that loaded successfully.
func (r Report) Used() []string {
	ids := make([]string, 0, len(r.Sources))
	for _, s := range r.Sources {
		ids = append(ids, s.Source)
	}
	return ids
}
